package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
)

// WebhookHandler accepts the gateway's callback and parks it on the durable
// callback queue. It never writes booking state: the payload is untrusted
// and the reconciler re-verifies against the gateway before acting.
type WebhookHandler struct {
	pub service.Publisher
}

func NewWebhookHandler(pub service.Publisher) *WebhookHandler {
	return &WebhookHandler{pub: pub}
}

// POST /api/webhooks/gateway
func (h *WebhookHandler) Receive(c *gin.Context) {
	var in struct {
		Reference      string `json:"reference" binding:"required"`
		ResourceID     string `json:"resource_id"`
		Amount         int64  `json:"amount"`
		ContactChannel string `json:"contact_channel"`
		Status         string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.pub.PublishJSON(c, events.RKPaymentCallback, events.PaymentCallback{
		Reference:      in.Reference,
		ResourceID:     in.ResourceID,
		Amount:         in.Amount,
		ContactChannel: in.ContactChannel,
		ReportedStatus: in.Status,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not enqueue callback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
