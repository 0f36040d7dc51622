package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
)

type SessionHandler struct {
	svc *service.SessionSvc
	gw  gateway.Client
}

func NewSessionHandler(svc *service.SessionSvc, gw gateway.Client) *SessionHandler {
	return &SessionHandler{svc: svc, gw: gw}
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var in struct {
		ResourceID     string `json:"resource_id" binding:"required"`
		ContactChannel string `json:"contact_channel" binding:"required"`
		Reference      string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.svc.CreateSession(c, in.ResourceID, in.ContactChannel, in.Reference)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrDuplicateReference):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	out := gin.H{
		"reference": info.Reference,
		"amount":    info.Amount,
		"currency":  info.Currency,
	}
	// Open the gateway session for the client. If the gateway is down the
	// booking still exists: the client retries with the same reference and
	// the sweeper reaps it if they never do.
	sess, err := h.gw.Initialize(c, gateway.InitializeRequest{
		Reference: info.Reference,
		Amount:    info.Amount,
		Currency:  info.Currency,
		Metadata: map[string]string{
			"resource_id":     info.ResourceID,
			"contact_channel": in.ContactChannel,
		},
	})
	if err != nil {
		log.Printf("[api] gateway initialize ref=%s: %v", info.Reference, err)
	} else {
		out["authorization_url"] = sess.AuthorizationURL
		out["access_code"] = sess.AccessCode
	}

	c.JSON(http.StatusCreated, out)
}
