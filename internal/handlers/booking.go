package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
)

type BookingHandler struct {
	rec    *service.Reconciler
	ledger service.Ledger
}

func NewBookingHandler(rec *service.Reconciler, ledger service.Ledger) *BookingHandler {
	return &BookingHandler{rec: rec, ledger: ledger}
}

// POST /api/bookings
//
// The caller never gets a silent failure after paying: the response always
// names one of confirmed, refund_pending, disputed or pending.
func (h *BookingHandler) Record(c *gin.Context) {
	var in struct {
		Reference      string `json:"reference" binding:"required"`
		ResourceID     string `json:"resource_id" binding:"required"`
		Amount         int64  `json:"amount"`
		ContactChannel string `json:"contact_channel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.rec.Process(c, service.ProcessInput{
		Reference:      in.Reference,
		ResourceID:     in.ResourceID,
		Amount:         in.Amount,
		ContactChannel: in.ContactChannel,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "recorded", "booking_status": res.Booking.Status})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"status": "already_processed", "booking_status": res.Booking.Status})
	case errors.Is(err, service.ErrAmountMismatch):
		c.JSON(http.StatusOK, gin.H{
			"status":         "recorded",
			"booking_status": domain.BookingDisputed,
			"note":           "amount mismatch, contact support",
		})
	case errors.Is(err, service.ErrPaymentFailed):
		c.JSON(http.StatusOK, gin.H{"status": "recorded", "booking_status": res.Booking.Status})
	case errors.Is(err, service.ErrNoTransaction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "gateway has no transaction for this reference"})
	case errors.Is(err, service.ErrVerification):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification failed, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record booking"})
	}
}

// GET /api/bookings/:reference
func (h *BookingHandler) Get(c *gin.Context) {
	ref := c.Param("reference")
	b, err := h.ledger.ByReference(c, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown reference"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reference":      b.PaymentReference,
		"resource_id":    b.ResourceID,
		"resource_kind":  b.ResourceKind,
		"amount":         b.Amount,
		"currency":       b.Currency,
		"booking_status": b.Status,
		"created_at":     b.CreatedAt,
		"updated_at":     b.UpdatedAt,
	})
}
