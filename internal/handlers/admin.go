package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/repository"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
)

type ResourceAdmin interface {
	Create(ctx context.Context, res *domain.Resource) error
	ByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context, page, size int32, kind domain.ResourceKind) ([]domain.Resource, error)
	SetState(ctx context.Context, id string, to domain.AvailabilityState) (*domain.Resource, error)
}

type AdminHandler struct {
	resources ResourceAdmin
	ledger    service.Ledger
	sweeper   *service.Sweeper
}

func NewAdminHandler(resources ResourceAdmin, ledger service.Ledger, sweeper *service.Sweeper) *AdminHandler {
	return &AdminHandler{resources: resources, ledger: ledger, sweeper: sweeper}
}

// POST /api/admin/resources
func (h *AdminHandler) CreateResource(c *gin.Context) {
	var in struct {
		Name       string `json:"name" binding:"required"`
		Kind       string `json:"kind" binding:"required"`
		BookingFee int64  `json:"booking_fee" binding:"required"`
		Currency   string `json:"currency" binding:"required"`
		State      string `json:"availability_state"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := domain.ResourceKind(in.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be room or hostel"})
		return
	}
	if in.BookingFee <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_fee must be positive"})
		return
	}
	state := domain.AvailabilityState(in.State)
	if in.State == "" {
		state = domain.StateAvailable
	}
	if !state.Valid() || state == domain.StateBooked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid availability_state"})
		return
	}

	res := &domain.Resource{
		Name:              in.Name,
		Kind:              kind,
		BookingFee:        in.BookingFee,
		Currency:          in.Currency,
		AvailabilityState: state,
	}
	if err := h.resources.Create(c, res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create resource"})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/admin/resources/:id
func (h *AdminHandler) GetResource(c *gin.Context) {
	res, err := h.resources.ByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/resources?page=0&page_size=20&kind=room
func (h *AdminHandler) ListResources(c *gin.Context) {
	var q struct {
		Page int32  `form:"page"`
		Size int32  `form:"page_size"`
		Kind string `form:"kind"`
	}
	_ = c.ShouldBindQuery(&q)
	out, err := h.resources.List(c, q.Page, q.Size, domain.ResourceKind(q.Kind))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": out})
}

// PATCH /api/admin/resources/:id/state
//
// Only the states listing management owns; booked is reserved for the claim.
func (h *AdminHandler) UpdateResourceState(c *gin.Context) {
	var in struct {
		State string `json:"availability_state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state := domain.AvailabilityState(in.State)
	if !state.Valid() || state == domain.StateBooked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid availability_state"})
		return
	}
	res, err := h.resources.SetState(c, c.Param("id"), state)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/admin/bookings/expire-pending
func (h *AdminHandler) ExpirePending(c *gin.Context) {
	n, err := h.sweeper.Sweep(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"swept": n})
}

// POST /api/admin/bookings/:reference/refunded
//
// Closes the compensation loop once the money has actually moved back.
func (h *AdminHandler) MarkRefunded(c *gin.Context) {
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
	if b.Status != domain.BookingRefundPending {
		c.JSON(http.StatusConflict, gin.H{"error": "booking is not awaiting refund", "booking_status": b.Status})
		return
	}
	fb, err := h.ledger.Finalize(c, b.ID, b.Version, domain.BookingRefunded)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "booking changed concurrently, retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_status": fb.Status})
}
