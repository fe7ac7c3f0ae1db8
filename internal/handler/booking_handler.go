package handler

import (
	"net/http"

	"allure/internal/middleware"
	"allure/internal/repository"
	"allure/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	escrow      *service.EscrowService
	bookingRepo *repository.BookingRepository
	ledgerRepo  *repository.LedgerRepository
}

func NewBookingHandler(escrow *service.EscrowService, bookingRepo *repository.BookingRepository, ledgerRepo *repository.LedgerRepository) *BookingHandler {
	return &BookingHandler{escrow: escrow, bookingRepo: bookingRepo, ledgerRepo: ledgerRepo}
}

// Hold handles POST /bookings: pay for a booking, holding the funds.
func (h *BookingHandler) Hold(c *gin.Context) {
	var req struct {
		ModelID    uint  `json:"model_id" binding:"required"`
		PriceCents int64 `json:"price_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.escrow.HoldBooking(service.HoldBookingInput{
		CustomerID: middleware.GetUserID(c),
		ModelID:    req.ModelID,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// Release handles POST /admin/bookings/:id/release.
func (h *BookingHandler) Release(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.escrow.ReleaseBooking(id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Refund handles POST /admin/bookings/:id/refund.
func (h *BookingHandler) Refund(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	b, err := h.escrow.RefundBooking(id, middleware.GetUserID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Dispute handles POST /bookings/:id/dispute. Either party to the booking
// may flag it.
func (h *BookingHandler) Dispute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actorID := middleware.GetUserID(c)
	b, err := h.bookingRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if b.CustomerID != actorID && b.ModelID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this booking"})
		return
	}
	out, err := h.escrow.DisputeBooking(id, actorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Resolve handles POST /admin/bookings/:id/resolve.
func (h *BookingHandler) Resolve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Resolution string `json:"resolution" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.escrow.ResolveDispute(id, middleware.GetUserID(c), req.Resolution)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Get handles GET /bookings/:id, including the booking's ledger trail.
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookingRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	txs, err := h.ledgerRepo.ListByBookingID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "transactions": txs})
}

// List handles GET /admin/bookings.
func (h *BookingHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.bookingRepo.List(c.Query("status"), limit, (page-1)*limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}
