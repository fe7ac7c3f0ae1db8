package handler

import (
	"net/http"

	"allure/internal/domain"
	"allure/internal/middleware"
	"allure/internal/models"
	"allure/internal/repository"
	"allure/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletRepo *repository.WalletRepository
	summaries  *service.SummaryService
}

func NewWalletHandler(walletRepo *repository.WalletRepository, summaries *service.SummaryService) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, summaries: summaries}
}

// GetMine handles GET /wallet, returning the current user's own wallet.
func (h *WalletHandler) GetMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role, _ := c.Get("role")
	var owner models.OwnerRef
	switch role {
	case domain.RoleModel:
		owner = models.ModelRef(userID)
	default:
		owner = models.CustomerRef(userID)
	}
	w, err := h.walletRepo.GetByOwner(owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w, "available_cents": w.AvailableCents()})
}

// Get handles GET /admin/wallets/:id.
func (h *WalletHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, err := h.walletRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w, "available_cents": w.AvailableCents()})
}

// Summary handles GET /admin/wallets/:id/summary: balances recomputed from
// the ledger, with the cached counters for comparison.
func (h *WalletHandler) Summary(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sum, err := h.summaries.GetWalletSummary(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// SetStatus handles PATCH /admin/wallets/:id/status.
func (h *WalletHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.walletRepo.SetStatus(id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
