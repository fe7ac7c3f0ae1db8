package handler

import (
	"net/http"

	"allure/internal/domain"
	"allure/internal/middleware"
	"allure/internal/repository"
	"allure/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authSvc     *service.AuthService
	walletSvc   *service.WalletService
	referralSvc *service.ReferralService
	settingRepo *repository.SettingRepository
	profileRepo *repository.ModelProfileRepository
	auditRepo   *repository.AuditLogRepository
}

func NewAdminHandler(
	authSvc *service.AuthService,
	walletSvc *service.WalletService,
	referralSvc *service.ReferralService,
	settingRepo *repository.SettingRepository,
	profileRepo *repository.ModelProfileRepository,
	auditRepo *repository.AuditLogRepository,
) *AdminHandler {
	return &AdminHandler{
		authSvc:     authSvc,
		walletSvc:   walletSvc,
		referralSvc: referralSvc,
		settingRepo: settingRepo,
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
	}
}

// Login handles POST /admin/login. Non-admin accounts are rejected here
// even with valid credentials.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if u.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Recharge handles POST /admin/customers/:id/recharge.
func (h *AdminHandler) Recharge(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AmountCents int64 `json:"amount_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.walletSvc.Recharge(id, req.AmountCents, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Withdraw handles POST /admin/models/:id/withdraw.
func (h *AdminHandler) Withdraw(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AmountCents int64 `json:"amount_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.walletSvc.Withdraw(id, req.AmountCents, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// SetCommissionRate handles PATCH /admin/models/:id/commission. Bookings
// already in flight keep their snapshot.
func (h *AdminHandler) SetCommissionRate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		RatePct *int `json:"rate_pct" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.profileRepo.UpdateCommissionRate(id, *req.RatePct); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate_pct": *req.RatePct})
}

// PaySignupBonus handles POST /admin/models/:id/signup-bonus, typically hit
// when a referred model's profile is approved. Safe to retry.
func (h *AdminHandler) PaySignupBonus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.referralSvc.PaySignupBonus(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paid": true})
}

// ListSettings handles GET /admin/settings.
func (h *AdminHandler) ListSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// SetSetting handles PUT /admin/settings/:key.
func (h *AdminHandler) SetSetting(c *gin.Context) {
	key := c.Param("key")
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settingRepo.Set(key, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// ListAudit handles GET /admin/audit.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	page, limit := parsePagination(c)
	list, err := h.auditRepo.List(limit, (page-1)*limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page, "limit": limit})
}
