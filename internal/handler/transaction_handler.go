package handler

import (
	"net/http"
	"strconv"

	"allure/internal/models"
	"allure/internal/repository"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	ledgerRepo *repository.LedgerRepository
}

func NewTransactionHandler(ledgerRepo *repository.LedgerRepository) *TransactionHandler {
	return &TransactionHandler{ledgerRepo: ledgerRepo}
}

// List handles GET /admin/transactions with kind/status/owner filters.
func (h *TransactionHandler) List(c *gin.Context) {
	f := repository.TransactionFilter{
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return
		}
		ref := models.CustomerRef(uint(id))
		f.Owner = &ref
	} else if v := c.Query("model_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model_id"})
			return
		}
		ref := models.ModelRef(uint(id))
		f.Owner = &ref
	}
	page, limit := parsePagination(c)
	list, total, err := h.ledgerRepo.List(f, limit, (page-1)*limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// Get handles GET /admin/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.ledgerRepo.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
