package handler

import (
	"errors"
	"net/http"
	"strconv"

	"allure/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses. Precondition failures
// (wrong state, already resolved) are 409 so admin UIs can tell a retry from
// a bad request.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "already resolved"})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid state for this operation"})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient funds"})
	case errors.Is(err, domain.ErrMissingWallet):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "customer has no wallet"})
	case errors.Is(err, domain.ErrWalletSuspended):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "wallet suspended"})
	case errors.Is(err, domain.ErrDuplicateWallet):
		c.JSON(http.StatusConflict, gin.H{"error": "wallet already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
