package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-ops-backend/internal/store"
)

// GetAvailability handles GET /api/availability?operator_id=... and returns
// the single current-availability record for the operator.
func (h *Handler) GetAvailability(c *gin.Context) {
	operatorID := c.Query("operator_id")
	if operatorID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad_request"})
		return
	}

	availability, err := h.store.GetAvailability(c.Request.Context(), operatorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "error": "availability_not_found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"operator_id": availability.OperatorID,
		"pta":         availability.PTA.UTC().Format(time.RFC3339),
		"source":      availability.Source,
		"reason":      availability.Reason,
		"updated_at":  availability.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
