package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/config"
	"taskdeck/internal/middleware"
	"taskdeck/internal/services"
)

func getUserID(c *gin.Context) int64 {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	}
	return 0
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		config.Logger.Infof("[%s][400] %v", tag, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		config.Logger.Infof("[%s][404] %v", tag, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		config.Logger.Errorf("[%s][err] %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// dueDateLayouts accepts RFC3339 plus the layout browsers send from
// datetime-local inputs.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
