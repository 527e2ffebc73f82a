package system

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"photoshare/internal/pkg/utils"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	baseURL *utils.BaseURLResolver
	now     func() time.Time
}

func NewHandler(db Pinger, baseURL *utils.BaseURLResolver) *Handler {
	return &Handler{db: db, baseURL: baseURL, now: time.Now}
}

// Health godoc
// @Summary Liveness and database check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	status, dbState, code := "OK", "up", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			_ = c.Error(err)
			status, dbState, code = "DEGRADED", "down", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"baseUrl":   h.baseURL.Resolve(c.Request),
		"userAgent": c.GetHeader("User-Agent"),
		"database":  dbState,
	})
}

// Test echoes the request headers, useful when debugging proxies.
func (h *Handler) Test(c *gin.Context) {
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.Request.Header.Get(k)
	}
	if c.Request.Host != "" {
		headers["Host"] = c.Request.Host
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "API is working",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"baseUrl":   h.baseURL.Resolve(c.Request),
		"headers":   headers,
	})
}
