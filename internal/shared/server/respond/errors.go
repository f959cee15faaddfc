package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"humangov/internal/shared/telemetry"
)

// Error logs the failure and renders the generic error page.
func Error(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if recordID := c.GetString("recordId"); recordID != "" {
		fields["record_id"] = recordID
	}
	telemetry.Error("http.error", fields)

	HTML(c, status, "error.html", gin.H{
		"Status":  status,
		"Message": message,
	})
	c.Abort()
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context, message string) {
	telemetry.Info("http.not_found", map[string]any{
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})
	HTML(c, http.StatusNotFound, "not_found.html", gin.H{"Message": message})
	c.Abort()
}
