package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"gomovies/internal/pkg/logger"
)

// RequestLogger registra uma linha por requisição concluída.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}
		if identity := IdentityFromContext(c); identity.Authenticated() {
			fields["user_id"] = identity.UserID()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Warn("Requisição concluída com erro de servidor.", fields)
		case status >= 400:
			log.Info("Requisição rejeitada.", fields)
		default:
			log.Info("Requisição concluída com sucesso", fields)
		}
	}
}
