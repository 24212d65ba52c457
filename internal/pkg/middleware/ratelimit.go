package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/cache"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/respond"
)

// RateLimiter limita cada IP a limit requisições por janela fixa de duração period.
// Se o cache falhar, a requisição segue e a falha é logada.
func RateLimiter(client cache.Client, limit int, period time.Duration, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate-limit:" + c.ClientIP()

		count, err := client.IncrWindow(c.Request.Context(), key, period)
		if err != nil {
			log.Warn("Falha ao consultar o rate limit; requisição liberada.", map[string]interface{}{"key": key, "error": err.Error()})
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(period.Seconds())))
			respond.Error(c, log, apperror.NewTooManyRequestsError("Limite de requisições excedido. Tente novamente mais tarde."))
			return
		}
		c.Next()
	}
}
