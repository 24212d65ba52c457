package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/respond"
)

// APIKeyHeader é o header aceito como alternativa ao bearer token.
const APIKeyHeader = "X-API-Key"

// Authorize decide o acesso a um endpoint protegido por policy.
// Identidade autenticada: vale a role. Anônimo: vale a chave de API apresentada.
func Authorize(identity domain.Identity, policy domain.Policy, presentedKey string, keys []string) error {
	if identity.Authenticated() {
		if policy.Allows(identity.Role()) {
			return nil
		}
		return apperror.NewForbiddenError("Acesso negado. Você não tem a permissão necessária.")
	}

	if presentedKey == "" {
		return apperror.NewUnauthorizedError("Autenticação necessária.")
	}
	for _, k := range keys {
		if k != "" && subtle.ConstantTimeCompare([]byte(k), []byte(presentedKey)) == 1 {
			return nil
		}
	}
	return apperror.NewForbiddenError("Chave de API inválida.")
}

// RequirePolicy aplica Authorize antes do handler.
func RequirePolicy(policy domain.Policy, apiKeys []string, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)
		if err := Authorize(identity, policy, c.GetHeader(APIKeyHeader), apiKeys); err != nil {
			log.Info("Acesso negado pela policy.", map[string]interface{}{
				"policy":  policy.Name,
				"path":    c.FullPath(),
				"user_id": identity.UserID(),
			})
			respond.Error(c, log, err)
			return
		}
		c.Next()
	}
}
