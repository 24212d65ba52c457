package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/respond"
	"gomovies/internal/pkg/token"
)

// Chaves usadas no gin.Context. Não exportadas para evitar colisão com outros pacotes.
const (
	claimsKey   = "gomovies.claims"
	identityKey = "gomovies.identity"
)

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

// Authenticate valida o bearer token, quando presente, e anexa as claims ao contexto.
// Sem header Authorization a requisição segue anônima; header malformado ou token inválido é 401.
func Authenticate(tokenSvc TokenService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extrair o Token do Header Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			respond.Error(c, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
			return
		}

		// 2. Validar o Token
		claims, err := tokenSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Token rejeitado na validação.", map[string]interface{}{"error": err.Error()})
			respond.Error(c, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
			return
		}

		// 3. Anexar Claims ao Contexto
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext devolve as claims validadas da requisição, se houver.
func ClaimsFromContext(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok && claims != nil
}
