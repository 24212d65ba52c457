package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/respond"
)

// IdentityResolver transforma claims validadas no usuário atual (internal/service/identityservice).
type IdentityResolver interface {
	Resolve(ctx context.Context, claims domain.VerifiedClaims) (domain.Identity, error)
}

// ResolveIdentity publica a identidade da requisição. Cada requisição recebe um valor novo;
// qualquer falha interrompe a cadeia antes do handler.
func ResolveIdentity(resolver IdentityResolver, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		verified := domain.VerifiedClaims{RemoteIP: c.ClientIP()}
		if claims, ok := ClaimsFromContext(c); ok {
			verified.Subject = claims.SubjectOf()
			verified.Role = domain.UserRole(claims.Role)
		}

		identity, err := resolver.Resolve(c.Request.Context(), verified)
		if err != nil {
			respond.Error(c, log, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFromContext devolve a identidade resolvida; sem middleware, anônima.
func IdentityFromContext(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(domain.Identity); ok {
			return identity
		}
	}
	return domain.Anonymous()
}
