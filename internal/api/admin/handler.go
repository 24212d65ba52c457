package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/middleware"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/pkg/respond"
	"gomovies/internal/pkg/token"
)

// UserAdminService define o contrato das operações administrativas sobre usuários.
type UserAdminService interface {
	ListUsers(ctx context.Context, q domain.UserQuery) (paging.Page[domain.User], error)
	AdminUpdate(ctx context.Context, actor domain.Identity, userID uint64, update domain.UserAdminUpdate) (domain.User, error)
	IssueToken(ctx context.Context, actor domain.Identity, userID uint64, req domain.ImpersonationRequest) (token.Result, error)
	InvalidateTokens(ctx context.Context, userID uint64) error
}

// Handler agrupa os endpoints de /v1/admin.
type Handler struct {
	Service UserAdminService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserAdminService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListUsers lida com a requisição GET /v1/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	var q domain.UserQuery
	if !respond.BindQuery(c, h.Logger, &q) {
		return
	}

	page, err := h.Service.ListUsers(c.Request.Context(), q)
	respond.Handle(c, h.Logger, page, err, http.StatusOK)
}

// UpdateUser lida com a requisição PATCH /v1/admin/users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}

	var req domain.UserAdminUpdate
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	updated, err := h.Service.AdminUpdate(c.Request.Context(), middleware.IdentityFromContext(c), id, req)
	respond.Handle(c, h.Logger, updated, err, http.StatusOK)
}

// IssueToken lida com a requisição POST /v1/admin/users/:id/tokens. O corpo é opcional.
func (h *Handler) IssueToken(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}

	var req domain.ImpersonationRequest
	if c.Request.ContentLength != 0 && !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	result, err := h.Service.IssueToken(c.Request.Context(), middleware.IdentityFromContext(c), id, req)
	respond.Handle(c, h.Logger, result, err, http.StatusOK)
}

// InvalidateTokens lida com a requisição POST /v1/admin/users/:id/tokens/invalidate.
func (h *Handler) InvalidateTokens(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}

	err = h.Service.InvalidateTokens(c.Request.Context(), id)
	respond.Handle(c, h.Logger, nil, err, http.StatusNoContent)
}
