package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/middleware"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/pkg/respond"
	"gomovies/internal/pkg/token"
)

// UserService define o contrato para as operações de conta do próprio usuário.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Verify(ctx context.Context, verification domain.UserVerification) (domain.User, error)
	Login(ctx context.Context, email, password, remoteIP string) (token.Result, error)
	GetUser(ctx context.Context, id uint64) (domain.User, error)
	ChangePassword(ctx context.Context, userID uint64, change domain.PasswordChange) error
	InvalidateTokens(ctx context.Context, userID uint64) error
}

// RatingLister lista avaliações pelo pipeline de paginação.
type RatingLister interface {
	ListRatings(ctx context.Context, viewer domain.Identity, q domain.RatingQuery) (paging.Page[domain.Rating], error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Ratings RatingLister
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(svc UserService, ratings RatingLister, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Ratings: ratings,
		Logger:  log,
	}
}

// Signup lida com a requisição POST /v1/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var reg domain.UserRegistration
	if !respond.BindJSON(c, h.Logger, &reg) {
		return
	}

	newUser, err := h.Service.Register(c.Request.Context(), reg)
	respond.Handle(c, h.Logger, newUser, err, http.StatusCreated)
}

// Verify lida com a requisição POST /v1/auth/verify.
func (h *Handler) Verify(c *gin.Context) {
	var req domain.UserVerification
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	activated, err := h.Service.Verify(c.Request.Context(), req)
	respond.Handle(c, h.Logger, activated, err, http.StatusOK)
}

// Login lida com a requisição POST /v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	result, err := h.Service.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	respond.Handle(c, h.Logger, result, err, http.StatusOK)
}

// Me lida com a requisição GET /v1/users/me.
func (h *Handler) Me(c *gin.Context) {
	current, ok := middleware.IdentityFromContext(c).User()
	if !ok {
		respond.Error(c, h.Logger, apperror.NewUnauthorizedError("Autenticação necessária."))
		return
	}
	respond.Handle(c, h.Logger, current, nil, http.StatusOK)
}

// ChangePassword lida com a requisição PUT /v1/users/me/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.Authenticated() {
		respond.Error(c, h.Logger, apperror.NewUnauthorizedError("Autenticação necessária."))
		return
	}

	var req domain.PasswordChange
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	err := h.Service.ChangePassword(c.Request.Context(), identity.UserID(), req)
	respond.Handle(c, h.Logger, nil, err, http.StatusNoContent)
}

// InvalidateTokens lida com a requisição POST /v1/users/me/tokens/invalidate.
func (h *Handler) InvalidateTokens(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.Authenticated() {
		respond.Error(c, h.Logger, apperror.NewUnauthorizedError("Autenticação necessária."))
		return
	}

	err := h.Service.InvalidateTokens(c.Request.Context(), identity.UserID())
	respond.Handle(c, h.Logger, nil, err, http.StatusNoContent)
}

// MyRatings lida com a requisição GET /v1/users/me/ratings.
func (h *Handler) MyRatings(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.Authenticated() {
		respond.Error(c, h.Logger, apperror.NewUnauthorizedError("Autenticação necessária."))
		return
	}

	var q domain.RatingQuery
	if !respond.BindQuery(c, h.Logger, &q) {
		return
	}
	userID := identity.UserID()
	q.UserID = &userID

	page, err := h.Ratings.ListRatings(c.Request.Context(), identity, q)
	respond.Handle(c, h.Logger, page, err, http.StatusOK)
}
