package movie

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/middleware"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/pkg/respond"
)

// MovieService define o contrato que o Handler espera da camada de Serviço.
type MovieService interface {
	CreateMovie(ctx context.Context, viewer domain.Identity, input domain.MovieCreate) (domain.Movie, error)
	GetMovie(ctx context.Context, viewer domain.Identity, ref string) (domain.Movie, error)
	ListMovies(ctx context.Context, viewer domain.Identity, q domain.MovieQuery) (paging.Page[domain.Movie], error)
	UpdateMovie(ctx context.Context, viewer domain.Identity, ref string, input domain.MovieUpdate) (domain.Movie, error)
	DeleteMovie(ctx context.Context, viewer domain.Identity, ref string) error
}

// Handler agrupa todos os métodos de Handler de filmes.
type Handler struct {
	Service MovieService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc MovieService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateMovie lida com a requisição POST /v1/movies.
func (h *Handler) CreateMovie(c *gin.Context) {
	var req domain.MovieCreate
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	created, err := h.Service.CreateMovie(c.Request.Context(), middleware.IdentityFromContext(c), req)
	respond.Handle(c, h.Logger, created, err, http.StatusCreated)
}

// GetMovie lida com a requisição GET /v1/movies/:id, onde :id é o ID numérico ou o slug.
func (h *Handler) GetMovie(c *gin.Context) {
	found, err := h.Service.GetMovie(c.Request.Context(), middleware.IdentityFromContext(c), c.Param("id"))
	respond.Handle(c, h.Logger, found, err, http.StatusOK)
}

// ListMovies lida com a requisição GET /v1/movies.
func (h *Handler) ListMovies(c *gin.Context) {
	var q domain.MovieQuery
	if !respond.BindQuery(c, h.Logger, &q) {
		return
	}

	page, err := h.Service.ListMovies(c.Request.Context(), middleware.IdentityFromContext(c), q)
	respond.Handle(c, h.Logger, page, err, http.StatusOK)
}

// UpdateMovie lida com a requisição PUT /v1/movies/:id.
func (h *Handler) UpdateMovie(c *gin.Context) {
	var req domain.MovieUpdate
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	updated, err := h.Service.UpdateMovie(c.Request.Context(), middleware.IdentityFromContext(c), c.Param("id"), req)
	respond.Handle(c, h.Logger, updated, err, http.StatusOK)
}

// DeleteMovie lida com a requisição DELETE /v1/movies/:id.
func (h *Handler) DeleteMovie(c *gin.Context) {
	err := h.Service.DeleteMovie(c.Request.Context(), middleware.IdentityFromContext(c), c.Param("id"))
	respond.Handle(c, h.Logger, nil, err, http.StatusNoContent)
}
