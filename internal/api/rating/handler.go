package rating

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/middleware"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/pkg/respond"
)

// RatingService define o contrato que o Handler espera da camada de Serviço.
type RatingService interface {
	RateMovie(ctx context.Context, userID, movieID uint64, score int, feedback *string) (bool, error)
	DeleteRating(ctx context.Context, userID, movieID uint64) error
	GetRating(ctx context.Context, userID, movieID uint64) (domain.Rating, error)
	ListRatings(ctx context.Context, viewer domain.Identity, q domain.RatingQuery) (paging.Page[domain.Rating], error)
}

// MovieFinder resolve o :id da rota (ID numérico ou slug) em um filme visível ao chamador.
type MovieFinder interface {
	GetMovie(ctx context.Context, viewer domain.Identity, ref string) (domain.Movie, error)
}

// Handler agrupa os endpoints de avaliação.
type Handler struct {
	Service RatingService
	Movies  MovieFinder
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(svc RatingService, movies MovieFinder, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Movies:  movies,
		Logger:  log,
	}
}

// RateResponse é o corpo de sucesso de PUT /v1/movies/:id/rating.
type RateResponse struct {
	Success bool `json:"success"`
}

// movieID devolve o ID numérico da rota sem consulta; slugs passam pela verificação de visibilidade.
func (h *Handler) movieID(c *gin.Context, viewer domain.Identity) (uint64, error) {
	ref := c.Param("id")
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return id, nil
	}
	movie, err := h.Movies.GetMovie(c.Request.Context(), viewer, ref)
	if err != nil {
		return 0, err
	}
	return movie.ID, nil
}

// caller devolve a identidade autenticada ou responde 401.
func (h *Handler) caller(c *gin.Context) (domain.Identity, bool) {
	identity := middleware.IdentityFromContext(c)
	if !identity.Authenticated() {
		respond.Error(c, h.Logger, apperror.NewUnauthorizedError("Autenticação necessária."))
		return identity, false
	}
	return identity, true
}

// RateMovie lida com a requisição PUT /v1/movies/:id/rating.
func (h *Handler) RateMovie(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	var req domain.RatingRequest
	if !respond.BindJSON(c, h.Logger, &req) {
		return
	}

	movieID, err := h.movieID(c, identity)
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}

	saved, err := h.Service.RateMovie(c.Request.Context(), identity.UserID(), movieID, *req.Score, req.Feedback)
	if err == nil && !saved {
		err = apperror.NewProcessFailedError("A avaliação não foi gravada.")
	}
	respond.Handle(c, h.Logger, RateResponse{Success: true}, err, http.StatusOK)
}

// GetRating lida com a requisição GET /v1/movies/:id/rating.
func (h *Handler) GetRating(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	movieID, err := h.movieID(c, identity)
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}

	found, err := h.Service.GetRating(c.Request.Context(), identity.UserID(), movieID)
	respond.Handle(c, h.Logger, found, err, http.StatusOK)
}

// DeleteRating lida com a requisição DELETE /v1/movies/:id/rating.
func (h *Handler) DeleteRating(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	movieID, err := h.movieID(c, identity)
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}

	err = h.Service.DeleteRating(c.Request.Context(), identity.UserID(), movieID)
	respond.Handle(c, h.Logger, nil, err, http.StatusNoContent)
}

// ListMovieRatings lida com a requisição GET /v1/movies/:id/ratings.
func (h *Handler) ListMovieRatings(c *gin.Context) {
	viewer := middleware.IdentityFromContext(c)

	var q domain.RatingQuery
	if !respond.BindQuery(c, h.Logger, &q) {
		return
	}

	movie, err := h.Movies.GetMovie(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		respond.Error(c, h.Logger, err)
		return
	}
	q.MovieID = &movie.ID

	page, err := h.Service.ListRatings(c.Request.Context(), viewer, q)
	respond.Handle(c, h.Logger, page, err, http.StatusOK)
}
