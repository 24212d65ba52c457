package ratingservice

import (
	"context"
	"strings"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
)

// maxAttempts limita o upsert a uma nova tentativa após conflito no índice único.
const maxAttempts = 2

// RatingRepository define o contrato que o Serviço de Avaliações espera da camada de Persistência.
type RatingRepository interface {
	FindByUserAndMovie(ctx context.Context, userID, movieID uint64) (domain.Rating, error)
	Insert(ctx context.Context, rating domain.Rating) (int64, error)
	Update(ctx context.Context, rating domain.Rating) (int64, error)
	Delete(ctx context.Context, userID, movieID uint64) (int64, error)
	List(ctx context.Context, q domain.RatingQuery, viewer domain.Identity, sort paging.Sort, page paging.Request) (paging.Page[domain.Rating], error)
}

// MovieLookup é a leitura de filmes usada na verificação de elegibilidade.
type MovieLookup interface {
	FindByID(ctx context.Context, id uint64) (domain.Movie, error)
}

// Service é a estrutura que implementa as operações de avaliação.
type Service struct {
	repo        RatingRepository
	movies      MovieLookup
	eligibility domain.RatingEligibility
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Avaliações.
func NewService(repo RatingRepository, movies MovieLookup, eligibility domain.RatingEligibility, logger logger.Logger) *Service {
	if !eligibility.Valid() {
		eligibility = domain.EligibleUnpublished
	}
	return &Service{repo: repo, movies: movies, eligibility: eligibility, logger: logger}
}

// RateMovie cria ou sobrescreve a avaliação de userID para movieID. Devolve true quando alguma linha foi gravada.
func (s *Service) RateMovie(ctx context.Context, userID, movieID uint64, score int, feedback *string) (bool, error) {
	s.logger.Debug("Iniciando avaliação de filme no serviço.", map[string]interface{}{"user_id": userID, "movie_id": movieID, "score": score})

	if score < domain.MinScore || score > domain.MaxScore {
		return false, apperror.NewFieldValidationError(apperror.FieldError{Field: "score", Message: "deve estar entre 0 e 5"})
	}
	if err := s.checkMovie(ctx, movieID); err != nil {
		return false, err
	}

	rating := domain.Rating{UserID: userID, MovieID: movieID, Score: score, Feedback: normalizeFeedback(feedback)}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		affected, err := s.upsert(ctx, rating)
		if err == nil {
			return affected > 0, nil
		}
		if !apperror.IsConflict(err) {
			return false, err
		}
		s.logger.Warn("Conflito ao gravar avaliação; tentando novamente.", map[string]interface{}{"user_id": userID, "movie_id": movieID, "attempt": attempt})
	}

	return false, apperror.NewProcessFailedError("Não foi possível gravar a avaliação. Tente novamente.")
}

func (s *Service) upsert(ctx context.Context, rating domain.Rating) (int64, error) {
	_, err := s.repo.FindByUserAndMovie(ctx, rating.UserID, rating.MovieID)
	switch {
	case err == nil:
		return s.repo.Update(ctx, rating)
	case apperror.IsNotFound(err):
		return s.repo.Insert(ctx, rating)
	default:
		return 0, err
	}
}

// checkMovie aplica a regra de elegibilidade configurada. Filme inexistente ou inelegível é NotFound.
func (s *Service) checkMovie(ctx context.Context, movieID uint64) error {
	movie, err := s.movies.FindByID(ctx, movieID)
	if err != nil {
		return err
	}
	if !s.eligibility.Allows(movie.Status) {
		s.logger.Info("Filme não elegível para avaliação.", map[string]interface{}{"movie_id": movieID, "status": movie.Status, "eligibility": s.eligibility})
		return apperror.NewNotFoundError("Filme não encontrado.")
	}
	return nil
}

// DeleteRating remove a avaliação do usuário; sem linha removida, NotFound.
func (s *Service) DeleteRating(ctx context.Context, userID, movieID uint64) error {
	affected, err := s.repo.Delete(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFoundError("Avaliação não encontrada.")
	}
	s.logger.Info("Avaliação removida.", map[string]interface{}{"user_id": userID, "movie_id": movieID})
	return nil
}

// GetRating devolve a avaliação do próprio usuário para um filme.
func (s *Service) GetRating(ctx context.Context, userID, movieID uint64) (domain.Rating, error) {
	return s.repo.FindByUserAndMovie(ctx, userID, movieID)
}

// ListRatings aplica o pipeline de filtro, visibilidade, ordenação e paginação.
func (s *Service) ListRatings(ctx context.Context, viewer domain.Identity, q domain.RatingQuery) (paging.Page[domain.Rating], error) {
	page, pageErr := q.Query.Normalize()
	sort, sortErr := paging.ParseSort(q.SortBy, domain.RatingSortFields, domain.DefaultRatingSort)
	if err := apperror.MergeValidation(pageErr, sortErr); err != nil {
		return paging.Page[domain.Rating]{}, err
	}
	return s.repo.List(ctx, q, viewer, sort, page)
}

func normalizeFeedback(feedback *string) *string {
	if feedback == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*feedback)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
