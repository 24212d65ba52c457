package ratingrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
)

// RatingRepository implementa o acesso às avaliações, chaveadas por (user_id, movie_id).
type RatingRepository struct {
	DB        *gorm.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewRatingRepository cria e retorna uma nova instância do Repositório de Avaliações.
func NewRatingRepository(db *gorm.DB, dbTimeout time.Duration, logger logger.Logger) *RatingRepository {
	return &RatingRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByUserAndMovie busca a avaliação de um usuário para um filme.
func (r *RatingRepository) FindByUserAndMovie(ctx context.Context, userID, movieID uint64) (domain.Rating, error) {
	r.logger.Debug("Buscando avaliação no repositório.", map[string]interface{}{"user_id": userID, "movie_id": movieID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var rating domain.Rating
	err := r.DB.WithContext(ctxTimeout).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Take(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Rating{}, apperror.NewNotFoundError("Avaliação não encontrada.")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar avaliação no DB.", err)
		return domain.Rating{}, apperror.NewDBError("Falha ao buscar avaliação", err)
	}
	return rating, nil
}

// Insert cria uma avaliação nova. Se o índice único (user_id, movie_id) rejeitar a linha,
// devolve ConflictError para que o serviço refaça a leitura e siga pelo caminho de update.
func (r *RatingRepository) Insert(ctx context.Context, rating domain.Rating) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	rating.ID = 0
	rating.CreatedAt = now
	rating.UpdatedAt = now

	result := r.DB.WithContext(ctxTimeout).Create(&rating)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			r.logger.Warn("Avaliação concorrente detectada no insert.", map[string]interface{}{"user_id": rating.UserID, "movie_id": rating.MovieID})
			return 0, apperror.NewConflictError("O usuário já avaliou este filme.")
		}
		r.logger.Error("Falha ao inserir avaliação.", result.Error)
		return 0, apperror.NewDBError("Falha ao inserir avaliação", result.Error)
	}

	r.logger.Info("Nova avaliação criada.", map[string]interface{}{"user_id": rating.UserID, "movie_id": rating.MovieID, "score": rating.Score})
	return result.RowsAffected, nil
}

// Update sobrescreve nota e comentário da avaliação existente de (user_id, movie_id).
func (r *RatingRepository) Update(ctx context.Context, rating domain.Rating) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result := r.DB.WithContext(ctxTimeout).
		Model(&domain.Rating{}).
		Where("user_id = ? AND movie_id = ?", rating.UserID, rating.MovieID).
		Select("score", "feedback", "updated_at").
		Updates(domain.Rating{Score: rating.Score, Feedback: rating.Feedback, UpdatedAt: time.Now().UTC()})
	if result.Error != nil {
		r.logger.Error("Falha ao atualizar avaliação.", result.Error)
		return 0, apperror.NewDBError("Falha ao atualizar avaliação", result.Error)
	}

	r.logger.Info("Avaliação atualizada.", map[string]interface{}{"user_id": rating.UserID, "movie_id": rating.MovieID, "score": rating.Score, "rows": result.RowsAffected})
	return result.RowsAffected, nil
}

// Delete remove a avaliação de (user_id, movie_id); devolve o número de linhas removidas.
func (r *RatingRepository) Delete(ctx context.Context, userID, movieID uint64) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result := r.DB.WithContext(ctxTimeout).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&domain.Rating{})
	if result.Error != nil {
		r.logger.Error("Falha ao remover avaliação.", result.Error)
		return 0, apperror.NewDBError("Falha ao remover avaliação", result.Error)
	}
	return result.RowsAffected, nil
}

// List aplica filtros, visibilidade, ordenação e paginação sobre avaliações.
func (r *RatingRepository) List(ctx context.Context, q domain.RatingQuery, viewer domain.Identity, sort paging.Sort, page paging.Request) (paging.Page[domain.Rating], error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := paging.Fetch[domain.Rating](ctxTimeout, r.DB, paging.All(r.filter(q), visibility(viewer)), sort, page)
	if err != nil {
		r.logger.Error("Falha ao listar avaliações.", err)
		return paging.Page[domain.Rating]{}, apperror.NewDBError("Falha ao listar avaliações", err)
	}
	return result, nil
}

func (r *RatingRepository) filter(q domain.RatingQuery) paging.Scope {
	return func(db *gorm.DB) *gorm.DB {
		if q.MovieID != nil {
			db = db.Where("ratings.movie_id = ?", *q.MovieID)
		}
		if q.UserID != nil {
			db = db.Where("ratings.user_id = ?", *q.UserID)
		}
		if q.Score != nil {
			db = db.Where("ratings.score = ?", *q.Score)
		}
		if term := strings.TrimSpace(q.Feedback); term != "" {
			expr, arg := database.ContainsFold(r.DB, "ratings.feedback", term)
			db = db.Where(expr, arg)
		}
		return db
	}
}

// visibility restringe as avaliações às de filmes que o chamador pode ver, mais as suas próprias.
func visibility(viewer domain.Identity) paging.Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case viewer.IsAdmin():
			return db
		case viewer.Authenticated():
			return db.Where("(ratings.user_id = ? OR ratings.movie_id IN (SELECT id FROM movies WHERE status = ? OR user_id = ?))",
				viewer.UserID(), domain.MoviePublished, viewer.UserID())
		default:
			return db.Where("ratings.movie_id IN (SELECT id FROM movies WHERE status = ?)", domain.MoviePublished)
		}
	}
}
