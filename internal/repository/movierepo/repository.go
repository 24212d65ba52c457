package movierepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/cache"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
)

// Chaves de cache de filmes.
const (
	movieIDCacheKey   = "movie:id:%d"
	movieSlugCacheKey = "movie:slug:%s"
)

// MovieRepository implementa o acesso a filmes e gêneros.
// Cache é opcional; quando presente, FindByID/FindBySlug usam cache-aside.
type MovieRepository struct {
	DB        *gorm.DB
	Cache     cache.Client
	CacheTTL  time.Duration
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewMovieRepository cria e retorna uma nova instância do Repositório.
func NewMovieRepository(db *gorm.DB, cacheClient cache.Client, cacheTTL, dbTimeout time.Duration, logger logger.Logger) *MovieRepository {
	return &MovieRepository{
		DB:        db,
		Cache:     cacheClient,
		CacheTTL:  cacheTTL,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save persiste um novo filme e seus gêneros na mesma transação.
func (r *MovieRepository) Save(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	movie.ID = 0
	movie.CreatedAt = now
	movie.UpdatedAt = now
	movie.Ratings = nil

	err := r.DB.WithContext(ctxTimeout).Transaction(func(tx *gorm.DB) error {
		genres := movie.Genres
		movie.Genres = nil
		if err := tx.Create(&movie).Error; err != nil {
			return err
		}
		for i := range genres {
			genres[i].ID = 0
			genres[i].MovieID = movie.ID
		}
		if len(genres) > 0 {
			if err := tx.Create(&genres).Error; err != nil {
				return err
			}
		}
		movie.Genres = genres
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("Filme duplicado (título/ano ou slug).", map[string]interface{}{"title": movie.Title, "year": movie.Year})
			return domain.Movie{}, apperror.NewConflictError(fmt.Sprintf("Já existe um filme '%s' de %d.", movie.Title, movie.Year))
		}
		r.logger.Error("Falha ao inserir filme no DB.", err)
		return domain.Movie{}, apperror.NewDBError("Falha ao inserir filme", err)
	}

	r.logger.Info("Filme criado.", map[string]interface{}{"movie_id": movie.ID, "slug": movie.Slug})
	return movie, nil
}

// FindByID busca um filme pelo ID, utilizando a estratégia Cache-Aside.
func (r *MovieRepository) FindByID(ctx context.Context, id uint64) (domain.Movie, error) {
	return r.findCached(ctx, fmt.Sprintf(movieIDCacheKey, id), "id = ?", id)
}

// FindBySlug busca um filme pelo slug, utilizando a estratégia Cache-Aside.
func (r *MovieRepository) FindBySlug(ctx context.Context, slug string) (domain.Movie, error) {
	return r.findCached(ctx, fmt.Sprintf(movieSlugCacheKey, slug), "slug = ?", slug)
}

func (r *MovieRepository) findCached(ctx context.Context, key string, query string, arg interface{}) (domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// 1. Tentar obter do Cache
	if r.Cache != nil {
		cached, err := r.Cache.Get(ctxTimeout, key)
		if err == nil {
			var movie domain.Movie
			if json.Unmarshal([]byte(cached), &movie) == nil {
				r.logger.Debug("Cache HIT de filme.", map[string]interface{}{"key": key})
				return movie, nil
			}
			r.logger.Warn("Entrada de cache corrompida; consultando o DB.", map[string]interface{}{"key": key})
		} else if err != cache.ErrCacheMiss {
			r.logger.Warn("Falha ao ler do cache; consultando o DB.", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	// 2. Busca no Banco de Dados
	var movie domain.Movie
	err := r.DB.WithContext(ctxTimeout).
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Where(query, arg).
		Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Movie{}, apperror.NewNotFoundError("Filme não encontrado.")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar filme no DB.", err)
		return domain.Movie{}, apperror.NewDBError("Falha ao buscar filme", err)
	}

	// 3. Popular o cache (ambas as chaves)
	r.store(ctxTimeout, movie)
	return movie, nil
}

func (r *MovieRepository) store(ctx context.Context, movie domain.Movie) {
	if r.Cache == nil {
		return
	}
	payload, err := json.Marshal(movie)
	if err != nil {
		r.logger.Warn("Falha ao serializar filme para cache.", map[string]interface{}{"movie_id": movie.ID})
		return
	}
	for _, key := range []string{fmt.Sprintf(movieIDCacheKey, movie.ID), fmt.Sprintf(movieSlugCacheKey, movie.Slug)} {
		if err := r.Cache.Set(ctx, key, payload, r.CacheTTL); err != nil {
			r.logger.Warn("Falha ao gravar filme no cache.", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
}

func (r *MovieRepository) evict(ctx context.Context, id uint64, slugs ...string) {
	if r.Cache == nil {
		return
	}
	keys := []string{fmt.Sprintf(movieIDCacheKey, id)}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, fmt.Sprintf(movieSlugCacheKey, s))
		}
	}
	if err := r.Cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Falha ao invalidar cache de filme.", map[string]interface{}{"movie_id": id, "error": err.Error()})
	}
}

// Update grava título, ano, slug e status. Com replaceGenres, a lista de gêneros é trocada por movie.Genres.
// previousSlug é invalidado no cache junto com o novo.
func (r *MovieRepository) Update(ctx context.Context, movie domain.Movie, replaceGenres bool, previousSlug string) (domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	movie.UpdatedAt = time.Now().UTC()

	err := r.DB.WithContext(ctxTimeout).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Movie{ID: movie.ID}).
			Select("title", "year_of_release", "slug", "status", "updated_at").
			Updates(domain.Movie{Title: movie.Title, Year: movie.Year, Slug: movie.Slug, Status: movie.Status, UpdatedAt: movie.UpdatedAt})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NewNotFoundError("Filme não encontrado.")
		}

		if !replaceGenres {
			return nil
		}
		if err := tx.Where("movie_id = ?", movie.ID).Delete(&domain.Genre{}).Error; err != nil {
			return err
		}
		for i := range movie.Genres {
			movie.Genres[i].ID = 0
			movie.Genres[i].MovieID = movie.ID
		}
		if len(movie.Genres) > 0 {
			return tx.Create(&movie.Genres).Error
		}
		return nil
	})

	r.evict(ctxTimeout, movie.ID, previousSlug, movie.Slug)

	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Movie{}, err
		}
		if database.IsUniqueViolation(err) {
			return domain.Movie{}, apperror.NewConflictError(fmt.Sprintf("Já existe um filme '%s' de %d.", movie.Title, movie.Year))
		}
		r.logger.Error("Falha ao atualizar filme no DB.", err)
		return domain.Movie{}, apperror.NewDBError("Falha ao atualizar filme", err)
	}

	r.logger.Info("Filme atualizado.", map[string]interface{}{"movie_id": movie.ID, "slug": movie.Slug})
	return r.FindByID(ctx, movie.ID)
}

// Delete remove o filme com seus gêneros e avaliações (exclusão física).
func (r *MovieRepository) Delete(ctx context.Context, id uint64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var slug string
	err := r.DB.WithContext(ctxTimeout).Transaction(func(tx *gorm.DB) error {
		var movie domain.Movie
		if err := tx.Select("id", "slug").Where("id = ?", id).Take(&movie).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Filme não encontrado.")
			}
			return err
		}
		slug = movie.Slug

		if err := tx.Where("movie_id = ?", id).Delete(&domain.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&domain.Genre{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Movie{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NewProcessFailedError("Nenhum filme foi removido.")
		}
		return nil
	})
	if err != nil {
		var appErr apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		r.logger.Error("Falha ao remover filme no DB.", err)
		return apperror.NewDBError("Falha ao remover filme", err)
	}

	r.evict(ctxTimeout, id, slug)
	r.logger.Info("Filme removido.", map[string]interface{}{"movie_id": id})
	return nil
}

// List aplica filtros, visibilidade, ordenação e paginação sobre filmes.
func (r *MovieRepository) List(ctx context.Context, q domain.MovieQuery, viewer domain.Identity, sort paging.Sort, page paging.Request) (paging.Page[domain.Movie], error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := paging.Fetch[domain.Movie](ctxTimeout, r.DB, paging.All(r.filter(q), Visibility(viewer)), sort, page, "Genres")
	if err != nil {
		r.logger.Error("Falha ao listar filmes.", err)
		return paging.Page[domain.Movie]{}, apperror.NewDBError("Falha ao listar filmes", err)
	}
	return result, nil
}

func (r *MovieRepository) filter(q domain.MovieQuery) paging.Scope {
	return func(db *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(q.Title); term != "" {
			expr, arg := database.ContainsFold(r.DB, "movies.title", term)
			db = db.Where(expr, arg)
		}
		if q.Year != nil {
			db = db.Where("movies.year_of_release = ?", *q.Year)
		}
		if q.Status != nil {
			db = db.Where("movies.status = ?", *q.Status)
		}
		if q.UserID != nil {
			db = db.Where("movies.user_id = ?", *q.UserID)
		}
		if genre := strings.TrimSpace(q.Genre); genre != "" {
			db = db.Where("EXISTS (SELECT 1 FROM genres g WHERE g.movie_id = movies.id AND LOWER(g.name) = ?)", strings.ToLower(genre))
		}
		return db
	}
}

// Visibility é o filtro de permissão por status: admin vê tudo, o dono vê os seus,
// os demais apenas filmes publicados.
func Visibility(viewer domain.Identity) paging.Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case viewer.IsAdmin():
			return db
		case viewer.Authenticated():
			return db.Where("(movies.status = ? OR movies.user_id = ?)", domain.MoviePublished, viewer.UserID())
		default:
			return db.Where("movies.status = ?", domain.MoviePublished)
		}
	}
}
