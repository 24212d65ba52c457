package movieservice

import (
	"context"
	"strconv"
	"strings"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/pkg/slug"
)

// MovieRepository define o contrato (interface) que este Serviço espera da camada de Persistência (DB, Cache).
type MovieRepository interface {
	Save(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	FindByID(ctx context.Context, id uint64) (domain.Movie, error)
	FindBySlug(ctx context.Context, slug string) (domain.Movie, error)
	Update(ctx context.Context, movie domain.Movie, replaceGenres bool, previousSlug string) (domain.Movie, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, q domain.MovieQuery, viewer domain.Identity, sort paging.Sort, page paging.Request) (paging.Page[domain.Movie], error)
}

// Service implementa as regras de negócio do catálogo de filmes.
type Service struct {
	repo   MovieRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Filmes.
func NewService(repo MovieRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateMovie cadastra um filme em nome do usuário autenticado. Status padrão: draft.
func (s *Service) CreateMovie(ctx context.Context, viewer domain.Identity, input domain.MovieCreate) (domain.Movie, error) {
	if !viewer.Authenticated() {
		return domain.Movie{}, apperror.NewUnauthorizedError("Autenticação necessária.")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Movie{}, apperror.NewFieldValidationError(apperror.FieldError{Field: "title", Message: "não pode ser vazio"})
	}

	status := domain.MovieDraft
	if input.Status != nil {
		status = *input.Status
	}

	movie := domain.Movie{
		UserID: viewer.UserID(),
		Title:  title,
		Year:   input.Year,
		Slug:   slug.ForMovie(title, input.Year),
		Status: status,
		Genres: toGenres(input.Genres),
	}

	created, err := s.repo.Save(ctx, movie)
	if err != nil {
		return domain.Movie{}, err
	}

	s.logger.Info("Filme cadastrado.", map[string]interface{}{"movie_id": created.ID, "slug": created.Slug, "user_id": created.UserID})
	return created, nil
}

// GetMovie busca um filme por ID numérico ou slug. Filmes que o chamador não pode ver são tratados como inexistentes.
func (s *Service) GetMovie(ctx context.Context, viewer domain.Identity, ref string) (domain.Movie, error) {
	movie, err := s.lookup(ctx, ref)
	if err != nil {
		return domain.Movie{}, err
	}
	if !movie.VisibleTo(viewer) {
		return domain.Movie{}, apperror.NewNotFoundError("Filme não encontrado.")
	}
	return movie, nil
}

func (s *Service) lookup(ctx context.Context, ref string) (domain.Movie, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Movie{}, apperror.NewNotFoundError("Filme não encontrado.")
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.FindBySlug(ctx, strings.ToLower(ref))
}

// ListMovies aplica o pipeline de filtro, visibilidade, ordenação e paginação.
func (s *Service) ListMovies(ctx context.Context, viewer domain.Identity, q domain.MovieQuery) (paging.Page[domain.Movie], error) {
	page, pageErr := q.Query.Normalize()
	sort, sortErr := paging.ParseSort(q.SortBy, domain.MovieSortFields, domain.DefaultMovieSort)
	if err := apperror.MergeValidation(pageErr, sortErr); err != nil {
		return paging.Page[domain.Movie]{}, err
	}
	return s.repo.List(ctx, q, viewer, sort, page)
}

// UpdateMovie altera um filme. Apenas o dono ou um admin podem alterar; o slug acompanha título e ano.
func (s *Service) UpdateMovie(ctx context.Context, viewer domain.Identity, ref string, input domain.MovieUpdate) (domain.Movie, error) {
	movie, err := s.GetMovie(ctx, viewer, ref)
	if err != nil {
		return domain.Movie{}, err
	}
	if !viewer.CheckSameID(movie.UserID, true) {
		s.logger.Info("Alteração de filme negada.", map[string]interface{}{"movie_id": movie.ID, "user_id": viewer.UserID()})
		return domain.Movie{}, apperror.NewForbiddenError("Apenas o dono do filme ou um administrador pode alterá-lo.")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return domain.Movie{}, apperror.NewFieldValidationError(apperror.FieldError{Field: "title", Message: "não pode ser vazio"})
		}
		movie.Title = title
	}
	if input.Year != nil {
		movie.Year = *input.Year
	}
	if input.Status != nil {
		movie.Status = *input.Status
	}

	previousSlug := movie.Slug
	movie.Slug = slug.ForMovie(movie.Title, movie.Year)

	replaceGenres := input.Genres != nil
	if replaceGenres {
		movie.Genres = toGenres(input.Genres)
	}

	updated, err := s.repo.Update(ctx, movie, replaceGenres, previousSlug)
	if err != nil {
		return domain.Movie{}, err
	}

	s.logger.Info("Filme alterado.", map[string]interface{}{"movie_id": updated.ID, "slug": updated.Slug, "actor_id": viewer.UserID()})
	return updated, nil
}

// DeleteMovie remove o filme com gêneros e avaliações. Reservado a administradores.
func (s *Service) DeleteMovie(ctx context.Context, viewer domain.Identity, ref string) error {
	if !viewer.IsAdmin() {
		return apperror.NewForbiddenError("Apenas administradores podem remover filmes.")
	}

	movie, err := s.lookup(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, movie.ID); err != nil {
		return err
	}

	s.logger.Info("Filme removido.", map[string]interface{}{"movie_id": movie.ID, "actor_id": viewer.UserID()})
	return nil
}

// toGenres remove brancos e duplicatas (sem diferenciar maiúsculas), preservando a primeira grafia.
func toGenres(names []string) []domain.Genre {
	seen := make(map[string]struct{}, len(names))
	genres := make([]domain.Genre, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		genres = append(genres, domain.Genre{Name: name})
	}
	return genres
}
