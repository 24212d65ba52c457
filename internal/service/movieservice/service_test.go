package movieservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/service/movieservice"
)

// MockMovieRepository é uma implementação mock da interface MovieRepository.
type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) Save(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	args := m.Called(ctx, movie)
	if fn, ok := args.Get(0).(func(domain.Movie) domain.Movie); ok {
		return fn(movie), args.Error(1)
	}
	return args.Get(0).(domain.Movie), args.Error(1)
}

func (m *MockMovieRepository) FindByID(ctx context.Context, id uint64) (domain.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Movie), args.Error(1)
}

func (m *MockMovieRepository) FindBySlug(ctx context.Context, slug string) (domain.Movie, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(domain.Movie), args.Error(1)
}

func (m *MockMovieRepository) Update(ctx context.Context, movie domain.Movie, replaceGenres bool, previousSlug string) (domain.Movie, error) {
	args := m.Called(ctx, movie, replaceGenres, previousSlug)
	if fn, ok := args.Get(0).(func(domain.Movie) domain.Movie); ok {
		return fn(movie), args.Error(1)
	}
	return args.Get(0).(domain.Movie), args.Error(1)
}

func (m *MockMovieRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMovieRepository) List(ctx context.Context, q domain.MovieQuery, viewer domain.Identity, sort paging.Sort, page paging.Request) (paging.Page[domain.Movie], error) {
	args := m.Called(ctx, q, viewer, sort, page)
	return args.Get(0).(paging.Page[domain.Movie]), args.Error(1)
}

func identity(id uint64, role domain.UserRole) domain.Identity {
	return domain.NewIdentity(domain.User{ID: id, Role: role, Status: domain.StatusActive})
}

func echo(m domain.Movie) domain.Movie { return m }

func TestCreateMovie_SlugDefaultsAndGenres(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Movie")).Return(echo, nil)

	movie, err := svc.CreateMovie(context.Background(), identity(1, domain.RoleAdmin), domain.MovieCreate{
		Title:  " Dune ",
		Year:   2021,
		Genres: []string{"Sci-Fi", " sci-fi", "", "Drama"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Dune", movie.Title)
	assert.Equal(t, "dune-2021", movie.Slug)
	assert.Equal(t, domain.MovieDraft, movie.Status)
	assert.Equal(t, uint64(1), movie.UserID)
	assert.Equal(t, []string{"Sci-Fi", "Drama"}, movie.GenreNames())
}

func TestCreateMovie_Anonymous(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	_, err := svc.CreateMovie(context.Background(), domain.Anonymous(), domain.MovieCreate{Title: "Dune", Year: 2021})

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetMovie_NumericRefUsesID(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	repo.On("FindByID", mock.Anything, uint64(42)).Return(domain.Movie{ID: 42, Status: domain.MoviePublished}, nil)

	movie, err := svc.GetMovie(context.Background(), domain.Anonymous(), "42")

	require.NoError(t, err)
	assert.Equal(t, uint64(42), movie.ID)
	repo.AssertNotCalled(t, "FindBySlug", mock.Anything, mock.Anything)
}

func TestGetMovie_SlugRef(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	repo.On("FindBySlug", mock.Anything, "dune-2021").Return(domain.Movie{ID: 1, Slug: "dune-2021", Status: domain.MoviePublished}, nil)

	movie, err := svc.GetMovie(context.Background(), domain.Anonymous(), "Dune-2021")

	require.NoError(t, err)
	assert.Equal(t, "dune-2021", movie.Slug)
}

func TestGetMovie_DraftHiddenFromOthers(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	draft := domain.Movie{ID: 5, UserID: 1, Status: domain.MovieDraft}
	repo.On("FindByID", mock.Anything, uint64(5)).Return(draft, nil)

	_, err := svc.GetMovie(context.Background(), domain.Anonymous(), "5")
	assert.IsType(t, &apperror.NotFoundError{}, err)

	_, err = svc.GetMovie(context.Background(), identity(2, domain.RoleUser), "5")
	assert.IsType(t, &apperror.NotFoundError{}, err)

	_, err = svc.GetMovie(context.Background(), identity(1, domain.RoleUser), "5")
	assert.NoError(t, err)

	_, err = svc.GetMovie(context.Background(), identity(3, domain.RoleAdmin), "5")
	assert.NoError(t, err)
}

func TestListMovies_InvalidSort(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	_, err := svc.ListMovies(context.Background(), domain.Anonymous(), domain.MovieQuery{SortBy: "rating"})

	require.Error(t, err)
	assert.Equal(t, "sortBy", apperror.FieldsOf(err)[0].Field)
}

func TestListMovies_DefaultsApplied(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	viewer := domain.Anonymous()
	q := domain.MovieQuery{}
	repo.On("List", mock.Anything, q, viewer, domain.DefaultMovieSort, paging.Request{Page: 1, PageSize: 10}).
		Return(paging.Page[domain.Movie]{Items: []domain.Movie{}, CurrentPage: 1, PageSize: 10}, nil)

	page, err := svc.ListMovies(context.Background(), viewer, q)

	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	repo.AssertExpectations(t)
}

func TestUpdateMovie_OwnerRecomputesSlug(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	existing := domain.Movie{ID: 5, UserID: 1, Title: "Dune", Year: 2021, Slug: "dune-2021", Status: domain.MovieDraft}
	repo.On("FindByID", mock.Anything, uint64(5)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(m domain.Movie) bool {
		return m.Title == "Dune Part Two" && m.Year == 2024 && m.Slug == "dune-part-two-2024"
	}), false, "dune-2021").Return(echo, nil)

	title, year := "Dune Part Two", 2024
	updated, err := svc.UpdateMovie(context.Background(), identity(1, domain.RoleUser), "5", domain.MovieUpdate{Title: &title, Year: &year})

	require.NoError(t, err)
	assert.Equal(t, "dune-part-two-2024", updated.Slug)
	repo.AssertExpectations(t)
}

func TestUpdateMovie_ReplacesGenresWhenPresent(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	existing := domain.Movie{ID: 5, UserID: 1, Title: "Dune", Year: 2021, Slug: "dune-2021", Status: domain.MoviePublished,
		Genres: []domain.Genre{{ID: 1, MovieID: 5, Name: "Drama"}}}
	repo.On("FindByID", mock.Anything, uint64(5)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(m domain.Movie) bool { return len(m.Genres) == 0 }), true, "dune-2021").
		Return(echo, nil)

	_, err := svc.UpdateMovie(context.Background(), identity(9, domain.RoleAdmin), "5", domain.MovieUpdate{Genres: []string{}})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateMovie_NotOwnerForbidden(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	repo.On("FindByID", mock.Anything, uint64(5)).Return(domain.Movie{ID: 5, UserID: 1, Status: domain.MoviePublished}, nil)

	_, err := svc.UpdateMovie(context.Background(), identity(2, domain.RoleUser), "5", domain.MovieUpdate{})

	assert.IsType(t, &apperror.ForbiddenError{}, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteMovie_AdminOnly(t *testing.T) {
	repo := new(MockMovieRepository)
	svc := movieservice.NewService(repo, logger.NewNop())

	err := svc.DeleteMovie(context.Background(), identity(1, domain.RoleUser), "5")
	assert.IsType(t, &apperror.ForbiddenError{}, err)

	repo.On("FindByID", mock.Anything, uint64(5)).Return(domain.Movie{ID: 5}, nil)
	repo.On("Delete", mock.Anything, uint64(5)).Return(nil)

	require.NoError(t, svc.DeleteMovie(context.Background(), identity(9, domain.RoleAdmin), "5"))
	repo.AssertExpectations(t)
}
