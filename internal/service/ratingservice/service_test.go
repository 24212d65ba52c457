package ratingservice_test

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
	"gomovies/internal/service/ratingservice"
)

// MockRatingRepository é uma implementação mock da interface RatingRepository.
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) FindByUserAndMovie(ctx context.Context, userID, movieID uint64) (domain.Rating, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Get(0).(domain.Rating), args.Error(1)
}

func (m *MockRatingRepository) Insert(ctx context.Context, rating domain.Rating) (int64, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingRepository) Update(ctx context.Context, rating domain.Rating) (int64, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingRepository) Delete(ctx context.Context, userID, movieID uint64) (int64, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingRepository) List(ctx context.Context, q domain.RatingQuery, viewer domain.Identity, sort paging.Sort, page paging.Request) (paging.Page[domain.Rating], error) {
	args := m.Called(ctx, q, viewer, sort, page)
	return args.Get(0).(paging.Page[domain.Rating]), args.Error(1)
}

// MockMovieLookup é uma implementação mock da interface MovieLookup.
type MockMovieLookup struct {
	mock.Mock
}

func (m *MockMovieLookup) FindByID(ctx context.Context, id uint64) (domain.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Movie), args.Error(1)
}

const (
	userID  = uint64(7)
	movieID = uint64(3)
)

var notFound = apperror.NewNotFoundError("Avaliação não encontrada.")

func setup(eligibility domain.RatingEligibility, status domain.MovieStatus) (*ratingservice.Service, *MockRatingRepository, *MockMovieLookup) {
	repo := new(MockRatingRepository)
	movies := new(MockMovieLookup)
	movies.On("FindByID", mock.Anything, movieID).Return(domain.Movie{ID: movieID, Status: status}, nil)
	return ratingservice.NewService(repo, movies, eligibility, logger.NewNop()), repo, movies
}

func TestRateMovie_InsertsWhenAbsent(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MovieDraft)

	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{}, notFound).Once()
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(r domain.Rating) bool { return r.Score == 4 })).Return(int64(1), nil).Once()

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 4, nil)

	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRateMovie_UpdatesWhenPresent(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MoviePending)

	feedback := "  melhor na segunda vez "
	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{ID: 1, UserID: userID, MovieID: movieID, Score: 4}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r domain.Rating) bool {
		return r.Score == 2 && r.Feedback != nil && *r.Feedback == "melhor na segunda vez"
	})).Return(int64(1), nil)

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 2, &feedback)

	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRateMovie_ConflictRetriesOnceThroughUpdate(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MovieDraft)

	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{}, notFound).Once()
	repo.On("Insert", mock.Anything, mock.Anything).Return(int64(0), apperror.NewConflictError("O usuário já avaliou este filme.")).Once()
	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{ID: 1, UserID: userID, MovieID: movieID, Score: 1}, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 5, nil)

	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}

func TestRateMovie_RetriesExhausted_ProcessFailed(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MovieDraft)

	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{}, notFound)
	repo.On("Insert", mock.Anything, mock.Anything).Return(int64(0), apperror.NewConflictError("O usuário já avaliou este filme."))

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 3, nil)

	assert.False(t, ok)
	assert.IsType(t, &apperror.ProcessFailedError{}, err)
	repo.AssertNumberOfCalls(t, "Insert", 2)
}

func TestRateMovie_ZeroRowsAffected_ReturnsFalse(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MovieDraft)

	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{ID: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(int64(0), nil)

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 3, nil)

	require.NoError(t, err)
	assert.False(t, ok)
}

// Comportamento herdado: com a elegibilidade padrão, filmes publicados não aceitam avaliação.
func TestRateMovie_DefaultEligibility_PublishedIsNotFound(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MoviePublished)

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 3, nil)

	assert.False(t, ok)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	repo.AssertNotCalled(t, "FindByUserAndMovie", mock.Anything, mock.Anything, mock.Anything)
}

func TestRateMovie_PublishedEligibility(t *testing.T) {
	svc, _, _ := setup(domain.EligiblePublished, domain.MovieDraft)

	_, err := svc.RateMovie(context.Background(), userID, movieID, 3, nil)
	assert.IsType(t, &apperror.NotFoundError{}, err)

	svc, repo, _ := setup(domain.EligiblePublished, domain.MoviePublished)
	repo.On("FindByUserAndMovie", mock.Anything, userID, movieID).Return(domain.Rating{}, notFound)
	repo.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	ok, err := svc.RateMovie(context.Background(), userID, movieID, 3, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateMovie_MissingMovie(t *testing.T) {
	repo := new(MockRatingRepository)
	movies := new(MockMovieLookup)
	movies.On("FindByID", mock.Anything, uint64(99)).Return(domain.Movie{}, apperror.NewNotFoundError("Filme não encontrado."))
	svc := ratingservice.NewService(repo, movies, domain.EligibleUnpublished, logger.NewNop())

	_, err := svc.RateMovie(context.Background(), userID, 99, 3, nil)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestRateMovie_ScoreOutOfRange(t *testing.T) {
	svc, repo, movies := setup(domain.EligibleUnpublished, domain.MovieDraft)

	for _, score := range []int{-1, 6} {
		_, err := svc.RateMovie(context.Background(), userID, movieID, score, nil)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	movies.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "FindByUserAndMovie", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteRating(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MovieDraft)

	repo.On("Delete", mock.Anything, userID, movieID).Return(int64(1), nil).Once()
	require.NoError(t, svc.DeleteRating(context.Background(), userID, movieID))

	repo.On("Delete", mock.Anything, userID, movieID).Return(int64(0), nil).Once()
	assert.IsType(t, &apperror.NotFoundError{}, svc.DeleteRating(context.Background(), userID, movieID))
}

func TestListRatings_DefaultSort(t *testing.T) {
	svc, repo, _ := setup(domain.EligibleUnpublished, domain.MovieDraft)

	viewer := domain.Anonymous()
	id := movieID
	q := domain.RatingQuery{MovieID: &id}
	repo.On("List", mock.Anything, q, viewer, domain.DefaultRatingSort, paging.Request{Page: 1, PageSize: 10}).
		Return(paging.Page[domain.Rating]{Items: []domain.Rating{}}, nil)

	_, err := svc.ListRatings(context.Background(), viewer, q)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
