package userrepo_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/repository/userrepo"
)

func setup(t *testing.T) *userrepo.UserRepository {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "users.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return userrepo.NewUserRepository(db, 5*time.Second, logger.NewNop())
}

func newUser(email, key, first string, role domain.UserRole, status domain.UserStatus) domain.User {
	return domain.User{
		Email:        email,
		PasswordHash: "hash",
		AuthKey:      key,
		FirstName:    first,
		LastName:     "Silva",
		Role:         role,
		Status:       status,
	}
}

func TestSaveAndFind(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newUser("ana@exemplo.com", "k1", "Ana", domain.RoleUser, domain.StatusInactive))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	byEmail, err := repo.FindByEmail(ctx, "ana@exemplo.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)

	byKey, err := repo.FindByAuthKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byKey.ID)

	_, err = repo.FindByAuthKey(ctx, "")
	assert.True(t, apperror.IsNotFound(err))

	_, err = repo.FindByID(ctx, 999)
	assert.True(t, apperror.IsNotFound(err))

	_, err = repo.Save(ctx, newUser("ana@exemplo.com", "k2", "Outra", domain.RoleUser, domain.StatusInactive))
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateAndMetadata(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newUser("bia@exemplo.com", "k1", "Bia", domain.RoleUser, domain.StatusInactive))
	require.NoError(t, err)

	saved.Status = domain.StatusActive
	saved.AuthKey = "k1-rotacionada"
	saved.MutateMeta(func(m *domain.UserMetadata) { m.Activate(time.Now().UTC()) })
	_, err = repo.Update(ctx, saved)
	require.NoError(t, err)

	got, err := repo.FindByAuthKey(ctx, "k1-rotacionada")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.NotNil(t, got.Meta().Activation.ActivatedAt)

	meta, err := repo.UpdateMetadata(ctx, got.ID, func(m *domain.UserMetadata) {
		m.RecordLoginSuccess("10.0.0.1", time.Now().UTC())
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, meta.Login.SuccessCount)

	got, err = repo.FindByID(ctx, got.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Meta().Login.SuccessCount)
	assert.Equal(t, "10.0.0.1", got.Meta().Login.LastLoginIP)
	assert.Equal(t, domain.StatusActive, got.Status)

	_, err = repo.UpdateMetadata(ctx, 999, func(m *domain.UserMetadata) {})
	assert.Error(t, err)

	_, err = repo.Update(ctx, domain.User{ID: 999, Email: "x@y.z", AuthKey: "zz", Role: domain.RoleUser, Status: domain.StatusActive})
	assert.Error(t, err)
}

func TestUpdateMetadataAppliesOverCurrentRow(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newUser("caio@exemplo.com", "k1", "Caio", domain.RoleUser, domain.StatusActive))
	require.NoError(t, err)

	// Troca de senha gravada depois da leitura que a telemetria usaria.
	changedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = repo.UpdateMetadata(ctx, saved.ID, func(m *domain.UserMetadata) { m.RecordPasswordChange(changedAt) })
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateMetadata(ctx, saved.ID, func(m *domain.UserMetadata) {
				m.RecordLoginSuccess("10.0.0.2", time.Now().UTC())
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.EqualValues(t, workers, got.Meta().Login.SuccessCount)
	require.NotNil(t, got.Meta().Password.ChangedAt)
	assert.True(t, changedAt.Equal(*got.Meta().Password.ChangedAt))
}

func TestListFilters(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	for _, u := range []domain.User{
		newUser("ana@exemplo.com", "k1", "Ana", domain.RoleAdmin, domain.StatusActive),
		newUser("bruno@exemplo.com", "k2", "Bruno", domain.RoleUser, domain.StatusActive),
		newUser("carla@outro.com", "k3", "Carla", domain.RoleUser, domain.StatusBlocked),
	} {
		_, err := repo.Save(ctx, u)
		require.NoError(t, err)
	}

	byEmail := paging.Sort{Field: "email", Column: "email"}
	page1 := paging.Request{Page: 1, PageSize: 10}
	role := domain.RoleUser
	status := domain.StatusActive

	page, err := repo.List(ctx, domain.UserQuery{}, byEmail, page1)
	require.NoError(t, err)
	require.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, "ana@exemplo.com", page.Items[0].Email)

	page, err = repo.List(ctx, domain.UserQuery{Email: "EXEMPLO"}, byEmail, page1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalItems)

	page, err = repo.List(ctx, domain.UserQuery{Name: "silva"}, byEmail, page1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)

	page, err = repo.List(ctx, domain.UserQuery{Role: &role, Status: &status}, byEmail, page1)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalItems)
	assert.Equal(t, "bruno@exemplo.com", page.Items[0].Email)
}
