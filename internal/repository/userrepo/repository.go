package userrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
)

// UserRepository implementa o acesso a dados de usuários sobre o GORM.
type UserRepository struct {
	DB        *gorm.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *gorm.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo usuário. E-mail ou AuthKey duplicados viram ConflictError.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	user.ID = 0
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := r.DB.WithContext(ctxTimeout).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("E-mail já cadastrado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByID busca um usuário pelo ID numérico.
func (r *UserRepository) FindByID(ctx context.Context, id uint64) (domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail busca um usuário pelo e-mail (já normalizado pelo serviço).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByAuthKey busca um usuário pela chave de autenticação (subject do token).
func (r *UserRepository) FindByAuthKey(ctx context.Context, authKey string) (domain.User, error) {
	if authKey == "" {
		return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
	}
	return r.findOne(ctx, "auth_key = ?", authKey)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	err := r.DB.WithContext(ctxTimeout).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}

// Update regrava os campos mutáveis do usuário (tudo exceto ID e CreatedAt).
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()
	result := r.DB.WithContext(ctxTimeout).
		Model(&domain.User{ID: user.ID}).
		Select("email", "password_hash", "auth_key", "first_name", "last_name", "role", "status", "metadata", "updated_at").
		Updates(&user)

	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return domain.User{}, apperror.NewConflictError("E-mail ou chave de autenticação já em uso.")
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", result.Error)
		return domain.User{}, apperror.NewDBError("Falha ao atualizar usuário", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("Atualização de usuário não afetou nenhuma linha.", map[string]interface{}{"user_id": user.ID})
		return domain.User{}, apperror.NewProcessFailedError("Nenhum usuário foi atualizado.")
	}

	r.logger.Debug("Usuário atualizado.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// UpdateMetadata relê a metadata com lock de linha, aplica mutate e grava apenas essa coluna.
// Escritas concorrentes (telemetria de login, troca de senha, kill-switch) não se sobrescrevem.
func (r *UserRepository) UpdateMetadata(ctx context.Context, id uint64, mutate func(m *domain.UserMetadata)) (domain.UserMetadata, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var meta domain.UserMetadata
	err := r.DB.WithContext(ctxTimeout).Transaction(func(tx *gorm.DB) error {
		query := tx.Select("id", "metadata")
		// SQLite serializa as escritas e não aceita FOR UPDATE.
		if !database.IsSQLite(tx) {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var user domain.User
		if err := query.First(&user, id).Error; err != nil {
			return err
		}
		user.MutateMeta(mutate)
		meta = user.Meta()

		return tx.Model(&domain.User{ID: id}).
			Select("metadata", "updated_at").
			Updates(domain.User{Metadata: user.Metadata, UpdatedAt: time.Now().UTC()}).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserMetadata{}, apperror.NewProcessFailedError("Nenhum usuário foi atualizado.")
	}
	if err != nil {
		r.logger.Error("Falha ao gravar metadata do usuário.", err)
		return domain.UserMetadata{}, apperror.NewDBError("Falha ao gravar metadata do usuário", err)
	}
	return meta, nil
}

// List aplica filtros, ordenação e paginação sobre usuários.
func (r *UserRepository) List(ctx context.Context, q domain.UserQuery, sort paging.Sort, page paging.Request) (paging.Page[domain.User], error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := paging.Fetch[domain.User](ctxTimeout, r.DB, r.filter(q), sort, page)
	if err != nil {
		r.logger.Error("Falha ao listar usuários.", err)
		return paging.Page[domain.User]{}, apperror.NewDBError("Falha ao listar usuários", err)
	}
	return result, nil
}

// filter compõe os predicados da listagem administrativa.
func (r *UserRepository) filter(q domain.UserQuery) paging.Scope {
	return func(db *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(q.Email); term != "" {
			expr, arg := database.ContainsFold(r.DB, "email", term)
			db = db.Where(expr, arg)
		}
		if term := strings.TrimSpace(q.Name); term != "" {
			firstExpr, arg := database.ContainsFold(r.DB, "first_name", term)
			lastExpr, _ := database.ContainsFold(r.DB, "last_name", term)
			db = db.Where("("+firstExpr+" OR "+lastExpr+")", arg, arg)
		}
		if q.Role != nil {
			db = db.Where("role = ?", *q.Role)
		}
		if q.Status != nil {
			db = db.Where("status = ?", *q.Status)
		}
		return db
	}
}
