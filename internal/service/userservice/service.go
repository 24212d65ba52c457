package userservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/paging"
	"gomovies/internal/pkg/password"
	"gomovies/internal/pkg/token"
	"gomovies/internal/service/identityservice"
)

// UserRepository define o contrato que o UserService espera da camada de persistência.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint64) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdateMetadata(ctx context.Context, id uint64, mutate func(m *domain.UserMetadata)) (domain.UserMetadata, error)
	List(ctx context.Context, q domain.UserQuery, sort paging.Sort, page paging.Request) (paging.Page[domain.User], error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(user domain.User, opts *token.Options) (token.Result, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	logger   logger.Logger
	now      func() time.Time
	newKey   func() string
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		logger:   logger,
		now:      time.Now,
		newKey:   func() string { return uuid.NewString() },
	}
}

// WithClock troca o relógio do serviço. Usado nos testes.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Register registra um novo usuário no sistema com status inactive e um código de ativação.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação de força da senha (o binding já aplica a mesma regra)
	if err := password.CheckStrength(registration.Password); err != nil {
		return domain.User{}, apperror.NewFieldValidationError(apperror.FieldError{Field: "password", Message: err.Error()})
	}

	// 2. Hashing da Senha
	hashed, err := password.Hash(registration.Password)
	if err != nil {
		s.logger.Error("Falha ao gerar hash da senha.", err)
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Criação do Objeto User
	now := s.now().UTC()
	newUser := domain.User{
		Email:        domain.NormalizeEmail(registration.Email),
		PasswordHash: hashed,
		AuthKey:      s.newKey(),
		FirstName:    registration.FirstName,
		LastName:     registration.LastName,
		Role:         domain.RoleUser,
		Status:       domain.StatusInactive,
	}
	code := s.newKey()
	newUser.MutateMeta(func(m *domain.UserMetadata) {
		m.IssueActivationCode(code, now)
	})

	// 4. Persistência (e-mail duplicado volta como ConflictError)
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	// Sem transporte de e-mail: o código fica disponível apenas no log de debug.
	s.logger.Debug("Código de ativação emitido.", map[string]interface{}{"user_id": user.ID, "code": code})
	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// Verify ativa a conta quando o código confere.
func (s *UserService) Verify(ctx context.Context, verification domain.UserVerification) (domain.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, domain.NormalizeEmail(verification.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.User{}, apperror.NewAuthFailedError("Código de ativação inválido.")
		}
		return domain.User{}, err
	}

	meta := user.Meta()
	if user.Status != domain.StatusInactive || meta.Activation.Code == "" || meta.Activation.Code != verification.Code {
		s.logger.Info("Tentativa de ativação rejeitada.", map[string]interface{}{"user_id": user.ID, "status": user.Status})
		return domain.User{}, apperror.NewAuthFailedError("Código de ativação inválido.")
	}

	user.Status = domain.StatusActive
	user.MutateMeta(func(m *domain.UserMetadata) {
		m.Activate(s.now().UTC())
	})
	updated, err := s.UserRepo.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Conta ativada.", map[string]interface{}{"user_id": updated.ID})
	return updated, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, email, plain, remoteIP string) (token.Result, error) {
	// 1. Buscar Usuário pelo Email; e-mail desconhecido e senha errada têm a mesma resposta
	user, err := s.UserRepo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return token.Result{}, apperror.NewAuthFailedError("Credenciais inválidas.")
		}
		return token.Result{}, err
	}

	// 2. Comparar Senhas
	if !s.VerifyPassword(user, plain) {
		_, err := s.UserRepo.UpdateMetadata(ctx, user.ID, func(m *domain.UserMetadata) {
			m.RecordLoginFailure(s.now().UTC())
		})
		if err != nil {
			s.logger.Warn("Falha ao registrar tentativa de login.", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		}
		return token.Result{}, apperror.NewAuthFailedError("Credenciais inválidas.")
	}

	// 3. Status da conta
	if err := identityservice.CheckStatus(user.Status); err != nil {
		s.logger.Info("Login recusado pelo status da conta.", map[string]interface{}{"user_id": user.ID, "status": user.Status})
		return token.Result{}, err
	}

	// 4. Telemetria (limpa o kill-switch de tokens)
	meta, err := s.UserRepo.UpdateMetadata(ctx, user.ID, func(m *domain.UserMetadata) {
		m.RecordLoginSuccess(remoteIP, s.now().UTC())
	})
	if err != nil {
		return token.Result{}, err
	}
	user.MutateMeta(func(m *domain.UserMetadata) { *m = meta })

	// 5. Gerar JWT
	result, err := s.TokenSvc.GenerateToken(user, nil)
	if err != nil {
		s.logger.Error("Falha ao gerar token de autenticação.", err)
		return token.Result{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID})
	return result, nil
}

// VerifyPassword compara candidate com o hash armazenado.
func (s *UserService) VerifyPassword(user domain.User, candidate string) bool {
	return password.Verify(user.PasswordHash, candidate)
}

// ChangePassword troca a senha e rotaciona a AuthKey, derrubando todos os tokens emitidos.
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, change domain.PasswordChange) error {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.VerifyPassword(user, change.CurrentPassword) {
		return apperror.NewFieldValidationError(apperror.FieldError{Field: "currentPassword", Message: "senha atual incorreta"})
	}
	if err := password.CheckStrength(change.NewPassword); err != nil {
		return apperror.NewFieldValidationError(apperror.FieldError{Field: "newPassword", Message: err.Error()})
	}

	hashed, err := password.Hash(change.NewPassword)
	if err != nil {
		return apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	user.PasswordHash = hashed
	user.AuthKey = s.newKey()
	user.MutateMeta(func(m *domain.UserMetadata) {
		m.RecordPasswordChange(s.now().UTC())
	})
	if _, err := s.UserRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Senha alterada; chave de autenticação rotacionada.", map[string]interface{}{"user_id": user.ID})
	return nil
}

// InvalidateTokens aciona o kill-switch: rotaciona a AuthKey e marca tokenInvalidate até o próximo login.
func (s *UserService) InvalidateTokens(ctx context.Context, userID uint64) error {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.AuthKey = s.newKey()
	user.MutateMeta(func(m *domain.UserMetadata) {
		m.InvalidateTokens(s.now().UTC())
	})
	if _, err := s.UserRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Tokens do usuário invalidados.", map[string]interface{}{"user_id": user.ID})
	return nil
}

// GetUser busca um usuário pelo ID.
func (s *UserService) GetUser(ctx context.Context, id uint64) (domain.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// ListUsers é a listagem administrativa de usuários.
func (s *UserService) ListUsers(ctx context.Context, q domain.UserQuery) (paging.Page[domain.User], error) {
	page, pageErr := q.Query.Normalize()
	sort, sortErr := paging.ParseSort(q.SortBy, domain.UserSortFields, domain.DefaultUserSort)
	if err := apperror.MergeValidation(pageErr, sortErr); err != nil {
		return paging.Page[domain.User]{}, err
	}
	return s.UserRepo.List(ctx, q, sort, page)
}

// AdminUpdate altera role e/ou status de um usuário. Um admin não pode rebaixar nem bloquear a si mesmo.
func (s *UserService) AdminUpdate(ctx context.Context, actor domain.Identity, userID uint64, update domain.UserAdminUpdate) (domain.User, error) {
	if update.Role == nil && update.Status == nil {
		return domain.User{}, apperror.NewValidationError("Informe role e/ou status.")
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if actor.UserID() == user.ID {
		if (update.Role != nil && *update.Role != domain.RoleAdmin) || (update.Status != nil && *update.Status != domain.StatusActive) {
			return domain.User{}, apperror.NewForbiddenError("Um administrador não pode rebaixar ou bloquear a própria conta.")
		}
	}

	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Status != nil {
		user.Status = *update.Status
	}

	updated, err := s.UserRepo.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário alterado por admin.", map[string]interface{}{
		"user_id":  updated.ID,
		"role":     updated.Role,
		"status":   updated.Status,
		"actor_id": actor.UserID(),
	})
	return updated, nil
}

// IssueToken emite um token de impersonação para outro usuário. Só contas ativas recebem token.
func (s *UserService) IssueToken(ctx context.Context, actor domain.Identity, userID uint64, req domain.ImpersonationRequest) (token.Result, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return token.Result{}, err
	}
	if err := identityservice.CheckStatus(user.Status); err != nil {
		return token.Result{}, err
	}

	var opts *token.Options
	if req.ExpiresInHours > 0 {
		opts = &token.Options{ExpiresIn: time.Duration(req.ExpiresInHours) * time.Hour}
	}

	result, err := s.TokenSvc.GenerateToken(user, opts)
	if err != nil {
		return token.Result{}, apperror.NewInternalError(fmt.Sprintf("Falha ao gerar token para o usuário %d.", user.ID), err)
	}

	s.logger.Warn("Token de impersonação emitido.", map[string]interface{}{"user_id": user.ID, "actor_id": actor.UserID(), "expires": result.Expires})
	return result, nil
}
