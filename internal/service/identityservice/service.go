package identityservice

import (
	"context"
	"time"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
)

// UserRepository é o que a resolução de identidade precisa da persistência.
type UserRepository interface {
	FindByAuthKey(ctx context.Context, authKey string) (domain.User, error)
	UpdateMetadata(ctx context.Context, id uint64, mutate func(m *domain.UserMetadata)) (domain.UserMetadata, error)
}

// Service transforma claims já validadas no usuário atual da requisição.
type Service struct {
	repo   UserRepository
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo UserRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithClock troca o relógio do serviço. Usado nos testes.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Resolve recarrega o usuário dono do token e verifica, nesta ordem: existência da chave,
// status da conta, kill-switch de tokens e role. Sem subject, a identidade é anônima.
func (s *Service) Resolve(ctx context.Context, claims domain.VerifiedClaims) (domain.Identity, error) {
	// 1. Sem subject: requisição anônima
	if claims.Subject == "" {
		return domain.Anonymous(), nil
	}

	// 2. Chave desconhecida (rotacionada ou forjada) nunca vira anônimo
	user, err := s.repo.FindByAuthKey(ctx, claims.Subject)
	if err != nil {
		if apperror.IsNotFound(err) {
			s.logger.Info("Token com chave de autenticação desconhecida.", nil)
			return domain.Anonymous(), apperror.NewAuthFailedError("Falha na autenticação.")
		}
		return domain.Anonymous(), err
	}

	// 3. Status da conta
	if err := CheckStatus(user.Status); err != nil {
		s.logger.Info("Acesso negado pelo status da conta.", map[string]interface{}{"user_id": user.ID, "status": user.Status})
		return domain.Anonymous(), err
	}

	// 4. Kill-switch de tokens
	if user.Meta().Security.TokenInvalidate {
		s.logger.Info("Token rejeitado: tokens do usuário foram invalidados.", map[string]interface{}{"user_id": user.ID})
		return domain.Anonymous(), apperror.NewTokenInvalidatedError("Os tokens desta conta foram invalidados. Faça login novamente.")
	}

	// 5. Role do token x role atual
	if claims.Role != user.Role {
		s.logger.Info("Token rejeitado: role divergente.", map[string]interface{}{"user_id": user.ID, "token_role": claims.Role, "role": user.Role})
		return domain.Anonymous(), apperror.NewIneligibleRoleError("A role do token não corresponde à role atual da conta.")
	}

	// 6. Telemetria de login, sobre a metadata relida com lock
	invalidated := false
	meta, err := s.repo.UpdateMetadata(ctx, user.ID, func(m *domain.UserMetadata) {
		// O kill-switch pode ter sido ligado depois da leitura do passo 4.
		if m.Security.TokenInvalidate {
			invalidated = true
			return
		}
		m.RecordLoginSuccess(claims.RemoteIP, s.now().UTC())
	})
	if err != nil {
		s.logger.Error("Falha ao registrar telemetria de login.", err)
		return domain.Anonymous(), err
	}
	if invalidated {
		s.logger.Info("Token rejeitado: tokens do usuário foram invalidados.", map[string]interface{}{"user_id": user.ID})
		return domain.Anonymous(), apperror.NewTokenInvalidatedError("Os tokens desta conta foram invalidados. Faça login novamente.")
	}
	user.MutateMeta(func(m *domain.UserMetadata) { *m = meta })

	return domain.NewIdentity(user), nil
}

// CheckStatus traduz um status diferente de active no erro correspondente.
func CheckStatus(status domain.UserStatus) error {
	switch status {
	case domain.StatusActive:
		return nil
	case domain.StatusInactive:
		return apperror.NewVerificationPendingError("A conta ainda não foi verificada.")
	default:
		return apperror.NewAccessRevokedError("O acesso desta conta foi revogado.")
	}
}
