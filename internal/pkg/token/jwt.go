package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gomovies/internal/domain"
)

// IntentLogin marca tokens emitidos pelo login (distintos de outros tipos de token).
const IntentLogin = "login"

// Claims define as informações específicas armazenadas no JWT.
// Subject e ID (jti) carregam a AuthKey do usuário, nunca o ID numérico.
type Claims struct {
	Role   string `json:"role"`
	Intent string `json:"intent"`
	jwt.RegisteredClaims
}

// Options permite sobrescrever a validade padrão (impersonação administrativa, testes).
type Options struct {
	ExpiresIn time.Duration
}

// Result é o token emitido e sua janela de validade.
type Result struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
	Expires  time.Time `json:"expires"`
}

// Config agrupa os parâmetros externos do serviço de tokens.
type Config struct {
	SecretKey string
	Issuer    string
	Audience  string
	Expiry    time.Duration
}

// Service emite e valida JWTs HS256.
type Service struct {
	secretKey []byte
	issuer    string
	audience  string
	expiry    time.Duration
	now       func() time.Time
}

// NewService cria uma nova instância do serviço Token.
func NewService(cfg Config) *Service {
	return &Service{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		expiry:    cfg.Expiry,
		now:       time.Now,
	}
}

// WithClock troca o relógio do serviço. Usado nos testes.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateToken cria um novo JWT assinado para o usuário.
func (s *Service) GenerateToken(user domain.User, opts *Options) (Result, error) {
	if user.AuthKey == "" {
		return Result{}, errors.New("usuário sem chave de autenticação")
	}

	expiry := s.expiry
	if opts != nil && opts.ExpiresIn > 0 {
		expiry = opts.ExpiresIn
	}

	// JWT trabalha com precisão de segundos
	issuedAt := s.now().UTC().Truncate(time.Second)
	expires := issuedAt.Add(expiry)

	claims := Claims{
		Role:   string(user.Role),
		Intent: IntentLogin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.AuthKey,
			ID:        user.AuthKey,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return Result{}, fmt.Errorf("falha ao assinar o token: %w", err)
	}

	return Result{Token: tokenString, IssuedAt: issuedAt, Expires: expires}, nil
}

// ValidateToken valida assinatura, algoritmo, emissor, audiência, validade e intenção.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token não é válido")
	}
	if claims.Intent != IntentLogin {
		return nil, fmt.Errorf("intenção de token inesperada: %q", claims.Intent)
	}

	return claims, nil
}

// SubjectOf devolve a AuthKey carregada pelo token (sub, ou jti como fallback).
func (c *Claims) SubjectOf() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.ID
}
