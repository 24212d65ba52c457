package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomovies/internal/domain"
	"gomovies/internal/pkg/token"
)

var baseConfig = token.Config{
	SecretKey: "segredo-super-secreto",
	Issuer:    "gomovies",
	Audience:  "gomovies-api",
	Expiry:    time.Hour,
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testUser() domain.User {
	return domain.User{ID: 7, AuthKey: "chave-abc", Role: domain.RoleAdmin}
}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := token.NewService(baseConfig).WithClock(fixedClock(now))

	result, err := svc.GenerateToken(testUser(), nil)
	require.NoError(t, err)
	assert.Equal(t, now, result.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), result.Expires)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "chave-abc", claims.SubjectOf())
	assert.Equal(t, "chave-abc", claims.ID)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
	assert.Equal(t, token.IntentLogin, claims.Intent)
}

func TestGenerateTokenOverridesExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := token.NewService(baseConfig).WithClock(fixedClock(now))

	result, err := svc.GenerateToken(testUser(), &token.Options{ExpiresIn: 48 * time.Hour})

	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, result.Expires.Sub(result.IssuedAt))
}

func TestGenerateTokenRequiresAuthKey(t *testing.T) {
	svc := token.NewService(baseConfig)

	_, err := svc.GenerateToken(domain.User{ID: 1, Role: domain.RoleUser}, nil)

	assert.Error(t, err)
}

func TestValidateTokenRejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issued, err := token.NewService(baseConfig).WithClock(fixedClock(now)).GenerateToken(testUser(), nil)
	require.NoError(t, err)

	otherSecret := baseConfig
	otherSecret.SecretKey = "outro-segredo"
	otherAudience := baseConfig
	otherAudience.Audience = "outra-api"
	otherIssuer := baseConfig
	otherIssuer.Issuer = "outro-emissor"

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, token.Claims{
		Role:   "admin",
		Intent: token.IntentLogin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "chave-abc",
			Issuer:    baseConfig.Issuer,
			Audience:  jwt.ClaimStrings{baseConfig.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIntent, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		Role:   "admin",
		Intent: "reset",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "chave-abc",
			Issuer:    baseConfig.Issuer,
			Audience:  jwt.ClaimStrings{baseConfig.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(baseConfig.SecretKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		svc   *token.Service
		token string
	}{
		{"expirado", token.NewService(baseConfig).WithClock(fixedClock(now.Add(2 * time.Hour))), issued.Token},
		{"segredo diferente", token.NewService(otherSecret).WithClock(fixedClock(now)), issued.Token},
		{"audiência diferente", token.NewService(otherAudience).WithClock(fixedClock(now)), issued.Token},
		{"emissor diferente", token.NewService(otherIssuer).WithClock(fixedClock(now)), issued.Token},
		{"alg none", token.NewService(baseConfig).WithClock(fixedClock(now)), unsigned},
		{"intenção diferente", token.NewService(baseConfig).WithClock(fixedClock(now)), wrongIntent},
		{"lixo", token.NewService(baseConfig).WithClock(fixedClock(now)), "nao.e.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.svc.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
