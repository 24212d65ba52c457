package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomovies/internal/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("Senha#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Senha#123", hash)

	assert.True(t, password.Verify(hash, "Senha#123"))
	assert.False(t, password.Verify(hash, "senha#123"))
	assert.False(t, password.Verify("", "Senha#123"))
}

func TestCheckStrength(t *testing.T) {
	tests := []struct {
		plain string
		ok    bool
	}{
		{"Senha#123", true},
		{"Ab1!abcd", true},
		{"Ab1!abc", false},
		{"senha#123", false},
		{"SENHA#123", false},
		{"Senha#abc", false},
		{"Senha1234", false},
		{"Aa1!" + strings.Repeat("x", 61), false},
	}

	for _, tt := range tests {
		t.Run(tt.plain, func(t *testing.T) {
			err := password.CheckStrength(tt.plain)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, password.ErrWeakPassword)
			}
		})
	}
}
