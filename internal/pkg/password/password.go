package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Hash gera o hash bcrypt de uma senha em texto puro.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("falha ao gerar hash da senha: %w", err)
	}
	return string(hashed), nil
}

// Verify compara a senha candidata com o hash armazenado.
func Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var ErrWeakPassword = errors.New("a senha deve ter entre 8 e 64 caracteres, com maiúscula, minúscula, dígito e símbolo")

// CheckStrength aplica a política mínima de senha.
// O limite de 64 fica abaixo dos 72 bytes aceitos pelo bcrypt.
func CheckStrength(plain string) error {
	if len(plain) < 8 || len(plain) > 64 {
		return ErrWeakPassword
	}
	var upper, lower, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}
