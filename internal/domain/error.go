package domain

import apperror "gomovies/internal/errors"

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int                   `json:"code"`
	Category string                `json:"category"`
	Message  string                `json:"message"`
	Errors   []apperror.FieldError `json:"errors,omitempty"`
}
