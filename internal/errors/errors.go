package errors

import (
	"errors"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do GoMovies.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Código de máquina do erro (e.g., "AUTH_FAILED", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// FieldError descreve a violação de um único campo de entrada.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// --- Erros de Autenticação e Autorização ---

// AuthFailedError indica que a verificação de credenciais ou de claims falhou.
type AuthFailedError struct {
	Msg string
}

func (e *AuthFailedError) Error() string    { return e.Msg }
func (e *AuthFailedError) Category() string { return "AUTH_FAILED" }
func (e *AuthFailedError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *AuthFailedError) Unwrap() error    { return nil }

func NewAuthFailedError(msg string) AppError {
	return &AuthFailedError{Msg: msg}
}

// VerificationPendingError indica uma conta ainda não ativada.
type VerificationPendingError struct {
	Msg string
}

func (e *VerificationPendingError) Error() string    { return e.Msg }
func (e *VerificationPendingError) Category() string { return "VERIFICATION_PENDING" }
func (e *VerificationPendingError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *VerificationPendingError) Unwrap() error    { return nil }

func NewVerificationPendingError(msg string) AppError {
	return &VerificationPendingError{Msg: msg}
}

// AccessRevokedError cobre contas bloqueadas/desativadas/removidas e o kill-switch de tokens.
// Code distingue as duas situações para o cliente.
type AccessRevokedError struct {
	Msg  string
	Code string
}

func (e *AccessRevokedError) Error() string    { return e.Msg }
func (e *AccessRevokedError) Category() string { return e.Code }
func (e *AccessRevokedError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *AccessRevokedError) Unwrap() error    { return nil }

func NewAccessRevokedError(msg string) AppError {
	return &AccessRevokedError{Msg: msg, Code: "ACCESS_REVOKED"}
}

// NewTokenInvalidatedError é o AccessRevoked emitido quando metadata.security.tokenInvalidate está ativo.
func NewTokenInvalidatedError(msg string) AppError {
	return &AccessRevokedError{Msg: msg, Code: "TOKEN_INVALIDATED"}
}

// IneligibleRoleError indica que a role do token não corresponde mais à role atual do usuário.
type IneligibleRoleError struct {
	Msg string
}

func (e *IneligibleRoleError) Error() string    { return e.Msg }
func (e *IneligibleRoleError) Category() string { return "INELIGIBLE_ROLE" }
func (e *IneligibleRoleError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *IneligibleRoleError) Unwrap() error    { return nil }

func NewIneligibleRoleError(msg string) AppError {
	return &IneligibleRoleError{Msg: msg}
}

// UnauthorizedError representa ausência de credenciais (token ou API key).
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return e.Msg }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa credenciais válidas sem permissão suficiente.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return e.Msg }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// --- Erros de Domínio ---

// ValidationError representa falhas de validação de dados de entrada.
// Fields carrega as violações por campo, quando conhecidas.
type ValidationError struct {
	Msg    string
	Fields []FieldError
}

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação sem detalhes por campo.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NewFieldValidationError cria um erro de validação com a lista de campos inválidos.
func NewFieldValidationError(fields ...FieldError) AppError {
	return &ValidationError{Msg: "Um ou mais campos são inválidos.", Fields: fields}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito de unicidade (e-mail, slug, (título, ano), avaliação duplicada).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return e.Msg }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// ProcessFailedError indica que a persistência não afetou nenhuma linha quando uma era esperada.
type ProcessFailedError struct {
	Msg string
}

func (e *ProcessFailedError) Error() string    { return e.Msg }
func (e *ProcessFailedError) Category() string { return "PROCESS_FAILED" }
func (e *ProcessFailedError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ProcessFailedError) Unwrap() error    { return nil }

func NewProcessFailedError(msg string) AppError {
	return &ProcessFailedError{Msg: msg}
}

// TooManyRequestsError é emitido pelo rate limiter.
type TooManyRequestsError struct {
	Msg string
}

func (e *TooManyRequestsError) Error() string    { return e.Msg }
func (e *TooManyRequestsError) Category() string { return "RATE_LIMITED" }
func (e *TooManyRequestsError) HTTPStatus() int  { return http.StatusTooManyRequests } // 429
func (e *TooManyRequestsError) Unwrap() error    { return nil }

func NewTooManyRequestsError(msg string) AppError {
	return &TooManyRequestsError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
// A mensagem devolvida ao cliente é sempre genérica; Err guarda a causa para os logs.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(msg+" (DB)", err)
}

// --- Helpers para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, a categoria e a mensagem pública.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if errors.As(err, &appErr) {
		var internal *InternalError
		if errors.As(err, &internal) {
			// Nunca expõe a causa (driver SQL, redis) ao cliente.
			return internal.HTTPStatus(), internal.Category(), "Ocorreu um erro interno."
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// FieldsOf devolve a lista de campos inválidos quando err é (ou encapsula) um ValidationError.
func FieldsOf(err error) []FieldError {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Fields
	}
	return nil
}

// MergeValidation junta vários erros de validação em um só. Erros de outro tipo são devolvidos como estão.
func MergeValidation(errs ...error) error {
	var fields []FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var v *ValidationError
		if !errors.As(err, &v) {
			return err
		}
		if len(v.Fields) == 0 {
			fields = append(fields, FieldError{Message: v.Msg})
			continue
		}
		fields = append(fields, v.Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	return NewFieldValidationError(fields...)
}

// Is* helpers: atalhos usados pelos serviços para decidir o fluxo.

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
