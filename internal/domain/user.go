package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/paging"
)

// User representa a entidade do usuário no sistema.
type User struct {
	ID           uint64                           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string                           `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string                           `gorm:"type:text;not null" json:"-"` // Oculta o hash da senha no JSON de resposta
	AuthKey      string                           `gorm:"type:text;not null;uniqueIndex" json:"-"`
	FirstName    string                           `gorm:"type:text;not null;default:''" json:"firstName"`
	LastName     string                           `gorm:"type:text;not null;default:''" json:"lastName"`
	Role         UserRole                         `gorm:"type:text;not null" json:"role"`
	Status       UserStatus                       `gorm:"type:text;not null;index" json:"status"`
	Metadata     datatypes.JSONType[UserMetadata] `gorm:"not null" json:"-"`
	CreatedAt    time.Time                        `json:"createdAt"`
	UpdatedAt    time.Time                        `json:"updatedAt"`
}

// Meta devolve uma cópia do metadata do usuário.
func (u User) Meta() UserMetadata {
	return u.Metadata.Data()
}

// MutateMeta aplica fn sobre o metadata e o regrava na coluna serializada.
func (u *User) MutateMeta(fn func(m *UserMetadata)) {
	m := u.Metadata.Data()
	fn(&m)
	u.Metadata = datatypes.NewJSONType(m)
}

// NormalizeEmail aplica a forma canônica usada em toda leitura e escrita de e-mail.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserStatus segue a ordem de confiança crescente: deleted < disabled < blocked < inactive < active.
type UserStatus string

const (
	StatusDeleted  UserStatus = "deleted"
	StatusDisabled UserStatus = "disabled"
	StatusBlocked  UserStatus = "blocked"
	StatusInactive UserStatus = "inactive"
	StatusActive   UserStatus = "active"
)

var statusRank = map[UserStatus]int{
	StatusDeleted:  0,
	StatusDisabled: 1,
	StatusBlocked:  2,
	StatusInactive: 3,
	StatusActive:   4,
}

func (s UserStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank devolve a posição do status na escala de confiança (-1 se desconhecido).
func (s UserStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// --- Metadata ---

// UserMetadata é o bloco de estado auxiliar do usuário, persistido como uma única coluna JSON.
type UserMetadata struct {
	Activation ActivationMeta `json:"activation"`
	Password   PasswordMeta   `json:"password"`
	Login      LoginMeta      `json:"login"`
	Security   SecurityMeta   `json:"security"`
}

type ActivationMeta struct {
	Code        string     `json:"code,omitempty"`
	IssuedAt    *time.Time `json:"issuedAt,omitempty"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
}

type PasswordMeta struct {
	ChangedAt      *time.Time `json:"changedAt,omitempty"`
	ResetCode      string     `json:"resetCode,omitempty"`
	ResetExpiresAt *time.Time `json:"resetExpiresAt,omitempty"`
}

type LoginMeta struct {
	SuccessCount int64      `json:"successCount"`
	FailedCount  int64      `json:"failedCount"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	LastLoginIP  string     `json:"lastLoginIp,omitempty"`
	LastFailedAt *time.Time `json:"lastFailedAt,omitempty"`
}

type SecurityMeta struct {
	TokenInvalidate bool       `json:"tokenInvalidate"`
	InvalidatedAt   *time.Time `json:"invalidatedAt,omitempty"`
}

func (m *UserMetadata) IssueActivationCode(code string, at time.Time) {
	m.Activation.Code = code
	m.Activation.IssuedAt = &at
	m.Activation.ActivatedAt = nil
}

// Activate consome o código de ativação.
func (m *UserMetadata) Activate(at time.Time) {
	m.Activation.Code = ""
	m.Activation.ActivatedAt = &at
}

// RecordLoginSuccess também limpa o kill-switch de tokens.
func (m *UserMetadata) RecordLoginSuccess(ip string, at time.Time) {
	m.Login.SuccessCount++
	m.Login.LastLoginAt = &at
	m.Login.LastLoginIP = ip
	m.Security.TokenInvalidate = false
}

func (m *UserMetadata) RecordLoginFailure(at time.Time) {
	m.Login.FailedCount++
	m.Login.LastFailedAt = &at
}

func (m *UserMetadata) InvalidateTokens(at time.Time) {
	m.Security.TokenInvalidate = true
	m.Security.InvalidatedAt = &at
}

func (m *UserMetadata) RecordPasswordChange(at time.Time) {
	m.Password.ChangedAt = &at
	m.Password.ResetCode = ""
	m.Password.ResetExpiresAt = nil
}

// --- Payloads ---

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email     string `json:"email" binding:"required,trimmed_email,max=254"`
	Password  string `json:"password" binding:"required,password"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

// UserVerification ativa uma conta com o código emitido no cadastro.
type UserVerification struct {
	Email string `json:"email" binding:"required,trimmed_email"`
	Code  string `json:"code" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,trimmed_email"`
	Password string `json:"password" binding:"required"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password,nefield=CurrentPassword"`
}

// UserAdminUpdate são as alterações que um admin pode aplicar a um usuário.
type UserAdminUpdate struct {
	Role   *UserRole   `json:"role" binding:"omitempty,oneof=user admin"`
	Status *UserStatus `json:"status" binding:"omitempty,oneof=deleted disabled blocked inactive active"`
}

// ImpersonationRequest pede um token para outro usuário com validade opcional.
type ImpersonationRequest struct {
	ExpiresInHours int `json:"expiresInHours" binding:"omitempty,min=1,max=720"`
}

// --- Listagem ---

// UserQuery são os filtros da listagem administrativa de usuários.
type UserQuery struct {
	paging.Query
	SortBy string      `form:"sortBy"`
	Email  string      `form:"email"`
	Name   string      `form:"name"`
	Role   *UserRole   `form:"role" binding:"omitempty,oneof=user admin"`
	Status *UserStatus `form:"status" binding:"omitempty,oneof=deleted disabled blocked inactive active"`
}

var UserSortFields = paging.Fields{
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"createdAt": "created_at",
}

var DefaultUserSort = paging.Sort{Field: "createdAt", Column: "created_at", Desc: true}

// Validate confere paginação e ordenação sem consultar o banco.
func (q UserQuery) Validate() error {
	_, pageErr := q.Query.Normalize()
	_, sortErr := paging.ParseSort(q.SortBy, UserSortFields, DefaultUserSort)
	return apperror.MergeValidation(pageErr, sortErr)
}
