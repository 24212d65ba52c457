package paging

import (
	"fmt"
	"sort"
	"strings"

	apperror "gomovies/internal/errors"
)

const (
	DefaultPage     = 1
	MaxPage         = 50000
	DefaultPageSize = 10
)

// AllowedPageSizes é a lista fechada de tamanhos de página aceitos.
var AllowedPageSizes = []int{1, 5, 10, 20, 50, 100}

// Request é a janela de página já validada (1-based).
type Request struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Query são os parâmetros de paginação como chegam na query string.
// nil significa "não informado" e recebe o padrão; zero explícito é inválido.
type Query struct {
	Page     *int `form:"page" json:"page,omitempty"`
	PageSize *int `form:"pageSize" json:"pageSize,omitempty"`
}

// Normalize aplica os padrões e valida os limites. Tamanhos fora da lista são rejeitados, nunca ajustados.
func (q Query) Normalize() (Request, error) {
	r := Request{Page: DefaultPage, PageSize: DefaultPageSize}
	if q.Page != nil {
		r.Page = *q.Page
	}
	if q.PageSize != nil {
		r.PageSize = *q.PageSize
	}

	var fields []apperror.FieldError
	if r.Page < 1 || r.Page > MaxPage {
		fields = append(fields, apperror.FieldError{
			Field:   "page",
			Message: fmt.Sprintf("deve estar entre 1 e %d", MaxPage),
		})
	}
	if !allowedPageSize(r.PageSize) {
		fields = append(fields, apperror.FieldError{
			Field:   "pageSize",
			Message: fmt.Sprintf("deve ser um de %v", AllowedPageSizes),
		})
	}
	if len(fields) > 0 {
		return r, apperror.NewFieldValidationError(fields...)
	}
	return r, nil
}

// Offset devolve o deslocamento SQL da página.
func (r Request) Offset() int {
	return (r.Page - 1) * r.PageSize
}

func allowedPageSize(size int) bool {
	for _, s := range AllowedPageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Fields mapeia o nome público de um campo ordenável para a coluna no banco.
type Fields map[string]string

// Names devolve os nomes públicos em ordem alfabética (para mensagens de erro).
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Sort é uma ordenação já validada contra os campos legais de uma entidade.
type Sort struct {
	Field  string
	Column string
	Desc   bool
}

// String devolve o especificador no formato aceito por ParseSort.
func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// ParseSort interpreta "campo", "+campo" ou "-campo". Vazio devolve def.
// Campo fora de fields é erro de validação em sortBy.
func ParseSort(raw string, fields Fields, def Sort) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	desc := false
	switch raw[0] {
	case '-':
		desc = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}

	column, ok := fields[raw]
	if raw == "" || !ok {
		return Sort{}, apperror.NewFieldValidationError(apperror.FieldError{
			Field:   "sortBy",
			Message: fmt.Sprintf("campo de ordenação desconhecido; use um de %v", fields.Names()),
		})
	}
	return Sort{Field: raw, Column: column, Desc: desc}, nil
}

// Page é o envelope devolvido pelas listagens.
type Page[T any] struct {
	Items           []T   `json:"items"`
	CurrentPage     int   `json:"currentPage"`
	PageSize        int   `json:"pageSize"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// NewPage monta os metadados de página a partir do total de linhas filtradas.
func NewPage[T any](items []T, req Request, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return Page[T]{
		Items:           items,
		CurrentPage:     req.Page,
		PageSize:        req.PageSize,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasPreviousPage: req.Page > 1,
		HasNextPage:     req.Page < totalPages,
	}
}
