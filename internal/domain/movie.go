package domain

import (
	"time"

	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/paging"
)

// Movie representa o item principal do catálogo.
// Genres e Ratings pertencem ao filme e são removidos junto com ele.
type Movie struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64      `gorm:"not null;index" json:"userId"`
	Title     string      `gorm:"type:text;not null;uniqueIndex:idx_movies_title_year" json:"title"`
	Year      int         `gorm:"column:year_of_release;not null;uniqueIndex:idx_movies_title_year" json:"year"`
	Slug      string      `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Status    MovieStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	Genres  []Genre  `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"genres"`
	Ratings []Rating `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"ratings,omitempty"`
}

// Genre é uma tag pertencente a exatamente um filme; (movieId, name) é único.
type Genre struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	MovieID uint64 `gorm:"not null;uniqueIndex:idx_genres_movie_name" json:"-"`
	Name    string `gorm:"type:text;not null;uniqueIndex:idx_genres_movie_name" json:"name"`
}

// MovieStatus define o nível de visibilidade de um filme.
type MovieStatus string

const (
	MovieDraft     MovieStatus = "draft"
	MoviePending   MovieStatus = "pending"
	MoviePublished MovieStatus = "published"
)

func (s MovieStatus) Valid() bool {
	return s == MovieDraft || s == MoviePending || s == MoviePublished
}

// VisibleTo aplica o filtro de permissão por status: quem não é dono nem admin só vê filmes publicados.
func (m Movie) VisibleTo(viewer Identity) bool {
	return m.Status == MoviePublished || viewer.CheckSameID(m.UserID, true)
}

// GenreNames devolve os nomes dos gêneros, na ordem persistida.
func (m Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// --- Payloads ---

type MovieCreate struct {
	Title  string       `json:"title" binding:"required,max=200"`
	Year   int          `json:"year" binding:"required,min=1888,max=2100"`
	Status *MovieStatus `json:"status" binding:"omitempty,oneof=draft pending published"`
	Genres []string     `json:"genres" binding:"omitempty,max=20,dive,required,max=50"`
}

// MovieUpdate: campos nil são mantidos. Genres não-nil (inclusive vazio) substitui a lista inteira.
type MovieUpdate struct {
	Title  *string      `json:"title" binding:"omitempty,min=1,max=200"`
	Year   *int         `json:"year" binding:"omitempty,min=1888,max=2100"`
	Status *MovieStatus `json:"status" binding:"omitempty,oneof=draft pending published"`
	Genres []string     `json:"genres" binding:"omitempty,max=20,dive,required,max=50"`
}

// --- Listagem ---

type MovieQuery struct {
	paging.Query
	SortBy string       `form:"sortBy"`
	Title  string       `form:"title"`
	Year   *int         `form:"year"`
	Status *MovieStatus `form:"status" binding:"omitempty,oneof=draft pending published"`
	UserID *uint64      `form:"userId"`
	Genre  string       `form:"genre"`
}

var MovieSortFields = paging.Fields{
	"title":     "title",
	"year":      "year_of_release",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// DefaultMovieSort: mais recentes primeiro.
var DefaultMovieSort = paging.Sort{Field: "createdAt", Column: "created_at", Desc: true}

// Validate confere paginação e ordenação sem consultar o banco.
func (q MovieQuery) Validate() error {
	_, pageErr := q.Query.Normalize()
	_, sortErr := paging.ParseSort(q.SortBy, MovieSortFields, DefaultMovieSort)
	return apperror.MergeValidation(pageErr, sortErr)
}
