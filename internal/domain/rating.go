package domain

import (
	"time"

	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/paging"
)

// Rating é a nota de um usuário para um filme. Existe no máximo uma por (UserID, MovieID).
type Rating struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_ratings_user_movie" json:"userId"`
	MovieID   uint64    `gorm:"not null;uniqueIndex:idx_ratings_user_movie;index" json:"movieId"`
	Score     int       `gorm:"not null;check:chk_ratings_score,score >= 0 AND score <= 5" json:"score"`
	Feedback  *string   `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	MinScore = 0
	MaxScore = 5
)

// RatingRequest é o corpo de PUT /v1/movies/:id/rating.
type RatingRequest struct {
	Score    *int    `json:"score" binding:"required,min=0,max=5"`
	Feedback *string `json:"feedback" binding:"omitempty,max=1000"`
}

// RatingEligibility decide quais filmes aceitam avaliação.
type RatingEligibility string

const (
	// EligibleUnpublished mantém o comportamento herdado: o filme "existe" para avaliação apenas
	// quando status != published.
	EligibleUnpublished RatingEligibility = "unpublished"
	// EligiblePublished aceita avaliações apenas de filmes publicados.
	EligiblePublished RatingEligibility = "published"
)

func (e RatingEligibility) Valid() bool {
	return e == EligibleUnpublished || e == EligiblePublished
}

// Allows informa se um filme com o status dado aceita avaliação.
func (e RatingEligibility) Allows(status MovieStatus) bool {
	if e == EligiblePublished {
		return status == MoviePublished
	}
	return status != MoviePublished
}

// --- Listagem ---

type RatingQuery struct {
	paging.Query
	SortBy   string  `form:"sortBy"`
	MovieID  *uint64 `form:"movieId"`
	UserID   *uint64 `form:"userId"`
	Score    *int    `form:"score" binding:"omitempty,min=0,max=5"`
	Feedback string  `form:"feedback"`
}

var RatingSortFields = paging.Fields{
	"score":     "score",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// DefaultRatingSort: atualizadas mais recentemente primeiro.
var DefaultRatingSort = paging.Sort{Field: "updatedAt", Column: "updated_at", Desc: true}

// Validate confere paginação e ordenação sem consultar o banco.
func (q RatingQuery) Validate() error {
	_, pageErr := q.Query.Normalize()
	_, sortErr := paging.ParseSort(q.SortBy, RatingSortFields, DefaultRatingSort)
	return apperror.MergeValidation(pageErr, sortErr)
}
