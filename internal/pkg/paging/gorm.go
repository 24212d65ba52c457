package paging

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope é um predicado componível sobre uma consulta GORM.
type Scope = func(*gorm.DB) *gorm.DB

// All compõe vários escopos em um só, na ordem dada.
func All(scopes ...Scope) Scope {
	return func(db *gorm.DB) *gorm.DB {
		for _, s := range scopes {
			if s != nil {
				db = s(db)
			}
		}
		return db
	}
}

// OrderBy aplica a ordenação e desempata pelo id na mesma direção, para páginas estáveis.
func OrderBy(s Sort) Scope {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: s.Column}, Desc: s.Desc})
		if s.Column != "id" {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Desc: s.Desc})
		}
		return db
	}
}

// Window aplica LIMIT/OFFSET da página.
func Window(req Request) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// Fetch executa count-then-fetch com o mesmo filtro e devolve a página montada.
// req deve estar normalizado.
func Fetch[T any](ctx context.Context, db *gorm.DB, filter Scope, s Sort, req Request, preload ...string) (Page[T], error) {
	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, req.PageSize)
	if total > int64(req.Offset()) {
		q := db.WithContext(ctx).Model(new(T)).Scopes(filter, OrderBy(s), Window(req))
		for _, p := range preload {
			q = q.Preload(p)
		}
		if err := q.Find(&items).Error; err != nil {
			return Page[T]{}, err
		}
	}

	return NewPage(items, req, total), nil
}
