package gormquery

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
)

// Finder executes list requests for model T. Conditions already present on
// the db it was created with, e.g. a parent id, apply to every request.
type Finder[T any] struct {
	db         *gorm.DB
	findScopes []func(db *gorm.DB) *gorm.DB
}

var _ adminquery.Finder[struct{}] = (*Finder[struct{}])(nil)

type FinderOption[T any] func(f *Finder[T])

// WithFindScopes adds scopes that only apply when fetching nodes, such as
// preloads, and never to counting.
func WithFindScopes[T any](scopes ...func(db *gorm.DB) *gorm.DB) FinderOption[T] {
	return func(f *Finder[T]) {
		f.findScopes = append(f.findScopes, scopes...)
	}
}

func NewFinder[T any](db *gorm.DB, opts ...FinderOption[T]) *Finder[T] {
	f := &Finder[T]{db: db.Session(&gorm.Session{})}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finder[T]) Find(ctx context.Context, req *adminquery.ListRequest) ([]T, error) {
	nodes := []T{}
	if req.Take != nil && *req.Take == 0 {
		return nodes, nil
	}

	db := f.db
	if db.Statement.Context != ctx {
		db = db.WithContext(ctx)
	}
	db = applyModel[T](db).Scopes(Scope(req.Condition), OrderScope(req.OrderBy))
	if len(f.findScopes) > 0 {
		db = db.Scopes(f.findScopes...)
	}

	if req.Skip != nil && *req.Skip > 0 {
		db = db.Offset(*req.Skip)
	}
	if req.Take != nil {
		db = db.Limit(*req.Take)
	}

	if err := db.Find(&nodes).Error; err != nil {
		return nil, errors.Wrap(err, "find")
	}
	return nodes, nil
}

func (f *Finder[T]) Count(ctx context.Context, cond adminquery.ConditionTree) (int, error) {
	db := f.db
	if db.Statement.Context != ctx {
		db = db.WithContext(ctx)
	}

	var total int64
	if err := applyModel[T](db).Scopes(Scope(cond)).Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return int(total), nil
}
