package adminquery

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/adminquery/internal/hook"
)

// ListRequest is what a Finder executes: the compiled condition, flattened
// orders and the offset window.
type ListRequest struct {
	Condition ConditionTree
	OrderBy   []Order
	Pagination
	Page int
}

// ListRequest flattens q for execution.
func (q *Query) ListRequest() *ListRequest {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return &ListRequest{
		Condition:  q.Condition,
		OrderBy:    q.OrderBy.Orders(),
		Pagination: q.Pagination,
		Page:       page,
	}
}

// Meta is the pagination metadata of a list response.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is the response envelope of a paginated list.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

type Finder[T any] interface {
	Find(ctx context.Context, req *ListRequest) ([]T, error)
	Count(ctx context.Context, cond ConditionTree) (int, error)
}

type FindFunc[T any] func(ctx context.Context, req *ListRequest) ([]T, error)

type CountFunc func(ctx context.Context, cond ConditionTree) (int, error)

// FinderFuncs adapts a pair of functions to a Finder.
type FinderFuncs[T any] struct {
	FindFunc  FindFunc[T]
	CountFunc CountFunc
}

func (f FinderFuncs[T]) Find(ctx context.Context, req *ListRequest) ([]T, error) {
	return f.FindFunc(ctx, req)
}

func (f FinderFuncs[T]) Count(ctx context.Context, cond ConditionTree) (int, error) {
	return f.CountFunc(ctx, cond)
}

func list[T any](ctx context.Context, req *ListRequest, finder Finder[T]) (*Page[T], error) {
	if req.Skip != nil && *req.Skip < 0 {
		return nil, errors.New("skip must be a non-negative integer")
	}
	if req.Take != nil && *req.Take < 0 {
		return nil, errors.New("take must be a non-negative integer")
	}
	if len(req.OrderBy) > 0 {
		dups := lo.FindDuplicatesBy(req.OrderBy, func(item Order) string {
			return item.Field
		})
		if len(dups) > 0 {
			return nil, errors.Errorf("duplicated order by fields %v", lo.Map(dups, func(item Order, _ int) string {
				return item.Field
			}))
		}
	}

	skip := GetSkip(ctx)
	page := &Page[T]{Data: []T{}}

	if !skip.Data {
		nodes, err := finder.Find(ctx, req)
		if err != nil {
			return nil, err
		}
		if nodes != nil {
			page.Data = nodes
		}
	}

	if !skip.Total {
		total, err := finder.Count(ctx, req.Condition)
		if err != nil {
			return nil, err
		}
		page.Meta = newMeta(total, req)
	}

	return page, nil
}

func newMeta(total int, req *ListRequest) *Meta {
	meta := &Meta{Total: total, Page: req.Page, TotalPages: 1}
	if meta.Page <= 0 {
		meta.Page = 1
	}
	if req.Take != nil && *req.Take > 0 {
		meta.Limit = *req.Take
		meta.TotalPages = (total + *req.Take - 1) / *req.Take
	}
	return meta
}

type Lister[T any] interface {
	List(ctx context.Context, req *ListRequest) (*Page[T], error)
}

type ListerFunc[T any] func(ctx context.Context, req *ListRequest) (*Page[T], error)

func (f ListerFunc[T]) List(ctx context.Context, req *ListRequest) (*Page[T], error) {
	return f(ctx, req)
}

func NewLister[T any](finder Finder[T], hooks ...func(next Lister[T]) Lister[T]) Lister[T] {
	if finder == nil {
		panic("finder must be set")
	}

	var l Lister[T] = ListerFunc[T](func(ctx context.Context, req *ListRequest) (*Page[T], error) {
		return list(ctx, req, finder)
	})

	hook := hook.Chain(hooks...)
	if hook != nil {
		l = hook(l)
	}
	return l
}
