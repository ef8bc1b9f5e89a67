package adminquery

import (
	"context"

	"github.com/samber/lo"
)

// EnsurePrimaryOrder appends primaryOrder to every request so that pages are
// stable. Without an explicit sort it becomes the only order.
func EnsurePrimaryOrder[T any](primaryOrder ...Order) func(next Lister[T]) Lister[T] {
	return func(next Lister[T]) Lister[T] {
		return ListerFunc[T](func(ctx context.Context, req *ListRequest) (*Page[T], error) {
			req.OrderBy = AppendPrimaryOrder(req.OrderBy, primaryOrder...)
			return next.List(ctx, req)
		})
	}
}

// AppendPrimaryOrder adds the entries of primaryOrder whose fields are not
// already ordered on.
func AppendPrimaryOrder(orderBy []Order, primaryOrder ...Order) []Order {
	if len(primaryOrder) == 0 {
		return orderBy
	}
	orderByFields := lo.SliceToMap(orderBy, func(o Order) (string, bool) {
		return o.Field, true
	})
	for _, primary := range primaryOrder {
		if _, ok := orderByFields[primary.Field]; !ok {
			orderBy = append(orderBy, primary)
		}
	}
	return orderBy
}

// EnsureDefaultOrder applies defaultOrder only when the request has no order.
func EnsureDefaultOrder[T any](defaultOrder ...Order) func(next Lister[T]) Lister[T] {
	return func(next Lister[T]) Lister[T] {
		return ListerFunc[T](func(ctx context.Context, req *ListRequest) (*Page[T], error) {
			if len(req.OrderBy) == 0 {
				req.OrderBy = append([]Order(nil), defaultOrder...)
			}
			return next.List(ctx, req)
		})
	}
}

// EnsureMaxLimit caps explicit page sizes at maxLimit. Unbounded requests
// (limit 0) stay unbounded. A maxLimit of 0 disables the cap.
func EnsureMaxLimit[T any](maxLimit int) func(next Lister[T]) Lister[T] {
	if maxLimit < 0 {
		panic("maxLimit cannot be negative")
	}
	return func(next Lister[T]) Lister[T] {
		if maxLimit == 0 {
			return next
		}
		return ListerFunc[T](func(ctx context.Context, req *ListRequest) (*Page[T], error) {
			if req.Take != nil && *req.Take > maxLimit {
				page := max(req.Page, 1)
				skip := (page - 1) * maxLimit
				req.Pagination = Pagination{Skip: &skip, Take: lo.ToPtr(maxLimit)}
			}
			return next.List(ctx, req)
		})
	}
}

// ProcessNodes runs process over the fetched nodes of every page, e.g. to
// attach aggregated data.
func ProcessNodes[T any](process func(ctx context.Context, nodes []T) error) func(next Lister[T]) Lister[T] {
	return func(next Lister[T]) Lister[T] {
		return ListerFunc[T](func(ctx context.Context, req *ListRequest) (*Page[T], error) {
			page, err := next.List(ctx, req)
			if err != nil {
				return nil, err
			}
			if len(page.Data) > 0 {
				if err := process(ctx, page.Data); err != nil {
					return nil, err
				}
			}
			return page, nil
		})
	}
}
