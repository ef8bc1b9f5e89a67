package adminquery_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	. "github.com/theplant/adminquery"
)

type item struct {
	ID   int
	Name string
}

// memoryFinder pages over a fixed slice and records the last request.
type memoryFinder struct {
	items   []item
	lastReq *ListRequest
	counted int
}

func (f *memoryFinder) Find(_ context.Context, req *ListRequest) ([]item, error) {
	f.lastReq = req
	items := f.items
	if req.Skip != nil {
		items = items[min(*req.Skip, len(items)):]
	}
	if req.Take != nil {
		items = items[:min(*req.Take, len(items))]
	}
	return items, nil
}

func (f *memoryFinder) Count(_ context.Context, _ ConditionTree) (int, error) {
	f.counted++
	return len(f.items), nil
}

func newItems(n int) []item {
	return lo.Times(n, func(i int) item {
		return item{ID: i + 1, Name: "item"}
	})
}

func TestLister(t *testing.T) {
	finder := &memoryFinder{items: newItems(23)}
	lister := NewLister[item](finder)
	c := NewCompiler()

	page, err := lister.List(context.Background(), c.Compile(Request{"page": "3", "limit": "10"}, nil).ListRequest())
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	require.Equal(t, 21, page.Data[0].ID)
	require.Equal(t, &Meta{Total: 23, Page: 3, Limit: 10, TotalPages: 3}, page.Meta)

	page, err = lister.List(context.Background(), c.Compile(Request{"limit": "0"}, nil).ListRequest())
	require.NoError(t, err)
	require.Len(t, page.Data, 23)
	require.Equal(t, &Meta{Total: 23, Page: 1, Limit: 0, TotalPages: 1}, page.Meta)

	page, err = lister.List(context.Background(), c.Compile(Request{"page": "9"}, nil).ListRequest())
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.NotNil(t, page.Data)
	require.Equal(t, 3, page.Meta.TotalPages)
}

func TestListerEmpty(t *testing.T) {
	lister := NewLister[item](&memoryFinder{})
	page, err := lister.List(context.Background(), NewCompiler().Compile(Request{}, nil).ListRequest())
	require.NoError(t, err)
	require.Equal(t, &Page[item]{Data: []item{}, Meta: &Meta{Total: 0, Page: 1, Limit: 10, TotalPages: 0}}, page)
}

func TestListerValidation(t *testing.T) {
	lister := NewLister[item](&memoryFinder{items: newItems(3)})

	_, err := lister.List(context.Background(), &ListRequest{Pagination: Pagination{Skip: lo.ToPtr(-1), Take: lo.ToPtr(1)}})
	require.ErrorContains(t, err, "skip must be a non-negative integer")

	_, err = lister.List(context.Background(), &ListRequest{Pagination: Pagination{Take: lo.ToPtr(-1)}})
	require.ErrorContains(t, err, "take must be a non-negative integer")

	_, err = lister.List(context.Background(), &ListRequest{OrderBy: []Order{
		{Field: "name", Direction: Asc},
		{Field: "name", Direction: Desc},
	}})
	require.ErrorContains(t, err, "duplicated order by fields [name]")

	require.PanicsWithValue(t, "finder must be set", func() {
		NewLister[item](nil)
	})
}

func TestListerSkip(t *testing.T) {
	finder := &memoryFinder{items: newItems(5)}
	lister := NewLister[item](finder)
	req := NewCompiler().Compile(Request{}, nil).ListRequest()

	page, err := lister.List(WithSkip(context.Background(), Skip{Total: true}), req)
	require.NoError(t, err)
	require.Len(t, page.Data, 5)
	require.Nil(t, page.Meta)
	require.Equal(t, 0, finder.counted)

	page, err = lister.List(WithSkip(context.Background(), Skip{Data: true}), req)
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.Equal(t, 5, page.Meta.Total)
	require.Equal(t, 1, finder.counted)

	require.True(t, Skip{Data: true, Total: true}.All())
	require.False(t, GetSkip(context.Background()).All())
}

func TestListerFinderError(t *testing.T) {
	boom := errors.New("boom")
	lister := NewLister[item](FinderFuncs[item]{
		FindFunc: func(ctx context.Context, req *ListRequest) ([]item, error) {
			return nil, boom
		},
		CountFunc: func(ctx context.Context, cond ConditionTree) (int, error) {
			return 0, nil
		},
	})
	_, err := lister.List(context.Background(), &ListRequest{})
	require.ErrorIs(t, err, boom)
}

func TestEnsurePrimaryOrder(t *testing.T) {
	finder := &memoryFinder{items: newItems(3)}
	lister := NewLister[item](finder, EnsurePrimaryOrder[item](Order{Field: "id", Direction: Asc}))

	_, err := lister.List(context.Background(), &ListRequest{})
	require.NoError(t, err)
	require.Equal(t, []Order{{Field: "id", Direction: Asc}}, finder.lastReq.OrderBy)

	_, err = lister.List(context.Background(), &ListRequest{OrderBy: []Order{{Field: "name", Direction: Desc}}})
	require.NoError(t, err)
	require.Equal(t, []Order{{Field: "name", Direction: Desc}, {Field: "id", Direction: Asc}}, finder.lastReq.OrderBy)

	_, err = lister.List(context.Background(), &ListRequest{OrderBy: []Order{{Field: "id", Direction: Desc}}})
	require.NoError(t, err)
	require.Equal(t, []Order{{Field: "id", Direction: Desc}}, finder.lastReq.OrderBy)
}

func TestEnsureDefaultOrder(t *testing.T) {
	finder := &memoryFinder{}
	lister := NewLister[item](finder,
		EnsureDefaultOrder[item](Order{Field: "createdAt", Direction: Desc}),
		EnsurePrimaryOrder[item](Order{Field: "id", Direction: Asc}),
	)

	_, err := lister.List(context.Background(), &ListRequest{})
	require.NoError(t, err)
	require.Equal(t, []Order{{Field: "createdAt", Direction: Desc}, {Field: "id", Direction: Asc}}, finder.lastReq.OrderBy)

	_, err = lister.List(context.Background(), &ListRequest{OrderBy: []Order{{Field: "title", Direction: Asc}}})
	require.NoError(t, err)
	require.Equal(t, []Order{{Field: "title", Direction: Asc}, {Field: "id", Direction: Asc}}, finder.lastReq.OrderBy)
}

func TestEnsureMaxLimit(t *testing.T) {
	require.PanicsWithValue(t, "maxLimit cannot be negative", func() {
		EnsureMaxLimit[item](-1)
	})

	finder := &memoryFinder{items: newItems(250)}
	lister := NewLister[item](finder, EnsureMaxLimit[item](100))
	c := NewCompiler()

	page, err := lister.List(context.Background(), c.Compile(Request{"page": "2", "limit": "500"}, nil).ListRequest())
	require.NoError(t, err)
	require.Len(t, page.Data, 100)
	require.Equal(t, 101, page.Data[0].ID)
	require.Equal(t, &Meta{Total: 250, Page: 2, Limit: 100, TotalPages: 3}, page.Meta)

	page, err = lister.List(context.Background(), c.Compile(Request{"limit": "0"}, nil).ListRequest())
	require.NoError(t, err)
	require.Len(t, page.Data, 250)
	require.Equal(t, &Meta{Total: 250, Page: 1, Limit: 0, TotalPages: 1}, page.Meta)

	page, err = lister.List(context.Background(), c.Compile(Request{"limit": "20"}, nil).ListRequest())
	require.NoError(t, err)
	require.Len(t, page.Data, 20)

	unlimited := NewLister[item](finder, EnsureMaxLimit[item](0))
	page, err = unlimited.List(context.Background(), c.Compile(Request{"limit": "0"}, nil).ListRequest())
	require.NoError(t, err)
	require.Len(t, page.Data, 250)
}

func TestProcessNodes(t *testing.T) {
	finder := &memoryFinder{items: newItems(3)}
	var seen []int
	lister := NewLister[item](finder, ProcessNodes(func(ctx context.Context, nodes []item) error {
		for _, n := range nodes {
			seen = append(seen, n.ID)
		}
		return nil
	}))

	_, err := lister.List(context.Background(), &ListRequest{})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, seen)

	failing := NewLister[item](finder, ProcessNodes(func(ctx context.Context, nodes []item) error {
		return errors.New("enrich failed")
	}))
	_, err = failing.List(context.Background(), &ListRequest{})
	require.ErrorContains(t, err, "enrich failed")
}
