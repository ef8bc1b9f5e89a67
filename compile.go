package adminquery

import (
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// DefaultLimit is the page size used when a request carries no limit.
const DefaultLimit = 10

// Compiler turns requests into query descriptors. It holds no per-request
// state and is safe for concurrent use.
type Compiler struct {
	defaultLimit int
}

type CompilerOption func(c *Compiler)

// WithDefaultLimit overrides the page size used when the request has no limit.
// A non-positive value is ignored.
func WithDefaultLimit(limit int) CompilerOption {
	return func(c *Compiler) {
		if limit > 0 {
			c.defaultLimit = limit
		}
	}
}

func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{defaultLimit: DefaultLimit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds the full query descriptor for req.
func (c *Compiler) Compile(req Request, config FilterConfig) *Query {
	page, pagination := c.pagination(req)
	return &Query{
		Condition:  c.CompileCondition(req, config),
		OrderBy:    c.CompileSorting(req, config),
		Pagination: pagination,
		Page:       page,
	}
}

// CompileCondition maps the filter keys of req through config.
// Keys missing from config, values that fail coercion and empty "in" sets are
// dropped silently: a malformed filter narrows nothing instead of failing.
// Keys sharing a target field all apply, in key order.
func (c *Compiler) CompileCondition(req Request, config FilterConfig) ConditionTree {
	tree := make(ConditionTree)
	keys := lo.Keys(req)
	sort.Strings(keys)
	for _, key := range keys {
		raw := req[key]
		if IsReservedKey(key) || raw == nil {
			continue
		}
		fc, ok := config[key]
		if !ok {
			continue
		}

		value, ok := coerce(raw, fc.ValueType, fc.Operator)
		if !ok {
			continue
		}
		if fc.Operator == OpIn {
			if items, _ := value.([]any); len(items) == 0 {
				continue
			}
		}

		switch fc.Operator {
		case OpContains:
			if s, isString := value.(string); isString {
				tree.Add(fc.TargetField, Condition{Op: OpContains, Value: s, Fold: true})
			} else {
				tree.Add(fc.TargetField, Condition{Op: OpEquals, Value: value})
			}
		case OpEquals, OpIn, OpGt, OpLt, OpGte, OpLte:
			tree.Add(fc.TargetField, Condition{Op: fc.Operator, Value: value})
		default:
			tree.Add(fc.TargetField, Condition{Op: OpEquals, Value: value})
		}
	}
	return tree
}

// CompilePagination derives the offset window from page and limit.
// A limit of 0 means no window at all. A page whose offset does not fit in an
// int falls back to the first page.
func (c *Compiler) CompilePagination(req Request) Pagination {
	_, pagination := c.pagination(req)
	return pagination
}

// pagination returns the normalized page along with its window.
func (c *Compiler) pagination(req Request) (int, Pagination) {
	page := 1
	if p, ok := toInt(req[KeyPage]); ok && p > 0 {
		page = p
	}
	take := c.defaultLimit
	if limit, ok := toInt(req[KeyLimit]); ok && limit >= 0 {
		take = limit
	}
	if take == 0 {
		return page, Pagination{}
	}
	if page-1 > math.MaxInt/take {
		page = 1
	}
	skip := (page - 1) * take
	return page, Pagination{Skip: &skip, Take: &take}
}

// CompileSorting resolves sortBy through config and returns nil when no
// usable sort key is present. Keys unknown to config are used verbatim so that
// fields which are not filterable can still be sorted on.
func (c *Compiler) CompileSorting(req Request, config FilterConfig) OrderSpec {
	sortBy, ok := toString(req[KeySortBy])
	if !ok || sortBy == "" {
		return nil
	}

	direction := Asc
	if order, ok := toString(req[KeySortOrder]); ok && strings.ToLower(order) == string(Desc) {
		direction = Desc
	}

	// A key match wins over entries whose target field equals sortBy; those
	// resolve to sortBy itself, so any of them gives the same field.
	field := sortBy
	if fc, ok := config[sortBy]; ok {
		field = fc.TargetField
	}
	if field == "" {
		return nil
	}

	parts := strings.Split(field, ".")
	if len(parts) == 1 {
		return OrderSpec{field: direction}
	}
	for _, part := range parts {
		if part == "" {
			return nil
		}
	}

	spec := OrderSpec{parts[len(parts)-1]: direction}
	for i := len(parts) - 2; i >= 0; i-- {
		spec = OrderSpec{parts[i]: spec}
	}
	return spec
}
