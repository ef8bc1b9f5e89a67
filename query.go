package adminquery

import (
	"strings"

	"github.com/samber/lo"
)

// Operator is the comparison a FieldConfig applies to its target field.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
)

// Valid reports whether op is one of the known operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpContains, OpIn, OpGt, OpLt, OpGte, OpLte:
		return true
	}
	return false
}

// ValueType declares how raw request values are coerced before comparison.
// The zero value passes values through unchanged.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeInt     ValueType = "int"
	TypeBoolean ValueType = "boolean"
	TypeDate    ValueType = "date"
)

// Valid reports whether vt is empty or one of the known value types.
func (vt ValueType) Valid() bool {
	switch vt {
	case "", TypeString, TypeNumber, TypeInt, TypeBoolean, TypeDate:
		return true
	}
	return false
}

// FieldConfig maps one client-facing filter key to a storage field.
type FieldConfig struct {
	TargetField string    `json:"targetField" yaml:"field"`
	Operator    Operator  `json:"operator" yaml:"operator"`
	ValueType   ValueType `json:"valueType,omitempty" yaml:"type,omitempty"`
}

// FilterConfig is the per-entity table of filterable keys.
// It is built once at startup and must not be mutated afterwards.
type FilterConfig map[string]FieldConfig

// Reserved request keys, never treated as filters.
const (
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"
)

// IsReservedKey reports whether key is one of the pagination or sorting keys.
func IsReservedKey(key string) bool {
	switch key {
	case KeyPage, KeyLimit, KeySortBy, KeySortOrder:
		return true
	}
	return false
}

// Request is the raw client input: filter keys plus the reserved keys.
// Values are strings, string slices or already typed values.
type Request map[string]any

// Condition is an operator-tagged value for a single storage field.
// Fold marks a case-insensitive match.
type Condition struct {
	Op    Operator `json:"op"`
	Value any      `json:"value"`
	Fold  bool     `json:"fold,omitempty"`
}

// ConditionTree maps storage fields (dotted for related fields) to the
// conditions on them, all of which must hold. Several filter keys may target
// the same field, e.g. both ends of a range. An empty tree matches everything.
type ConditionTree map[string][]Condition

// Add appends cond to the conditions of field.
func (t ConditionTree) Add(field string, cond Condition) {
	t[field] = append(t[field], cond)
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderSpec mirrors a dotted field path as nested maps down to a Direction leaf,
// e.g. {"category": {"name": "asc"}}. It holds exactly one sort key.
type OrderSpec map[string]any

// Pagination is the offset window of a query. Both fields nil means unbounded.
type Pagination struct {
	Skip *int `json:"skip,omitempty"`
	Take *int `json:"take,omitempty"`
}

// Query is the backend-neutral description of a list request.
type Query struct {
	Condition ConditionTree `json:"condition"`
	OrderBy   OrderSpec     `json:"orderBy,omitempty"`
	Pagination
	// Page is the normalized 1-based page the window was derived from.
	Page int `json:"page"`
}

// Order is a flattened sort key as consumed by executors.
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Orders flattens s into dotted field orders.
func (s OrderSpec) Orders() []Order {
	var orders []Order
	flattenOrderSpec(s, nil, &orders)
	return orders
}

func flattenOrderSpec(m map[string]any, path []string, orders *[]Order) {
	for key, value := range m {
		current := append(append([]string(nil), path...), key)
		switch v := value.(type) {
		case Direction:
			*orders = append(*orders, Order{Field: strings.Join(current, "."), Direction: v})
		case OrderSpec:
			flattenOrderSpec(v, current, orders)
		case map[string]any:
			flattenOrderSpec(v, current, orders)
		}
	}
}

// ToMap renders the query as plain nested maps, with condition keys expanded
// along their dotted paths. Used for logging and debugging output.
func (q *Query) ToMap() map[string]any {
	where := make(map[string]any, len(q.Condition))
	for field, conds := range q.Condition {
		if len(conds) == 0 {
			continue
		}
		setPath(where, strings.Split(field, "."), conditionsMap(conds))
	}
	m := map[string]any{
		"where": where,
		"page":  q.Page,
	}
	if q.OrderBy != nil {
		m["orderBy"] = map[string]any(q.OrderBy)
	}
	if q.Skip != nil {
		m["skip"] = *q.Skip
	}
	if q.Take != nil {
		m["take"] = *q.Take
	}
	return m
}

// conditionsMap merges conds into one operator map, {"gte": a, "lte": b}.
// Conditions repeating an operator are listed under "AND" instead.
func conditionsMap(conds []Condition) map[string]any {
	leaf := make(map[string]any, len(conds))
	for _, cond := range conds {
		if _, dup := leaf[string(cond.Op)]; dup {
			return map[string]any{"AND": lo.Map(conds, func(cond Condition, _ int) any {
				return conditionsMap([]Condition{cond})
			})}
		}
		leaf[string(cond.Op)] = cond.Value
		if cond.Fold {
			leaf["mode"] = "insensitive"
		}
	}
	return leaf
}

func setPath(m map[string]any, path []string, leaf map[string]any) {
	for _, segment := range path[:len(path)-1] {
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[segment] = next
		}
		m = next
	}
	m[path[len(path)-1]] = leaf
}
