// Package sqlquery compiles list requests against tables that have no gorm
// model, e.g. when browsing the database schema.
package sqlquery

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/adminquery"
)

// ErrUnknownColumn is returned for conditions or orders on columns the table
// does not declare.
var ErrUnknownColumn = errors.New("unknown column")

// Table describes the columns a query may reference.
type Table struct {
	Schema  string
	Name    string
	Columns []string
}

func (t Table) ident() string {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}.Sanitize()
	}
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

func (t Table) column(name string) (string, error) {
	for _, candidate := range []string{name, lo.SnakeCase(name)} {
		if lo.Contains(t.Columns, candidate) {
			return pgx.Identifier{candidate}.Sanitize(), nil
		}
	}
	return "", errors.Wrapf(ErrUnknownColumn, "%q in table %s", name, t.Name)
}

// builder uses '?' placeholders so that the output can be passed to gorm's Raw.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Select returns the SQL selecting one page of rows of t.
func Select(t Table, req *adminquery.ListRequest) (string, []any, error) {
	q := builder.Select("*").From(t.ident())

	q, err := where(q, t, req.Condition)
	if err != nil {
		return "", nil, err
	}

	for _, order := range req.OrderBy {
		col, err := t.column(order.Field)
		if err != nil {
			return "", nil, err
		}
		if order.Direction == adminquery.Desc {
			col += " DESC"
		}
		q = q.OrderBy(col)
	}

	if req.Skip != nil && *req.Skip > 0 {
		q = q.Offset(uint64(*req.Skip))
	}
	if req.Take != nil {
		q = q.Limit(uint64(*req.Take))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "build select")
	}
	return sql, args, nil
}

// Count returns the SQL counting the rows of t matching cond.
func Count(t Table, cond adminquery.ConditionTree) (string, []any, error) {
	q, err := where(builder.Select("count(*)").From(t.ident()), t, cond)
	if err != nil {
		return "", nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "build count")
	}
	return sql, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func where(q sq.SelectBuilder, t Table, cond adminquery.ConditionTree) (sq.SelectBuilder, error) {
	fields := lo.Keys(cond)
	sort.Strings(fields)

	for _, field := range fields {
		col, err := t.column(field)
		if err != nil {
			return q, err
		}
		for _, c := range cond[field] {
			pred, err := predicate(col, field, c)
			if err != nil {
				return q, err
			}
			q = q.Where(pred)
		}
	}
	return q, nil
}

// predicate compiles one condition on the quoted column col.
func predicate(col, field string, c adminquery.Condition) (sq.Sqlizer, error) {
	var pred sq.Sqlizer
	switch c.Op {
	case adminquery.OpContains:
		str, ok := c.Value.(string)
		if !ok {
			return nil, errors.Errorf("invalid CONTAINS value for column %q", field)
		}
		pattern := "%" + likeEscaper.Replace(str) + "%"
		if c.Fold {
			pred = sq.ILike{col: pattern}
		} else {
			pred = sq.Like{col: pattern}
		}
	case adminquery.OpIn:
		values, ok := c.Value.([]any)
		if !ok {
			values = []any{c.Value}
		}
		pred = sq.Eq{col: values}
	case adminquery.OpGt:
		pred = sq.Gt{col: c.Value}
	case adminquery.OpGte:
		pred = sq.GtOrEq{col: c.Value}
	case adminquery.OpLt:
		pred = sq.Lt{col: c.Value}
	case adminquery.OpLte:
		pred = sq.LtOrEq{col: c.Value}
	default:
		pred = sq.Eq{col: c.Value}
	}
	return pred, nil
}
