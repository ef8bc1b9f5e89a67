package gormquery

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/theplant/adminquery"
)

var (
	// ErrUnknownField is returned when a condition or order names a field
	// the model does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedRelation is returned for relation paths that cannot be
	// expressed as a sub-select, e.g. many-to-many or polymorphic ones.
	ErrUnsupportedRelation = errors.New("unsupported relation")
)

// Scope adds the WHERE expressions of cond. Dotted fields are
// resolved through the model's relationships.
func Scope(cond adminquery.ConditionTree) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil {
			return nil
		}
		fdb, err := addCondition(db, cond)
		if err != nil {
			db.AddError(err)
			return db
		}
		return fdb
	}
}

func addCondition(db *gorm.DB, cond adminquery.ConditionTree) (*gorm.DB, error) {
	if len(cond) == 0 {
		return db, nil
	}

	model := db.Statement.Model
	if model == nil {
		model = db.Statement.Dest
	}
	if model == nil {
		return nil, errors.New("model is nil")
	}
	s, err := parseSchema(db, model)
	if err != nil {
		return nil, err
	}

	exprs, err := BuildExprs(s, cond)
	if err != nil {
		return nil, err
	}
	for _, expr := range exprs {
		db = db.Where(expr)
	}
	return db, nil
}

// BuildExprs compiles cond against s, in field order. Every condition of a
// plain field becomes its own expression; the conditions of a dotted field
// share one sub-select.
func BuildExprs(s *schema.Schema, cond adminquery.ConditionTree) ([]clause.Expression, error) {
	fields := lo.Keys(cond)
	sort.Strings(fields)

	exprs := make([]clause.Expression, 0, len(fields))
	for _, field := range fields {
		conds := cond[field]
		if len(conds) == 0 {
			continue
		}
		path := strings.Split(field, ".")
		if len(path) == 1 {
			leaves, err := buildLeafExprs(s, clause.CurrentTable, path[0], conds)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, leaves...)
			continue
		}
		expr, err := buildFieldExpr(s, clause.CurrentTable, path, conds)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func buildFieldExpr(s *schema.Schema, table string, path []string, conds []adminquery.Condition) (clause.Expression, error) {
	if len(path) > 1 {
		rel, err := lookUpRelation(s, path[0])
		if err != nil {
			return nil, err
		}
		related := rel.FieldSchema
		where, err := buildFieldExpr(related, related.Table, path[1:], conds)
		if err != nil {
			return nil, err
		}

		ref := rel.References[0]
		own, other := ref.ForeignKey, ref.PrimaryKey
		if ref.OwnPrimaryKey {
			own, other = ref.PrimaryKey, ref.ForeignKey
		}
		return inSubquery{
			Column:   clause.Column{Table: table, Name: own.DBName},
			Table:    related.Table,
			Selected: clause.Column{Table: related.Table, Name: other.DBName},
			Where:    where,
		}, nil
	}

	leaves, err := buildLeafExprs(s, table, path[0], conds)
	if err != nil {
		return nil, err
	}
	return clause.And(leaves...), nil
}

func buildLeafExprs(s *schema.Schema, table, name string, conds []adminquery.Condition) ([]clause.Expression, error) {
	field, err := lookUpField(s, name)
	if err != nil {
		return nil, err
	}
	column := clause.Column{Table: table, Name: field.DBName}
	exprs := make([]clause.Expression, 0, len(conds))
	for _, cond := range conds {
		expr, err := buildOperatorExpr(field, column, cond)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildOperatorExpr(field *schema.Field, column clause.Column, cond adminquery.Condition) (clause.Expression, error) {
	switch cond.Op {
	case adminquery.OpContains:
		str, ok := cond.Value.(string)
		if !ok {
			return nil, errors.Errorf("invalid CONTAINS value for field %q", field.Name)
		}
		var col any = column
		if cond.Fold {
			col = clause.Expr{SQL: "LOWER(?)", Vars: []any{column}}
			str = strings.ToLower(str)
		}
		return clause.Like{Column: col, Value: "%" + likeEscaper.Replace(str) + "%"}, nil

	case adminquery.OpIn:
		values, ok := cond.Value.([]any)
		if !ok {
			values = []any{cond.Value}
		}
		return clause.IN{Column: column, Values: lo.Map(values, func(v any, _ int) any {
			return normalizeValue(field, v)
		})}, nil

	case adminquery.OpGt:
		return clause.Gt{Column: column, Value: normalizeValue(field, cond.Value)}, nil
	case adminquery.OpGte:
		return clause.Gte{Column: column, Value: normalizeValue(field, cond.Value)}, nil
	case adminquery.OpLt:
		return clause.Lt{Column: column, Value: normalizeValue(field, cond.Value)}, nil
	case adminquery.OpLte:
		return clause.Lte{Column: column, Value: normalizeValue(field, cond.Value)}, nil

	default:
		return clause.Eq{Column: column, Value: normalizeValue(field, cond.Value)}, nil
	}
}

// normalizeValue turns integral float64 values into int64 for integer columns.
func normalizeValue(field *schema.Field, value any) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}
	switch field.DataType {
	case schema.Int, schema.Uint:
		if f == float64(int64(f)) {
			return int64(f)
		}
	}
	return value
}
