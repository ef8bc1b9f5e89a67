package gormquery

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/theplant/adminquery"
)

// OrderScope adds an ORDER BY for orders. Dotted fields must walk
// belongs-to or has-one relations and sort on a correlated sub-select.
func OrderScope(orders []adminquery.Order) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil || len(orders) == 0 {
			return db
		}
		model := db.Statement.Model
		if model == nil {
			model = db.Statement.Dest
		}
		if model == nil {
			db.AddError(errors.New("model is nil"))
			return db
		}
		s, err := parseSchema(db, model)
		if err != nil {
			db.AddError(err)
			return db
		}
		orderBy, err := BuildOrderBy(s, orders)
		if err != nil {
			db.AddError(err)
			return db
		}
		return db.Order(orderBy)
	}
}

// BuildOrderBy compiles orders against s.
func BuildOrderBy(s *schema.Schema, orders []adminquery.Order) (clause.OrderBy, error) {
	columns := make([]clause.OrderByColumn, 0, len(orders))
	terms := make(orderTerms, 0, len(orders))
	related := false

	for _, order := range orders {
		path := strings.Split(order.Field, ".")
		desc := order.Direction == adminquery.Desc

		if len(path) == 1 {
			field, err := lookUpField(s, path[0])
			if err != nil {
				return clause.OrderBy{}, err
			}
			column := clause.Column{Table: clause.CurrentTable, Name: field.DBName}
			columns = append(columns, clause.OrderByColumn{Column: column, Desc: desc})
			terms = append(terms, orderTerm{Value: quotedColumn(column), Desc: desc})
			continue
		}

		value, err := buildRelatedValue(s, s.Table, path)
		if err != nil {
			return clause.OrderBy{}, err
		}
		related = true
		terms = append(terms, orderTerm{Value: value, Desc: desc})
	}

	if !related {
		return clause.OrderBy{Columns: columns}, nil
	}
	return clause.OrderBy{Expression: terms}, nil
}

func buildRelatedValue(s *schema.Schema, table string, path []string) (clause.Expression, error) {
	if len(path) == 1 {
		field, err := lookUpField(s, path[0])
		if err != nil {
			return nil, err
		}
		return quotedColumn(clause.Column{Table: table, Name: field.DBName}), nil
	}

	rel, err := lookUpRelation(s, path[0])
	if err != nil {
		return nil, err
	}
	if rel.Type != schema.BelongsTo && rel.Type != schema.HasOne {
		return nil, errors.Wrapf(ErrUnsupportedRelation, "cannot sort on %s relation %q", rel.Type, rel.Name)
	}

	related := rel.FieldSchema
	selected, err := buildRelatedValue(related, related.Table, path[1:])
	if err != nil {
		return nil, err
	}

	ref := rel.References[0]
	own, other := ref.ForeignKey, ref.PrimaryKey
	if ref.OwnPrimaryKey {
		own, other = ref.PrimaryKey, ref.ForeignKey
	}
	return relatedValue{
		Selected: selected,
		Table:    related.Table,
		Key:      clause.Column{Table: related.Table, Name: other.DBName},
		Ref:      clause.Column{Table: table, Name: own.DBName},
	}, nil
}
