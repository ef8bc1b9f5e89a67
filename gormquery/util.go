package gormquery

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func parseSchema(db *gorm.DB, model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema for model")
	}
	return stmt.Schema, nil
}

// lookUpField finds a column by db name, Go field name or the snake case of
// a camelCase name such as "createdAt".
func lookUpField(s *schema.Schema, name string) (*schema.Field, error) {
	for _, candidate := range []string{name, lo.SnakeCase(name)} {
		if field := s.LookUpField(candidate); field != nil && field.DBName != "" {
			return field, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownField, "missing field %q in schema %s", name, s.Name)
}

func lookUpRelation(s *schema.Schema, name string) (*schema.Relationship, error) {
	rel, ok := s.Relationships.Relations[name]
	if !ok {
		rel, ok = s.Relationships.Relations[lo.PascalCase(name)]
	}
	if !ok {
		return nil, errors.Wrapf(ErrUnknownField, "missing relation %q in schema %s", name, s.Name)
	}
	if rel.Type == schema.Many2Many || rel.Polymorphic != nil || len(rel.References) != 1 {
		return nil, errors.Wrapf(ErrUnsupportedRelation, "relation %q in schema %s", name, s.Name)
	}
	return rel, nil
}

func applyModel[T any](db *gorm.DB) *gorm.DB {
	var t T
	modelType := reflect.TypeOf(t)
	if modelType.Kind() == reflect.Ptr && reflect.ValueOf(t).IsNil() {
		t = reflect.New(modelType.Elem()).Interface().(T)
	}
	return db.Model(t)
}
