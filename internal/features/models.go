package features

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/theplant/adminquery/internal/models"
)

// Enum is a closed set of values a model field may take.
type Enum struct {
	Name   string       `json:"name"`
	Values []string     `json:"values"`
	Type   reflect.Type `json:"-"`
}

func defaultEnums() []Enum {
	return []Enum{
		{
			Name:   "ContentType",
			Values: lo.Map(models.ContentTypes, func(t models.ContentType, _ int) string { return string(t) }),
			Type:   reflect.TypeOf(models.ContentType("")),
		},
		{
			Name:   "Status",
			Values: []string{models.StatusActive, models.StatusInactive, models.StatusCompleted},
		},
	}
}

type Relation struct {
	Kind       string   `json:"kind"`
	Model      string   `json:"model"`
	Fields     []string `json:"fields"`
	References []string `json:"references"`
}

type Property struct {
	Name       string    `json:"name"`
	Column     string    `json:"column,omitempty"`
	Type       string    `json:"type"`
	IsRequired bool      `json:"isRequired"`
	IsList     bool      `json:"isList"`
	IsID       bool      `json:"isId"`
	IsUnique   bool      `json:"isUnique"`
	Default    string    `json:"default,omitempty"`
	Enum       string    `json:"enum,omitempty"`
	Relation   *Relation `json:"relation,omitempty"`
}

type Model struct {
	Name       string     `json:"name"`
	Table      string     `json:"table"`
	Properties []Property `json:"properties"`
}

// Models describes every registered model.
func (s *Service) Models() ([]Model, error) {
	out := make([]Model, 0, len(s.models))
	for _, m := range s.models {
		model, err := s.describe(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *model)
	}
	return out, nil
}

// Model describes the model whose Go name or table name is name, ignoring
// case.
func (s *Service) Model(name string) (*Model, error) {
	for _, m := range s.models {
		sch, err := s.parse(m)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(sch.Name, name) || strings.EqualFold(sch.Table, name) {
			return s.describe(m)
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "model %q", name)
}

func (s *Service) Enums() []Enum {
	return s.enums
}

func (s *Service) parse(model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema for model")
	}
	return stmt.Schema, nil
}

func (s *Service) describe(model any) (*Model, error) {
	sch, err := s.parse(model)
	if err != nil {
		return nil, err
	}

	unique := map[string]bool{}
	for _, idx := range sch.ParseIndexes() {
		if idx.Class == "UNIQUE" && len(idx.Fields) == 1 {
			unique[idx.Fields[0].Name] = true
		}
	}

	out := &Model{Name: sch.Name, Table: sch.Table}
	for _, field := range sch.Fields {
		if rel, ok := sch.Relationships.Relations[field.Name]; ok {
			out.Properties = append(out.Properties, relationProperty(field, rel))
			continue
		}
		if field.DBName == "" {
			continue
		}
		prop := Property{
			Name:       field.Name,
			Column:     field.DBName,
			Type:       string(field.GORMDataType),
			IsRequired: field.NotNull || field.PrimaryKey,
			IsID:       field.PrimaryKey,
			IsUnique:   field.Unique || unique[field.Name],
			Default:    defaultValue(field),
		}
		if enum, ok := s.enumOf(field.IndirectFieldType); ok {
			prop.Enum = enum.Name
		}
		out.Properties = append(out.Properties, prop)
	}
	return out, nil
}

func (s *Service) enumOf(t reflect.Type) (Enum, bool) {
	return lo.Find(s.enums, func(e Enum) bool { return e.Type != nil && e.Type == t })
}

func defaultValue(field *schema.Field) string {
	switch {
	case field.AutoIncrement:
		return "autoincrement()"
	case field.AutoCreateTime > 0 || field.AutoUpdateTime > 0:
		return "now()"
	case field.HasDefaultValue:
		return field.DefaultValue
	}
	return ""
}

func relationProperty(field *schema.Field, rel *schema.Relationship) Property {
	prop := Property{
		Name:   field.Name,
		Type:   rel.FieldSchema.Name,
		IsList: rel.Type == schema.HasMany || rel.Type == schema.Many2Many,
		Relation: &Relation{
			Kind:  string(rel.Type),
			Model: rel.FieldSchema.Name,
		},
	}
	for _, ref := range rel.References {
		if ref.PrimaryKey == nil || ref.ForeignKey == nil {
			continue
		}
		if ref.OwnPrimaryKey {
			prop.Relation.Fields = append(prop.Relation.Fields, ref.PrimaryKey.Name)
			prop.Relation.References = append(prop.Relation.References, ref.ForeignKey.Name)
		} else {
			prop.Relation.Fields = append(prop.Relation.Fields, ref.ForeignKey.Name)
			prop.Relation.References = append(prop.Relation.References, ref.PrimaryKey.Name)
		}
	}
	return prop
}
