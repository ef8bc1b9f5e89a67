// Package features describes the database to the admin frontend: the tables
// and their columns, the registered models and their enums, and a generic
// filtered view of the rows of any table.
package features

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/internal/logger"
	"github.com/theplant/adminquery/internal/models"
	"github.com/theplant/adminquery/sqlquery"
)

var ErrNotFound = errors.New("not found")

// migrationsTable is the bookkeeping table of golang-migrate.
const migrationsTable = "schema_migrations"

type TableInfo struct {
	Name       string `json:"name"`
	FieldCount int    `json:"fieldCount"`
}

type Column struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	IsRequired bool    `json:"isRequired"`
	IsUnique   bool    `json:"isUnique"`
	IsID       bool    `json:"isId"`
	Default    *string `json:"default"`
}

type TableMetadata struct {
	Name   string   `json:"name"`
	Fields []Column `json:"fields"`
}

type Service struct {
	db       *gorm.DB
	compiler *adminquery.Compiler
	models   []any
	enums    []Enum
	maxLimit int
	log      zerolog.Logger
}

type Option func(s *Service)

func WithCompiler(compiler *adminquery.Compiler) Option {
	return func(s *Service) {
		s.compiler = compiler
	}
}

// WithModels replaces the models described by Models.
func WithModels(models ...any) Option {
	return func(s *Service) {
		s.models = models
	}
}

// WithMaxLimit caps the page size of Rows. 0 disables the cap.
func WithMaxLimit(maxLimit int) Option {
	return func(s *Service) {
		s.maxLimit = maxLimit
	}
}

func New(db *gorm.DB, log zerolog.Logger, opts ...Option) *Service {
	if db == nil {
		panic("db must be set")
	}
	s := &Service{
		db:     db,
		models: models.All(),
		enums:  defaultEnums(),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compiler == nil {
		s.compiler = adminquery.NewCompiler()
	}
	if s.maxLimit < 0 {
		panic("maxLimit cannot be negative")
	}
	return s
}

// Tables lists the tables of the current schema with their column counts.
func (s *Service) Tables(ctx context.Context) ([]TableInfo, error) {
	m := s.db.WithContext(ctx).Migrator()
	names, err := m.GetTables()
	if err != nil {
		return nil, errors.Wrap(err, "get tables")
	}
	names = lo.Without(names, migrationsTable)
	sort.Strings(names)

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		columns, err := m.ColumnTypes(name)
		if err != nil {
			return nil, errors.Wrapf(err, "column types of %s", name)
		}
		tables = append(tables, TableInfo{Name: name, FieldCount: len(columns)})
	}
	return tables, nil
}

// TableMetadata describes the columns of table.
func (s *Service) TableMetadata(ctx context.Context, table string) (*TableMetadata, error) {
	m := s.db.WithContext(ctx).Migrator()
	if table == migrationsTable || !m.HasTable(table) {
		return nil, errors.Wrapf(ErrNotFound, "table %q", table)
	}
	columnTypes, err := m.ColumnTypes(table)
	if err != nil {
		return nil, errors.Wrapf(err, "column types of %s", table)
	}

	meta := &TableMetadata{Name: table, Fields: make([]Column, 0, len(columnTypes))}
	for _, ct := range columnTypes {
		col := Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
		if nullable, ok := ct.Nullable(); ok {
			col.IsRequired = !nullable
		}
		if unique, ok := ct.Unique(); ok {
			col.IsUnique = unique
		}
		if pk, ok := ct.PrimaryKey(); ok {
			col.IsID = pk
		}
		if def, ok := ct.DefaultValue(); ok {
			col.Default = &def
		}
		meta.Fields = append(meta.Fields, col)
	}
	return meta, nil
}

// Rows lists the rows of table. Filter keys are derived from the column
// types, see ColumnFilters. Rows are ordered by primary key after any
// requested sort.
func (s *Service) Rows(ctx context.Context, table string, req adminquery.Request) (*adminquery.Page[map[string]any], error) {
	meta, err := s.TableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	t := sqlquery.Table{
		Name:    table,
		Columns: lo.Map(meta.Fields, func(c Column, _ int) string { return c.Name }),
	}

	q := s.compiler.Compile(req, ColumnFilters(meta.Fields))
	log := logger.FromContext(ctx, s.log)
	log.Debug().
		Str("table", table).
		Interface("query", q.ToMap()).
		Msg("rows")

	finder := adminquery.FinderFuncs[map[string]any]{
		FindFunc: func(ctx context.Context, req *adminquery.ListRequest) ([]map[string]any, error) {
			sql, args, err := sqlquery.Select(t, req)
			if err != nil {
				return nil, err
			}
			rows := []map[string]any{}
			if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
				return nil, errors.Wrapf(err, "select rows of %s", table)
			}
			return rows, nil
		},
		CountFunc: func(ctx context.Context, cond adminquery.ConditionTree) (int, error) {
			sql, args, err := sqlquery.Count(t, cond)
			if err != nil {
				return 0, err
			}
			var total int64
			if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&total).Error; err != nil {
				return 0, errors.Wrapf(err, "count rows of %s", table)
			}
			return int(total), nil
		},
	}

	primaryOrder := lo.FilterMap(meta.Fields, func(c Column, _ int) (adminquery.Order, bool) {
		return adminquery.Order{Field: c.Name, Direction: adminquery.Asc}, c.IsID
	})
	return adminquery.NewLister[map[string]any](finder,
		adminquery.EnsurePrimaryOrder[map[string]any](primaryOrder...),
		adminquery.EnsureMaxLimit[map[string]any](s.maxLimit),
	).List(ctx, q.ListRequest())
}
