// Package services implements the admin operations of every entity on top of
// gorm. List operations compile the raw request with adminquery and execute
// it with gormquery.
package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/filterconfig"
	"github.com/theplant/adminquery/gormquery"
	"github.com/theplant/adminquery/internal/logger"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidQuery     = errors.New("invalid query")
)

// invalidQueryError marks a list error caused by the request, such as a sort
// on a field the model does not have.
type invalidQueryError struct {
	err error
}

func (e invalidQueryError) Error() string { return e.err.Error() }

func (e invalidQueryError) Unwrap() error { return e.err }

func (e invalidQueryError) Is(target error) bool { return target == ErrInvalidQuery }

type Services struct {
	Structures          *StructureService
	StructureAttributes *StructureAttributeService
	Persons             *PersonService
	PersonAttributes    *PersonAttributeService
	Categories          *CategoryService
	Lists               *ListService
	Articles            *ArticleService
}

type base struct {
	db       *gorm.DB
	compiler *adminquery.Compiler
	filters  filterconfig.Set
	maxLimit int
	log      zerolog.Logger
}

type Option func(b *base)

func WithCompiler(compiler *adminquery.Compiler) Option {
	return func(b *base) {
		b.compiler = compiler
	}
}

func WithFilters(filters filterconfig.Set) Option {
	return func(b *base) {
		b.filters = filters
	}
}

// WithMaxLimit caps the page size of every list. 0 disables the cap.
func WithMaxLimit(maxLimit int) Option {
	return func(b *base) {
		b.maxLimit = maxLimit
	}
}

func New(db *gorm.DB, log zerolog.Logger, opts ...Option) *Services {
	if db == nil {
		panic("db must be set")
	}
	b := &base{db: db, log: log}
	for _, opt := range opts {
		opt(b)
	}
	if b.compiler == nil {
		b.compiler = adminquery.NewCompiler()
	}
	if b.filters == nil {
		b.filters = filterconfig.Default()
	}
	if b.maxLimit < 0 {
		panic("maxLimit cannot be negative")
	}

	return &Services{
		Structures:          &StructureService{base: b},
		StructureAttributes: &StructureAttributeService{base: b},
		Persons:             &PersonService{base: b},
		PersonAttributes:    &PersonAttributeService{base: b},
		Categories:          &CategoryService{base: b},
		Lists:               &ListService{base: b},
		Articles:            &ArticleService{base: b},
	}
}

var primaryOrder = adminquery.Order{Field: "id", Direction: adminquery.Asc}

// list compiles req with the filter table of entity and runs it through
// finder. hooks wrap the lister outside of the primary order and the limit cap.
func list[T any](
	ctx context.Context,
	b *base,
	entity string,
	finder adminquery.Finder[T],
	req adminquery.Request,
	hooks ...func(next adminquery.Lister[T]) adminquery.Lister[T],
) (*adminquery.Page[T], error) {
	q := b.compiler.Compile(req, b.filters.Get(entity))
	log := logger.FromContext(ctx, b.log)
	log.Debug().
		Str("entity", entity).
		Interface("query", q.ToMap()).
		Msg("list")

	hooks = append(hooks,
		adminquery.EnsurePrimaryOrder[T](primaryOrder),
		adminquery.EnsureMaxLimit[T](b.maxLimit),
	)
	page, err := adminquery.NewLister(finder, hooks...).List(ctx, q.ListRequest())
	if err != nil {
		if errors.Is(err, gormquery.ErrUnknownField) || errors.Is(err, gormquery.ErrUnsupportedRelation) {
			return nil, invalidQueryError{err: err}
		}
		return nil, errors.Wrapf(err, "list %s", entity)
	}
	return page, nil
}

func notFound(entity string, id int) error {
	return errors.Wrapf(ErrNotFound, "%s with ID %d", entity, id)
}

// get loads the record with id, applying scopes such as preloads.
func get[T any](ctx context.Context, db *gorm.DB, entity string, id int, scopes ...func(db *gorm.DB) *gorm.DB) (*T, error) {
	var m T
	if err := db.WithContext(ctx).Scopes(scopes...).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(entity, id)
		}
		return nil, errors.Wrapf(err, "get %s", entity)
	}
	return &m, nil
}

// exists reports ErrNotFound when no record of T has id.
func exists[T any](ctx context.Context, db *gorm.DB, entity string, id int) error {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrapf(err, "check %s", entity)
	}
	if count == 0 {
		return notFound(entity, id)
	}
	return nil
}

// changes collects the columns of a partial update.
type changes map[string]any

func setIf[V any](c changes, column string, v *V) {
	if v != nil {
		c[column] = *v
	}
}

// update applies c to the record with id and always bumps updated_at.
func update[T any](ctx context.Context, db *gorm.DB, entity string, id int, c changes, translate func(err error) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m T
		if err := tx.Select("id").First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(entity, id)
			}
			return errors.Wrapf(err, "get %s", entity)
		}
		c["updated_at"] = time.Now()
		if err := tx.Model(new(T)).Where("id = ?", id).Updates(map[string]any(c)).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

func remove[T any](ctx context.Context, db *gorm.DB, entity string, id int, translate func(err error) error) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, id)
	}
	return nil
}

// writeError maps constraint violations of a write on entity.
func writeError(entity string) func(err error) error {
	return func(err error) error {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return errors.Wrapf(ErrConflict, "%s already exists", entity)
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return errors.Wrapf(ErrInvalidReference, "%s references a missing record", entity)
		}
		return errors.Wrapf(err, "write %s", entity)
	}
}
