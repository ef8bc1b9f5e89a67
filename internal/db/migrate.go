package db

import (
	"context"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Direction selects which way migrations run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies (Up) or reverts (Down) every migration. Running with
// nothing to change is not an error.
func Migrate(ctx context.Context, db *gorm.DB, direction Direction) error {
	m, closeFn, err := newMigrate(ctx, db)
	if err != nil {
		return err
	}
	defer closeFn()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return errors.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrapf(err, "migrate %s", direction)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *gorm.DB) (uint, bool, error) {
	m, closeFn, err := newMigrate(ctx, db)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "migration version")
	}
	return version, dirty, nil
}

// newMigrate runs migrations on a dedicated connection of db so that closing
// the migrator leaves the pool open.
func newMigrate(ctx context.Context, db *gorm.DB) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, nil, errors.Wrap(err, "open migrations")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "no underlying sqlDB")
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "acquire connection")
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, nil, errors.Wrap(err, "migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return nil, nil, errors.Wrap(err, "create migrator")
	}
	return m, func() { _, _ = m.Close() }, nil
}
