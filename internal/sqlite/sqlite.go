package sqlite

import (
	"context"
	"embed"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	migrate "github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/twitsprout/tools/clock"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
var matchAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")

func ToSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// SQLite is durable local storage backed by a single SQLite file.
type SQLite struct {
	sqldb *sqlx.DB
	clock clock.Clock
}

type QueryValues struct {
	query string
	args  []interface{}
}

var sqlb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// New opens (creating if needed) the database at path and migrates it to
// the latest schema.
func New(ctx context.Context, path string, c clock.Clock) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path must be provided")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}
	sqldb, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	// One connection keeps :memory: databases alive and serializes writers.
	sqldb.SetMaxOpenConns(1)
	sqldb.MapperFunc(ToSnakeCase)
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, errors.Wrap(err, "ping sqlite database")
	}
	if err := Migrate(sqldb); err != nil {
		sqldb.Close()
		return nil, err
	}
	if c == nil {
		c = &clock.Default{}
	}
	return &SQLite{sqldb: sqldb, clock: c}, nil
}

// Migrate applies every pending embedded migration to db.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "open embedded migrations")
	}
	driver, err := msqlite.WithInstance(db.DB, &msqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.sqldb.Close()
}
