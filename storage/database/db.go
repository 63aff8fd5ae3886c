package database

import (
	"context"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/timeac/core"
	appfs "github.com/trezcool/timeac/fs"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite3"
)

// mockable funcs (for testing)
var gooseUpFunc = goose.UpContext

func dataSourceName(conf *core.Config) (string, error) {
	switch conf.Database.Engine {
	case EngineSQLite:
		q := make(url.Values)
		q.Set("_foreign_keys", "on")
		q.Set("_busy_timeout", "5000")
		return "file:" + conf.Database.Path + "?" + q.Encode(), nil
	case EnginePostgres:
		sslMode := "require"
		if conf.Database.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   EnginePostgres,
			User:     url.UserPassword(conf.Database.User, conf.Database.Password),
			Host:     conf.Database.Address(),
			Path:     conf.Database.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		return "", errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
}

// Open connects to the configured database and waits for it to be ready.
func Open(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	dsn, err := dataSourceName(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Database.Engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Database.Engine == EngineSQLite {
		// sqlite only handles one writer at a time
		db.SetMaxOpenConns(1)
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies every pending migration bundled in the app filesystem.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(appfs.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := gooseUpFunc(ctx, db.DB, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// Version returns the current migration version.
func Version(ctx context.Context, db *sqlx.DB) (int64, error) {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return 0, errors.Wrap(err, "setting migration dialect")
	}
	v, err := goose.GetDBVersionContext(ctx, db.DB)
	return v, errors.Wrap(err, "reading migration version")
}

// OpenMemory opens a migrated in-memory sqlite database, used by tests and local runs.
func OpenMemory(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open(EngineSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)
	if err = Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
