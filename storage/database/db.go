package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/trezcool/gradeportal/core"
)

// Supported engines (DatabaseConfig.Engine).
const (
	EnginePostgres = "postgres" // lib/pq
	EnginePgx      = "pgx"      // jackc/pgx stdlib
	EngineSQLite   = "sqlite"   // modernc.org/sqlite
)

//go:embed migrations
var migrationsFS embed.FS

var pingTimeout = 10 * time.Second

func isPostgres(engine string) bool {
	return engine == EnginePostgres || engine == EnginePgx
}

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	engine := conf.Database.Engine
	switch {
	case engine == EngineSQLite:
		return OpenSQLite(dbName)
	case !isPostgres(engine):
		return nil, errors.Errorf("unsupported database engine %q", engine)
	}

	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	db, err := sql.Open(engine, u.String())
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, engine), nil
}

// Open opens the app database.
func Open(conf *core.Config) (*sqlx.DB, error) {
	return open(conf.Database.Name, false, conf)
}

// OpenSQLite opens a SQLite database at `path` (":memory:" for an in-memory one) with foreign keys enforced.
func OpenSQLite(path string) (*sqlx.DB, error) {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	db, err := sql.Open(EngineSQLite, "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	// a single connection: each new connection to ":memory:" is a new, empty database
	db.SetMaxOpenConns(1)
	return sqlx.NewDb(db, EngineSQLite), nil
}

// Ping waits for the database to be ready, backing off exponentially between attempts.
func Ping(ctx context.Context, db *sqlx.DB) error {
	_, err := backoff.Retry(
		ctx,
		func() (struct{}, error) { return struct{}{}, db.PingContext(ctx) },
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(pingTimeout),
	)
	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func exists(db *sqlx.DB, query, name string) (bool, error) {
	var found bool
	if err := db.Get(&found, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return found, nil
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf(
			"CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'",
			quoteIdent(conf.Database.User), strings.ReplaceAll(conf.Database.Password, "'", "''"),
		)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec("CREATE DATABASE " + quoteIdent(conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the app's Postgres role & database. SQLite databases are created on open.
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	if !isPostgres(conf.Database.Engine) {
		return nil
	}

	// connect as admin
	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = Ping(ctx, db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()

	if err = createDB(appDB, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// SetUpMigrations points goose at the embedded migrations of the DB engine and returns their directory.
func SetUpMigrations(engine string) (string, error) {
	goose.SetBaseFS(migrationsFS)
	if isPostgres(engine) {
		return "migrations/postgres", goose.SetDialect("postgres")
	}
	if engine == EngineSQLite {
		return "migrations/sqlite", goose.SetDialect("sqlite3")
	}
	return "", errors.Errorf("unsupported database engine %q", engine)
}

// Migrate applies all pending migrations.
func Migrate(db *sqlx.DB) error {
	dir, err := SetUpMigrations(db.DriverName())
	if err != nil {
		return err
	}
	if err = goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
