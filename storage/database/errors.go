package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/trezcool/gradeportal/core"
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgTooManyConnections  = "53300"
)

// TranslateError maps driver errors to the storage errors of the core package:
// constraint violations become core.ErrUniqueViolation / core.ErrForeignKeyViolation
// and connectivity failures become a core.UnavailableError. Other errors are returned as is.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePgCode(err, pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return translatePgCode(err, string(pqErr.Code))
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return core.ErrUniqueViolation
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return core.ErrForeignKeyViolation
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return core.NewUnavailableError(err)
		}
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return core.NewUnavailableError(err)
	}
	return err
}

func translatePgCode(err error, code string) error {
	switch {
	case code == pgUniqueViolation:
		return core.ErrUniqueViolation
	case code == pgForeignKeyViolation:
		return core.ErrForeignKeyViolation
	case code == pgTooManyConnections, strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P0"):
		return core.NewUnavailableError(err)
	}
	return err
}
