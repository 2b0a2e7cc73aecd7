// Package sqlxrepos implements the core repositories on top of sqlx.
// Queries use "?" placeholders and are rebound to the driver's bindvar type.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/storage/database"
)

// trapErr maps "no rows" to `notFound` and driver errors to core storage errors.
func trapErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(database.TranslateError(err), msg)
}

// checkAffected returns `notFound` when an UPDATE/DELETE matched no row.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "getting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func count(db *sqlx.DB, query string, args ...interface{}) (int, error) {
	var n int
	if err := db.Get(&n, db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(database.TranslateError(err), "counting rows")
	}
	return n, nil
}

func orderBy(orderings []core.DBOrdering, defaults ...string) string {
	clauses := make([]string, 0, len(orderings)+len(defaults))
	for _, ord := range orderings {
		clauses = append(clauses, ord.String())
	}
	clauses = append(clauses, defaults...)
	return " ORDER BY " + strings.Join(clauses, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching `s` anywhere, to use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
