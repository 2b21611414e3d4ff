// Package sqlxrepos implements the repositories on top of a SQL database (postgres, sqlite for tests).
// Queries are written with "?" bindvars and rebound for the driver in use.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
)

var errNoRowsAffected = errors.New("no rows affected")

// where accumulates AND-ed conditions and their args.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// search adds a case-insensitive LIKE match on any of cols.
func (w *where) search(term string, cols ...string) {
	if term == "" {
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	ors := make([]string, 0, len(cols))
	for _, col := range cols {
		ors = append(ors, "LOWER("+col+") LIKE ?")
		w.args = append(w.args, like)
	}
	w.conds = append(w.conds, "("+strings.Join(ors, " OR ")+")")
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders cleaned orderings, ending with the primary key so that pages never overlap.
// Field names are column names whitelisted by the services.
func orderBy(ordering []core.DBOrdering) string {
	ordering = core.WithTieBreaker(ordering, "id")
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func limitOffset(page core.PageRequest) (string, []interface{}) {
	if page.PerPage <= 0 {
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []interface{}{page.PerPage, page.Offset()}
}

// queryPage runs the count and the paged select of `SELECT cols FROM from` with w applied.
func queryPage(ctx context.Context, db *sqlx.DB, dest interface{}, cols, from string, w *where, page core.PageRequest, ordering []core.DBOrdering) (int, error) {
	var total int
	countQ := db.Rebind("SELECT COUNT(*) FROM " + from + w.String())
	if err := db.GetContext(ctx, &total, countQ, w.args...); err != nil {
		return 0, errors.Wrap(connErr(err), "counting rows")
	}

	limit, limitArgs := limitOffset(page)
	q := db.Rebind("SELECT " + cols + " FROM " + from + w.String() + orderBy(ordering) + limit)
	args := append(append([]interface{}{}, w.args...), limitArgs...)
	if err := db.SelectContext(ctx, dest, q, args...); err != nil {
		return 0, errors.Wrap(err, "selecting rows")
	}
	return total, nil
}

// getOne runs a single row select, mapping sql.ErrNoRows to notFound.
func getOne(ctx context.Context, db *sqlx.DB, dest interface{}, notFound error, query string, args ...interface{}) error {
	err := db.GetContext(ctx, dest, db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return connErr(err)
}

// connErr turns the errors of a closed pool into a shutdown request.
func connErr(err error) error {
	if err != nil && (errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "sql: database is closed")) {
		return core.NewShutdownError(err.Error())
	}
	return err
}

// execOne runs a statement expected to touch exactly one row.
func execOne(ctx context.Context, db sqlx.ExtContext, notFound error, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// inTx runs fn in a transaction, rolled back when fn fails.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
