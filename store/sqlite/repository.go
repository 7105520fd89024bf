package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edusage/sage"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Table is the capability set that parameterizes a Repository over one entity
// kind: the schema, the identity accessors, and the column bind/scan pair.
// The generic repository needs nothing else about the entity.
type Table[T any] struct {
	Schema sage.Schema

	// ID reads the entity's identity; SetID assigns the engine-returned one.
	ID    func(e T) int64
	SetID func(e *T, id int64)

	// Bind produces the values for every non-identity column, in schema
	// order. Scan reads one full row (identity first) back into an entity.
	Bind func(e T) ([]any, error)
	Scan func(row rowScanner) (T, error)
}

// Repository provides generic CRUD over one entity table. Write failures
// (create, update, batch create, batch delete) are logged and returned as
// *sage.PersistError; read failures are logged and degrade to empty, absent,
// or zero results. Repositories hold no entity state between calls and are
// safe to share across goroutines to the same extent the DB is.
type Repository[T any] struct {
	db    *DB
	table Table[T]
	log   *slog.Logger

	cols       []string // non-identity column names, in schema order
	selectCols string   // "id, c1, c2, ..."
}

// NewRepository creates a Repository bound to db for the given table.
func NewRepository[T any](db *DB, table Table[T]) *Repository[T] {
	var cols []string
	for _, c := range table.Schema.Columns {
		if !c.PrimaryKey {
			cols = append(cols, c.Name)
		}
	}
	return &Repository[T]{
		db:         db,
		table:      table,
		log:        db.logger,
		cols:       cols,
		selectCols: "id, " + strings.Join(cols, ", "),
	}
}

// put is the single upsert primitive behind Create and Update: an
// INSERT OR REPLACE keyed by identity, with a NULL identity letting the
// engine assign a fresh one.
func (r *Repository[T]) put(ctx context.Context, tx *sql.Tx, e T) (int64, error) {
	vals, err := r.table.Bind(e)
	if err != nil {
		return 0, fmt.Errorf("bind %s: %w", r.table.Schema.Table, err)
	}

	var id any
	if v := r.table.ID(e); v > 0 {
		id = v
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.cols)+1), ", ")
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		r.table.Schema.Table, r.selectCols, placeholders)
	if r.db.debug&DebugStatements != 0 {
		r.log.Debug("sqlite: exec", "stmt", query)
	}

	res, err := tx.ExecContext(ctx, query, append([]any{id}, vals...)...)
	if err != nil {
		return 0, err
	}
	if id != nil {
		return r.table.ID(e), nil
	}
	return res.LastInsertId()
}

// Create persists a new entity and assigns the engine-returned identity onto
// the in-memory record.
func (r *Repository[T]) Create(ctx context.Context, e T) (T, error) {
	start := time.Now()
	var assigned int64
	err := r.db.scope(ctx, "create "+r.table.Schema.Table, func(tx *sql.Tx) error {
		id, err := r.put(ctx, tx, e)
		if err != nil {
			return err
		}
		assigned = id
		return nil
	})
	if err != nil {
		return e, &sage.PersistError{Entity: r.table.Schema.Table, Op: "create", Err: err}
	}
	r.table.SetID(&e, assigned)
	r.log.Debug("sqlite: create ok", "table", r.table.Schema.Table, "id", assigned, "duration", time.Since(start))
	return e, nil
}

// CreateMany persists a batch inside one transaction scope. This is the
// engine's batching, not a cross-entity ACID guarantee.
func (r *Repository[T]) CreateMany(ctx context.Context, es []T) ([]T, error) {
	start := time.Now()
	err := r.db.scope(ctx, "create many "+r.table.Schema.Table, func(tx *sql.Tx) error {
		for i := range es {
			id, err := r.put(ctx, tx, es[i])
			if err != nil {
				return err
			}
			r.table.SetID(&es[i], id)
		}
		return nil
	})
	if err != nil {
		return es, &sage.PersistError{Entity: r.table.Schema.Table, Op: "create many", Err: err}
	}
	r.log.Debug("sqlite: create many ok", "table", r.table.Schema.Table, "count", len(es), "duration", time.Since(start))
	return es, nil
}

// GetByID returns the entity with the given identity. Absence is not an
// error: the second return is false both for "not found" and for a logged
// read failure.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (T, bool) {
	var zero T
	db, err := r.db.conn()
	if err != nil {
		r.log.Error("sqlite: get by id failed", "table", r.table.Schema.Table, "id", id, "error", err)
		return zero, false
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", r.selectCols, r.table.Schema.Table)
	e, err := r.table.Scan(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false
	}
	if err != nil {
		r.log.Error("sqlite: get by id failed", "table", r.table.Schema.Table, "id", id, "error", err)
		return zero, false
	}
	return e, true
}

// GetAll returns every entity in the table, or an empty slice on a logged
// read failure.
func (r *Repository[T]) GetAll(ctx context.Context) []T {
	return r.find(ctx, "get all", "")
}

// Update re-persists the entity by identity (upsert: the same primitive as
// Create at the storage layer). An entity without an identity gets the
// engine-assigned one, same as Create.
func (r *Repository[T]) Update(ctx context.Context, e T) (T, error) {
	start := time.Now()
	var assigned int64
	err := r.db.scope(ctx, "update "+r.table.Schema.Table, func(tx *sql.Tx) error {
		id, err := r.put(ctx, tx, e)
		if err != nil {
			return err
		}
		assigned = id
		return nil
	})
	if err != nil {
		return e, &sage.PersistError{Entity: r.table.Schema.Table, Op: "update", Err: err}
	}
	r.table.SetID(&e, assigned)
	r.log.Debug("sqlite: update ok", "table", r.table.Schema.Table, "id", assigned, "duration", time.Since(start))
	return e, nil
}

// Delete removes the entity by identity. Best-effort by design: false for
// both "not found" and a logged engine failure, never an error.
func (r *Repository[T]) Delete(ctx context.Context, id int64) bool {
	db, err := r.db.conn()
	if err != nil {
		r.log.Error("sqlite: delete failed", "table", r.table.Schema.Table, "id", id, "error", err)
		return false
	}
	res, err := db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table.Schema.Table), id)
	if err != nil {
		r.log.Error("sqlite: delete failed", "table", r.table.Schema.Table, "id", id, "error", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// DeleteMany removes a batch of identities in one transaction scope.
// Returns false only on engine failure; absent identities do not fail the
// batch.
func (r *Repository[T]) DeleteMany(ctx context.Context, ids []int64) bool {
	if len(ids) == 0 {
		return true
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	err := r.db.scope(ctx, "delete many "+r.table.Schema.Table, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)",
				r.table.Schema.Table, strings.Join(placeholders, ",")), args...)
		return err
	})
	if err != nil {
		return false
	}
	r.log.Debug("sqlite: delete many ok", "table", r.table.Schema.Table, "count", len(ids))
	return true
}

// Count returns the number of entities, or 0 on a logged read failure.
func (r *Repository[T]) Count(ctx context.Context) int64 {
	db, err := r.db.conn()
	if err != nil {
		r.log.Error("sqlite: count failed", "table", r.table.Schema.Table, "error", err)
		return 0
	}
	var n int64
	if err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table.Schema.Table)).Scan(&n); err != nil {
		r.log.Error("sqlite: count failed", "table", r.table.Schema.Table, "error", err)
		return 0
	}
	return n
}

// find runs "build predicate, execute, on error log and return empty". The
// where clause is appended verbatim when non-empty. Every per-entity indexed
// query funnels through here.
func (r *Repository[T]) find(ctx context.Context, op, where string, args ...any) []T {
	start := time.Now()
	db, err := r.db.conn()
	if err != nil {
		r.log.Error("sqlite: "+op+" failed", "table", r.table.Schema.Table, "error", err)
		return nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s", r.selectCols, r.table.Schema.Table)
	if where != "" {
		query += " WHERE " + where
	}
	if r.db.debug&DebugStatements != 0 {
		r.log.Debug("sqlite: query", "stmt", query)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error("sqlite: "+op+" failed", "table", r.table.Schema.Table, "error", err)
		return nil
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		e, err := r.table.Scan(rows)
		if err != nil {
			r.log.Error("sqlite: "+op+" scan failed", "table", r.table.Schema.Table, "error", err)
			return nil
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("sqlite: "+op+" failed", "table", r.table.Schema.Table, "error", err)
		return nil
	}
	r.log.Debug("sqlite: "+op+" ok", "table", r.table.Schema.Table, "count", len(out), "duration", time.Since(start))
	return out
}

// findFirst is find with a single-row result: first match or absent.
func (r *Repository[T]) findFirst(ctx context.Context, op, where string, args ...any) (T, bool) {
	var zero T
	matches := r.find(ctx, op, where, args...)
	if len(matches) == 0 {
		return zero, false
	}
	return matches[0], true
}
