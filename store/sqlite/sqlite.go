// Package sqlite implements the sage entity store on pure-Go SQLite with
// in-process brute-force vector search. Zero CGO required.
//
// A DB is an explicitly constructed handle owned by the application's
// composition root and injected into repositories. At most one open handle
// per directory is enforced at runtime.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/edusage/sage"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Debug flag bits for Config.DebugFlags.
const (
	// DebugStatements logs every executed statement at debug level.
	DebugStatements = 1 << 0
)

// Config carries the embedded-engine settings. All fields are passed to the
// engine at open time and are inert afterwards.
type Config struct {
	// Dir is the directory holding the database file. Created if absent.
	Dir string
	// MaxSizeKB bounds the database file size, enforced via max_page_count.
	MaxSizeKB int64
	// MaxReaders bounds the concurrent read connections.
	MaxReaders int
	// DebugFlags is a bitmask of Debug* flags.
	DebugFlags int
}

// DefaultConfig returns the standard engine settings: 1GB size cap and
// 126 readers.
func DefaultConfig(dir string) Config {
	return Config{Dir: dir, MaxSizeKB: 1024 * 1024, MaxReaders: 126}
}

// dbFileName is the SQLite file created inside Config.Dir.
const dbFileName = "sage.db"

// open handles by directory. Guards the one-handle-per-directory invariant.
var (
	openDirsMu sync.Mutex
	openDirs   = map[string]*DB{}
)

// Option configures a DB.
type Option func(*DB)

// WithLogger sets a structured logger for the store. When set, the store
// emits debug logs for every operation including timing, row counts, and key
// parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) { d.logger = l }
}

// DB is a handle to the embedded, file-backed entity store. Embeddings are
// stored as JSON text and vector search runs in-process using brute-force
// cosine similarity. A DB is safe for concurrent use; writers serialize on
// the engine's locking (WAL mode).
type DB struct {
	db      *sql.DB
	dir     string
	path    string
	schemas []sage.Schema
	logger  *slog.Logger
	debug   int

	mu     sync.Mutex
	closed bool
}

// Stats is a read-only snapshot of store state. Every field defaults to
// false/0/empty; Error is populated instead of returning an error.
type Stats struct {
	Initialized bool   `json:"is_initialized"`
	Path        string `json:"database_path"`
	SizeBytes   int64  `json:"database_size"`
	Healthy     bool   `json:"connection_healthy"`
	Error       string `json:"error,omitempty"`
}

// Open creates the backing directory if absent, opens the database bound to
// the given entity schemas, generates tables and indexes from them, and
// returns the handle. Opening a directory that already has a live handle
// fails: callers share the one handle instead of reopening.
//
// Open failure is always surfaced as a *sage.InitError wrapping the cause.
func Open(ctx context.Context, cfg Config, schemas []sage.Schema, opts ...Option) (*DB, error) {
	if cfg.Dir == "" {
		cfg = DefaultConfig("data/sage")
	}

	d := &DB{
		dir:     cfg.Dir,
		path:    filepath.Join(cfg.Dir, dbFileName),
		schemas: schemas,
		logger:  nopLogger,
		debug:   cfg.DebugFlags,
	}
	for _, o := range opts {
		o(d)
	}

	openDirsMu.Lock()
	if _, live := openDirs[cfg.Dir]; live {
		openDirsMu.Unlock()
		return nil, &sage.InitError{Dir: cfg.Dir, Err: fmt.Errorf("directory already has an open handle")}
	}
	openDirs[cfg.Dir] = d
	openDirsMu.Unlock()

	if err := d.open(ctx, cfg); err != nil {
		d.unregister()
		d.logger.Error("sqlite: open failed", "dir", cfg.Dir, "error", err)
		return nil, &sage.InitError{Dir: cfg.Dir, Err: err}
	}

	d.logger.Info("sqlite: store opened", "path", d.path, "schemas", len(schemas))
	return d, nil
}

func (d *DB) open(ctx context.Context, cfg Config) error {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", d.path)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		return fmt.Errorf("open driver: %w", err)
	}
	d.db = db

	readers := cfg.MaxReaders
	if readers < 1 {
		readers = 1
	}
	// WAL gives concurrent readers with a single serialized writer, the
	// "many readers, coordinated writers" contract of the embedded engine.
	db.SetMaxOpenConns(readers)

	pragmas := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = OFF`,
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("apply pragma: %w", err)
		}
	}

	if cfg.MaxSizeKB > 0 {
		var pageSize int64
		if err := db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&pageSize); err != nil {
			return fmt.Errorf("read page size: %w", err)
		}
		if pageSize > 0 {
			maxPages := cfg.MaxSizeKB * 1024 / pageSize
			if _, err := db.ExecContext(ctx, fmt.Sprintf(`PRAGMA max_page_count = %d`, maxPages)); err != nil {
				return fmt.Errorf("apply size limit: %w", err)
			}
		}
	}

	for _, schema := range d.schemas {
		for _, stmt := range schemaDDL(schema) {
			if d.debug&DebugStatements != 0 {
				d.logger.Debug("sqlite: ddl", "stmt", stmt)
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create table %s: %w", schema.Table, err)
			}
		}
	}
	return nil
}

// schemaDDL generates CREATE TABLE and CREATE INDEX statements from a schema
// value. The mapping is data: adding an entity means declaring a sage.Schema,
// not writing SQL.
func schemaDDL(s sage.Schema) []string {
	cols := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		def := c.Name + " " + c.Type
		if c.PrimaryKey {
			def += " PRIMARY KEY AUTOINCREMENT"
		}
		cols = append(cols, def)
	}
	ddl := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.Table, strings.Join(cols, ", ")),
	}
	for _, c := range s.Columns {
		if c.Indexed {
			ddl = append(ddl, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
				s.Table, c.Name, s.Table, c.Name))
		}
	}
	return ddl
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// conn returns the live connection pool, or sage.ErrNotInitialized after
// Close.
func (d *DB) conn() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.db == nil {
		return nil, sage.ErrNotInitialized
	}
	return d.db, nil
}

// scope runs fn inside a transaction and funnels every failure through one
// logging point. The error is returned unchanged; scope never swallows it.
func (d *DB) scope(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	db, err := d.conn()
	if err != nil {
		d.logger.Error("sqlite: "+op+" failed", "error", err)
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		d.logger.Error("sqlite: "+op+" failed", "error", err)
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		d.logger.Error("sqlite: "+op+" failed", "error", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		d.logger.Error("sqlite: "+op+" commit failed", "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the handle and clears the one-handle-per-directory slot.
// Close failures are logged and suppressed: the resource is being discarded
// either way. Closing twice is a no-op.
func (d *DB) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	db := d.db
	d.db = nil
	d.mu.Unlock()

	d.unregister()
	if db != nil {
		if err := db.Close(); err != nil {
			d.logger.Error("sqlite: close failed", "error", err)
		} else {
			d.logger.Info("sqlite: store closed", "path", d.path)
		}
	}
	return nil
}

func (d *DB) unregister() {
	openDirsMu.Lock()
	if openDirs[d.dir] == d {
		delete(openDirs, d.dir)
	}
	openDirsMu.Unlock()
}

// Healthy reports whether a trivial size query succeeds.
func (d *DB) Healthy(ctx context.Context) bool {
	db, err := d.conn()
	if err != nil {
		d.logger.Error("sqlite: health check failed", "error", err)
		return false
	}
	var pages int64
	if err := db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&pages); err != nil {
		d.logger.Error("sqlite: health check failed", "error", err)
		return false
	}
	return true
}

// Stats returns a snapshot of store state. It always returns a value and
// never panics; on any internal failure the boolean and numeric fields stay
// at their zero values and Error carries the cause.
func (d *DB) Stats(ctx context.Context) Stats {
	start := time.Now()

	if _, err := d.conn(); err != nil {
		return Stats{Path: d.path, Error: err.Error()}
	}

	st := Stats{Initialized: true, Path: d.path}
	if fi, err := os.Stat(d.path); err == nil {
		st.SizeBytes = fi.Size()
	}
	st.Healthy = d.Healthy(ctx)
	if !st.Healthy {
		st.Error = "health check failed"
	}
	d.logger.Debug("sqlite: stats", "size_bytes", st.SizeBytes, "healthy", st.Healthy, "duration", time.Since(start))
	return st
}

// nopLogger discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
