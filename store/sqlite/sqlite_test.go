package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/edusage/sage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DefaultConfig(t.TempDir()), sage.Schemas())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	db, err := Open(context.Background(), DefaultConfig(dir), sage.Schemas())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if db.Path() != filepath.Join(dir, "sage.db") {
		t.Errorf("unexpected path %q", db.Path())
	}
}

func TestOpenIsReopenSafe(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(ctx, DefaultConfig(dir), sage.Schemas())
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A closed directory can be opened again; the DDL is idempotent.
	db2, err := Open(ctx, DefaultConfig(dir), sage.Schemas())
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	db2.Close()
}

func TestOpenRejectsSecondHandle(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(ctx, DefaultConfig(dir), sage.Schemas())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	_, err = Open(ctx, DefaultConfig(dir), sage.Schemas())
	var initErr *sage.InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected InitError for duplicate handle, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestHealthy(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if !db.Healthy(ctx) {
		t.Error("open store should be healthy")
	}

	db.Close()
	if db.Healthy(ctx) {
		t.Error("closed store should not be healthy")
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	st := db.Stats(ctx)
	if !st.Initialized || !st.Healthy {
		t.Errorf("open store stats: %+v", st)
	}
	if st.Path != db.Path() {
		t.Errorf("stats path = %q, want %q", st.Path, db.Path())
	}
	if st.SizeBytes <= 0 {
		t.Errorf("expected non-zero database size, got %d", st.SizeBytes)
	}
	if st.Error != "" {
		t.Errorf("unexpected error field: %q", st.Error)
	}
}

func TestStatsOnClosedHandle(t *testing.T) {
	db := testDB(t)
	db.Close()

	st := db.Stats(context.Background())
	if st.Initialized || st.Healthy {
		t.Errorf("closed store stats: %+v", st)
	}
	if st.Error == "" {
		t.Error("expected a populated error field")
	}
}

func TestSchemaDDL(t *testing.T) {
	ddl := schemaDDL(sage.CurriculumContentSchema)
	if len(ddl) != 4 { // 1 table + 3 indexed columns
		t.Fatalf("expected 4 statements, got %d: %v", len(ddl), ddl)
	}
	want := "CREATE TABLE IF NOT EXISTS curriculum_content (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, content TEXT, subject TEXT, difficulty_level INTEGER, content_type TEXT, created_at INTEGER, updated_at INTEGER, vector_embedding TEXT)"
	if ddl[0] != want {
		t.Errorf("table DDL mismatch:\n got %s\nwant %s", ddl[0], want)
	}
}
