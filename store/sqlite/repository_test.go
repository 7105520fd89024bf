package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/edusage/sage"
)

func TestCreateAssignsIdentity(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewStudentRepo(db)

	s := sage.NewStudent("Ann", "ann@x.com")
	created, err := repo.Create(ctx, s)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Create did not assign an identity")
	}

	got, ok := repo.GetByID(ctx, created.ID)
	if !ok {
		t.Fatal("GetByID after Create: absent")
	}
	if got != created {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, created)
	}
}

func TestCreateThenUpdateRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewStudentRepo(db)

	s, err := repo.Create(ctx, sage.NewStudent("Ann", "ann@x.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := s.UpdatedAt

	s.UpdatePreferences("visual")
	if s.UpdatedAt <= before {
		t.Fatalf("UpdatedAt did not advance: %d -> %d", before, s.UpdatedAt)
	}
	if _, err := repo.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, ok := repo.GetByID(ctx, s.ID)
	if !ok {
		t.Fatal("GetByID after Update: absent")
	}
	if got.LearningPreferences != "visual" {
		t.Errorf("preferences = %q", got.LearningPreferences)
	}
	if got.UpdatedAt != s.UpdatedAt {
		t.Errorf("UpdatedAt = %d, want %d", got.UpdatedAt, s.UpdatedAt)
	}
}

func TestUpdateAssignsIdentityToFreshEntity(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProgressRepo(db)

	// Update on a record never persisted behaves like Create at the storage
	// layer: the engine-assigned identity must come back on the record.
	first, err := repo.Update(ctx, sage.NewLearningProgress(1, "Math", "Algebra"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Update did not assign an identity to a fresh record")
	}

	first.UpdateProgress(40, 70)
	second, err := repo.Update(ctx, first)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("identity changed on update: %d -> %d", first.ID, second.ID)
	}
	if n := repo.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestGetByIDAbsent(t *testing.T) {
	db := testDB(t)
	repo := NewStudentRepo(db)

	if _, ok := repo.GetByID(context.Background(), 9999); ok {
		t.Error("expected absent for unknown identity")
	}
}

func TestDeleteMissingReturnsFalse(t *testing.T) {
	db := testDB(t)
	repo := NewStudentRepo(db)

	if repo.Delete(context.Background(), 12345) {
		t.Error("Delete of a non-existent id should return false")
	}
}

func TestDeleteExisting(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewStudentRepo(db)

	s, err := repo.Create(ctx, sage.NewStudent("Bob", "bob@x.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !repo.Delete(ctx, s.ID) {
		t.Fatal("Delete of existing id should return true")
	}
	if _, ok := repo.GetByID(ctx, s.ID); ok {
		t.Error("record still present after Delete")
	}
}

func TestCreateManyAndCount(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewInteractionRepo(db)

	batch := []sage.Interaction{
		sage.NewInteraction(1, sage.InputText, "q1", "a1", "s1"),
		sage.NewInteraction(1, sage.InputVoice, "q2", "a2", "s1"),
		sage.NewInteraction(2, sage.InputText, "q3", "a3", "s2"),
	}
	created, err := repo.CreateMany(ctx, batch)
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	for i, in := range created {
		if in.ID == 0 {
			t.Errorf("entity %d missing identity", i)
		}
	}
	if n := repo.Count(ctx); n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestDeleteMany(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewInteractionRepo(db)

	created, err := repo.CreateMany(ctx, []sage.Interaction{
		sage.NewInteraction(1, sage.InputText, "q1", "a1", "s1"),
		sage.NewInteraction(1, sage.InputText, "q2", "a2", "s1"),
	})
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	// Absent ids do not fail the batch.
	if !repo.DeleteMany(ctx, []int64{created[0].ID, created[1].ID, 777}) {
		t.Fatal("DeleteMany should succeed")
	}
	if n := repo.Count(ctx); n != 0 {
		t.Errorf("Count after DeleteMany = %d, want 0", n)
	}

	if !repo.DeleteMany(ctx, nil) {
		t.Error("empty DeleteMany should be a no-op success")
	}
}

func TestGetAll(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProgressRepo(db)

	if got := repo.GetAll(ctx); len(got) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(got))
	}

	for _, topic := range []string{"Algebra", "Geometry"} {
		if _, err := repo.Create(ctx, sage.NewLearningProgress(1, "Math", topic)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if got := repo.GetAll(ctx); len(got) != 2 {
		t.Errorf("GetAll = %d rows, want 2", len(got))
	}
}

func TestWritesFailLoudOnClosedHandle(t *testing.T) {
	db := testDB(t)
	repo := NewStudentRepo(db)
	db.Close()

	_, err := repo.Create(context.Background(), sage.NewStudent("Ann", "ann@x.com"))
	var perr *sage.PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if !errors.Is(err, sage.ErrNotInitialized) {
		t.Errorf("expected wrapped ErrNotInitialized, got %v", err)
	}
}

func TestReadsFailQuietOnClosedHandle(t *testing.T) {
	db := testDB(t)
	students := NewStudentRepo(db)
	db.Close()
	ctx := context.Background()

	if _, ok := students.GetByID(ctx, 1); ok {
		t.Error("GetByID on closed handle should be absent")
	}
	if got := students.GetAll(ctx); len(got) != 0 {
		t.Error("GetAll on closed handle should be empty")
	}
	if n := students.Count(ctx); n != 0 {
		t.Errorf("Count on closed handle = %d, want 0", n)
	}
	if students.Delete(ctx, 1) {
		t.Error("Delete on closed handle should return false")
	}
}
