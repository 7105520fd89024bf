package sqlite

import (
	"context"

	"github.com/edusage/sage"
)

// studentTable maps sage.Student onto the students schema.
var studentTable = Table[sage.Student]{
	Schema: sage.StudentSchema,
	ID:     func(s sage.Student) int64 { return s.ID },
	SetID:  func(s *sage.Student, id int64) { s.ID = id },
	Bind: func(s sage.Student) ([]any, error) {
		return []any{s.Name, s.Email, s.LearningPreferences, s.CreatedAt, s.UpdatedAt}, nil
	},
	Scan: func(row rowScanner) (sage.Student, error) {
		var s sage.Student
		err := row.Scan(&s.ID, &s.Name, &s.Email, &s.LearningPreferences, &s.CreatedAt, &s.UpdatedAt)
		return s, err
	},
}

// StudentRepo is the Student repository: generic CRUD plus the indexed
// email and name queries.
type StudentRepo struct {
	*Repository[sage.Student]
}

// NewStudentRepo creates a StudentRepo bound to db.
func NewStudentRepo(db *DB) *StudentRepo {
	return &StudentRepo{Repository: NewRepository(db, studentTable)}
}

// FindByEmail returns the first student with exactly this email, or absent.
// Email is expected unique in practice but not enforced by the store.
func (r *StudentRepo) FindByEmail(ctx context.Context, email string) (sage.Student, bool) {
	return r.findFirst(ctx, "find student by email", "email = ?", email)
}

// FindByNamePattern returns all students whose name contains the pattern,
// case-insensitively (SQLite LIKE semantics).
func (r *StudentRepo) FindByNamePattern(ctx context.Context, pattern string) []sage.Student {
	return r.find(ctx, "find students by name", "name LIKE ?", "%"+pattern+"%")
}
