package sqlite

import (
	"context"

	"github.com/edusage/sage"
)

// progressTable maps sage.LearningProgress onto the learning_progress schema.
var progressTable = Table[sage.LearningProgress]{
	Schema: sage.LearningProgressSchema,
	ID:     func(p sage.LearningProgress) int64 { return p.ID },
	SetID:  func(p *sage.LearningProgress, id int64) { p.ID = id },
	Bind: func(p sage.LearningProgress) ([]any, error) {
		return []any{p.StudentID, p.Subject, p.Topic, p.CompletionPercentage, p.PerformanceScore, p.LastAccessed}, nil
	},
	Scan: func(row rowScanner) (sage.LearningProgress, error) {
		var p sage.LearningProgress
		err := row.Scan(&p.ID, &p.StudentID, &p.Subject, &p.Topic, &p.CompletionPercentage, &p.PerformanceScore, &p.LastAccessed)
		return p, err
	},
}

// ProgressRepo is the LearningProgress repository: generic CRUD plus the
// indexed student and subject queries.
type ProgressRepo struct {
	*Repository[sage.LearningProgress]
}

// NewProgressRepo creates a ProgressRepo bound to db.
func NewProgressRepo(db *DB) *ProgressRepo {
	return &ProgressRepo{Repository: NewRepository(db, progressTable)}
}

// FindByStudentID returns all progress records for a student.
func (r *ProgressRepo) FindByStudentID(ctx context.Context, studentID int64) []sage.LearningProgress {
	return r.find(ctx, "find progress by student", "student_id = ?", studentID)
}

// FindBySubject returns progress records for a subject, optionally narrowed
// to one student. studentID <= 0 means no filter.
func (r *ProgressRepo) FindBySubject(ctx context.Context, subject string, studentID int64) []sage.LearningProgress {
	where := "subject = ?"
	args := []any{subject}
	if studentID > 0 {
		where += " AND student_id = ?"
		args = append(args, studentID)
	}
	return r.find(ctx, "find progress by subject", where, args...)
}

// FindCompletedTopics returns the student's completed topics. The completion
// predicate is applied in memory over FindByStudentID rather than pushed into
// the query, so its cost is linear in that student's total progress rows.
func (r *ProgressRepo) FindCompletedTopics(ctx context.Context, studentID int64) []sage.LearningProgress {
	var completed []sage.LearningProgress
	for _, p := range r.FindByStudentID(ctx, studentID) {
		if p.IsCompleted() {
			completed = append(completed, p)
		}
	}
	return completed
}
