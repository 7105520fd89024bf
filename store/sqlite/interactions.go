package sqlite

import (
	"context"

	"github.com/edusage/sage"
)

// interactionTable maps sage.Interaction onto the interactions schema.
var interactionTable = Table[sage.Interaction]{
	Schema: sage.InteractionSchema,
	ID:     func(i sage.Interaction) int64 { return i.ID },
	SetID:  func(i *sage.Interaction, id int64) { i.ID = id },
	Bind: func(i sage.Interaction) ([]any, error) {
		return []any{i.StudentID, i.InputType, i.InputContent, i.AgentResponse, i.Timestamp, i.SessionID}, nil
	},
	Scan: func(row rowScanner) (sage.Interaction, error) {
		var i sage.Interaction
		err := row.Scan(&i.ID, &i.StudentID, &i.InputType, &i.InputContent, &i.AgentResponse, &i.Timestamp, &i.SessionID)
		return i, err
	},
}

// InteractionRepo is the Interaction repository: generic CRUD plus the
// indexed student, session, and multimodal queries.
type InteractionRepo struct {
	*Repository[sage.Interaction]
}

// NewInteractionRepo creates an InteractionRepo bound to db.
func NewInteractionRepo(db *DB) *InteractionRepo {
	return &InteractionRepo{Repository: NewRepository(db, interactionTable)}
}

// FindByStudentID returns all interactions recorded for a student.
func (r *InteractionRepo) FindByStudentID(ctx context.Context, studentID int64) []sage.Interaction {
	return r.find(ctx, "find interactions by student", "student_id = ?", studentID)
}

// FindBySessionID returns all interactions within one session.
func (r *InteractionRepo) FindBySessionID(ctx context.Context, sessionID string) []sage.Interaction {
	return r.find(ctx, "find interactions by session", "session_id = ?", sessionID)
}

// FindMultimodal returns the union of voice and image interactions,
// optionally narrowed to one student. studentID <= 0 means no filter.
func (r *InteractionRepo) FindMultimodal(ctx context.Context, studentID int64) []sage.Interaction {
	where := "input_type IN (?, ?)"
	args := []any{sage.InputVoice, sage.InputImage}
	if studentID > 0 {
		where += " AND student_id = ?"
		args = append(args, studentID)
	}
	return r.find(ctx, "find multimodal interactions", where, args...)
}
