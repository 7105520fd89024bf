// Package app wires the tutor together: one store handle, the typed
// repositories on top of it, the agent tree that answers student queries, and
// the curriculum ingest pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edusage/sage"
	"github.com/edusage/sage/ingest"
	"github.com/edusage/sage/internal/config"
	"github.com/edusage/sage/observer"
	"github.com/edusage/sage/store/sqlite"
)

// Deps holds injected dependencies for the App.
type Deps struct {
	DB          *sqlite.DB
	Provider    sage.Provider
	Embed       ingest.EmbedFunc
	Instruments *observer.Instruments
	Logger      *slog.Logger
}

// App is the tutor application. It owns the repositories bound to the single
// store handle and the agent tree that serves student queries.
type App struct {
	students     *sqlite.StudentRepo
	interactions *sqlite.InteractionRepo
	progress     *sqlite.ProgressRepo
	curriculum   *sqlite.CurriculumRepo

	tutor    sage.Agent
	ingestor *ingest.Ingestor
	db       *sqlite.DB
	inst     *observer.Instruments
	log      *slog.Logger
	cfg      config.Config
}

// New creates the App: repositories, the tutor agent tree, and the ingest
// pipeline, all bound to the one store handle in deps.
func New(cfg config.Config, deps Deps) *App {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	a := &App{
		students:     sqlite.NewStudentRepo(deps.DB),
		interactions: sqlite.NewInteractionRepo(deps.DB),
		progress:     sqlite.NewProgressRepo(deps.DB),
		curriculum:   sqlite.NewCurriculumRepo(deps.DB),
		db:           deps.DB,
		inst:         deps.Instruments,
		log:          log,
		cfg:          cfg,
	}

	a.ingestor = ingest.NewIngestor(a.curriculum, deps.Embed, ingest.WithLogger(log))

	tutor := a.buildTutor(deps.Provider, deps.Embed)
	if deps.Instruments != nil {
		a.tutor = observer.WrapAgent(tutor, deps.Instruments)
	} else {
		a.tutor = tutor
	}
	return a
}

// Enroll registers a student, reusing an existing record with the same email.
func (a *App) Enroll(ctx context.Context, name, email string) (sage.Student, error) {
	if problems := sage.ValidateStudent(sage.NewStudent(name, email)); len(problems) > 0 {
		return sage.Student{}, fmt.Errorf("invalid student: %s", problems[0])
	}
	if existing, ok := a.students.FindByEmail(ctx, email); ok {
		return existing, nil
	}
	s, err := a.students.Create(ctx, sage.NewStudent(name, email))
	a.recordOp(ctx, "create student", err == nil)
	return s, err
}

// Ask routes one student query through the tutor tree and records the
// exchange as an Interaction. A failed interaction write is logged and does
// not void the answer.
func (a *App) Ask(ctx context.Context, studentID int64, sessionID, input string) (sage.Result, error) {
	if sessionID == "" {
		sessionID = sage.NewSessionID()
	}
	res, err := a.tutor.Execute(ctx, sage.Task{Input: input, SessionID: sessionID, StudentID: studentID})
	if err != nil {
		return sage.Result{}, err
	}

	in := sage.NewInteraction(studentID, sage.InputText, input, res.Output, sessionID)
	if _, err := a.interactions.Create(ctx, in); err != nil {
		a.log.Warn("app: interaction not recorded", "student_id", studentID, "error", err)
		a.recordOp(ctx, "create interaction", false)
	} else {
		a.recordOp(ctx, "create interaction", true)
	}
	return res, nil
}

// RecordProgress upserts a progress row for the student, creating it on first
// contact with the topic.
func (a *App) RecordProgress(ctx context.Context, studentID int64, subject, topic string, completion, performance float64) (sage.LearningProgress, error) {
	var row sage.LearningProgress
	found := false
	for _, p := range a.progress.FindBySubject(ctx, subject, studentID) {
		if p.Topic == topic {
			row, found = p, true
			break
		}
	}
	if !found {
		row = sage.NewLearningProgress(studentID, subject, topic)
	}
	row.UpdateProgress(completion, performance)

	if problems := sage.ValidateLearningProgress(row); len(problems) > 0 {
		return sage.LearningProgress{}, fmt.Errorf("invalid progress: %s", problems[0])
	}
	saved, err := a.progress.Update(ctx, row)
	a.recordOp(ctx, "update progress", err == nil)
	return saved, err
}

// IngestFile imports one curriculum document into the store.
func (a *App) IngestFile(ctx context.Context, content []byte, filename, subject string, difficulty int) (ingest.IngestResult, error) {
	res, err := a.ingestor.IngestFile(ctx, content, filename, subject, difficulty)
	if err != nil {
		return res, err
	}
	if a.inst != nil {
		a.inst.RecordIngest(ctx, subject, res.ChunkCount)
	}
	return res, nil
}

// Healthy reports whether the underlying store answers queries.
func (a *App) Healthy(ctx context.Context) bool { return a.db.Healthy(ctx) }

// Stats returns store diagnostics plus per-entity row counts.
func (a *App) Stats(ctx context.Context) map[string]any {
	st := a.db.Stats(ctx)
	return map[string]any{
		"initialized":        st.Initialized,
		"healthy":            st.Healthy,
		"path":               st.Path,
		"size_bytes":         st.SizeBytes,
		"error":              st.Error,
		"students":           a.students.Count(ctx),
		"interactions":       a.interactions.Count(ctx),
		"learning_progress":  a.progress.Count(ctx),
		"curriculum_content": a.curriculum.Count(ctx),
	}
}

func (a *App) recordOp(ctx context.Context, op string, ok bool) {
	if a.inst != nil {
		a.inst.RecordStoreOp(ctx, op, ok)
	}
}
