package app

import (
	"context"
	"strings"
	"testing"

	"github.com/edusage/sage"
	"github.com/edusage/sage/internal/config"
	"github.com/edusage/sage/store/sqlite"
)

// routeProvider answers routing prompts with a fixed agent name and
// everything else with a canned reply.
type routeProvider struct {
	route string
	reply string
	calls []string
}

func (p *routeProvider) Name() string { return "fake" }
func (p *routeProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.calls = append(p.calls, prompt)
	if strings.Contains(prompt, "query router") {
		return p.route, nil
	}
	return p.reply, nil
}

func newTestApp(t *testing.T, provider sage.Provider) *App {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(t.TempDir()), sage.Schemas())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(config.Default(), Deps{DB: db, Provider: provider})
}

func TestEnrollCreatesAndDeduplicates(t *testing.T) {
	a := newTestApp(t, &routeProvider{})
	ctx := context.Background()

	s, err := a.Enroll(ctx, "Ann", "ann@x.com")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if s.ID == 0 {
		t.Fatal("enrolled student missing identity")
	}

	again, err := a.Enroll(ctx, "Ann Again", "ann@x.com")
	if err != nil {
		t.Fatalf("second Enroll: %v", err)
	}
	if again.ID != s.ID {
		t.Errorf("same email should reuse the record: %d vs %d", again.ID, s.ID)
	}

	if _, err := a.Enroll(ctx, "", "nobody@x.com"); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := a.Enroll(ctx, "Bob", "not-an-email"); err == nil {
		t.Error("malformed email should be rejected")
	}
}

func TestAskAnswersAndRecordsInteraction(t *testing.T) {
	p := &routeProvider{route: "explainer", reply: "A fraction is part of a whole."}
	a := newTestApp(t, p)
	ctx := context.Background()

	s, err := a.Enroll(ctx, "Ann", "ann@x.com")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	res, err := a.Ask(ctx, s.ID, "", "What is a fraction?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Output != "A fraction is part of a whole." {
		t.Errorf("Output = %q", res.Output)
	}
	if res.Agent != "explainer" {
		t.Errorf("answered by %q, want explainer", res.Agent)
	}

	logged := a.interactions.FindByStudentID(ctx, s.ID)
	if len(logged) != 1 {
		t.Fatalf("expected 1 recorded interaction, got %d", len(logged))
	}
	if logged[0].InputContent != "What is a fraction?" || logged[0].AgentResponse != res.Output {
		t.Errorf("interaction mismatch: %+v", logged[0])
	}
	if logged[0].SessionID == "" {
		t.Error("Ask should mint a session id when none is given")
	}
}

func TestAskHistoryComesFromStore(t *testing.T) {
	p := &routeProvider{route: "history"}
	a := newTestApp(t, p)
	ctx := context.Background()

	s, _ := a.Enroll(ctx, "Ann", "ann@x.com")
	session := sage.NewSessionID()
	a.interactions.Create(ctx, sage.NewInteraction(s.ID, sage.InputText, "What is 2+2?", "4", session))

	res, err := a.Ask(ctx, s.ID, session, "What did I ask before?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Agent != "history" {
		t.Fatalf("answered by %q, want history", res.Agent)
	}
	if !strings.Contains(res.Output, "What is 2+2?") || !strings.Contains(res.Output, "4") {
		t.Errorf("history answer missing prior exchange:\n%s", res.Output)
	}
}

func TestRecordProgressCreatesThenUpdates(t *testing.T) {
	a := newTestApp(t, &routeProvider{})
	ctx := context.Background()

	s, _ := a.Enroll(ctx, "Ann", "ann@x.com")

	first, err := a.RecordProgress(ctx, s.ID, "Math", "Algebra", 40, 70)
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if first.ID == 0 || first.CompletionPercentage != 40 {
		t.Fatalf("first record: %+v", first)
	}

	second, err := a.RecordProgress(ctx, s.ID, "Math", "Algebra", 150, 90)
	if err != nil {
		t.Fatalf("second RecordProgress: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("same topic should update in place: %d vs %d", second.ID, first.ID)
	}
	if second.CompletionPercentage != 100 {
		t.Errorf("completion should clamp to 100, got %v", second.CompletionPercentage)
	}
	if n := a.progress.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestStatsReportsCounts(t *testing.T) {
	a := newTestApp(t, &routeProvider{})
	ctx := context.Background()

	a.Enroll(ctx, "Ann", "ann@x.com")
	a.Enroll(ctx, "Bob", "bob@x.com")

	st := a.Stats(ctx)
	if st["students"] != int64(2) {
		t.Errorf("students = %v, want 2", st["students"])
	}
	if st["healthy"] != true || st["initialized"] != true {
		t.Errorf("store should be healthy: %+v", st)
	}
}
