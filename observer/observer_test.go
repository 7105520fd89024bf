package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/edusage/sage"
)

type stubAgent struct {
	result sage.Result
	err    error
	calls  int
}

func (s *stubAgent) Name() string        { return "stub" }
func (s *stubAgent) Description() string { return "a stub agent" }
func (s *stubAgent) Execute(_ context.Context, _ sage.Task) (sage.Result, error) {
	s.calls++
	return s.result, s.err
}

// newInstruments against the global (no-op) providers still returns working
// instruments; Init is not required for tests.
func testInstruments(t *testing.T) *Instruments {
	t.Helper()
	inst, err := newInstruments()
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return inst
}

func TestWrapAgentPassesThroughResult(t *testing.T) {
	inner := &stubAgent{result: sage.Result{Output: "answer", Agent: "stub"}}
	wrapped := WrapAgent(inner, testInstruments(t))

	if wrapped.Name() != "stub" || wrapped.Description() != "a stub agent" {
		t.Errorf("identity not forwarded: %s / %s", wrapped.Name(), wrapped.Description())
	}

	got, err := wrapped.Execute(context.Background(), sage.Task{Input: "q"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Output != "answer" || got.Agent != "stub" {
		t.Errorf("result altered by wrapper: %+v", got)
	}
	if inner.calls != 1 {
		t.Errorf("inner agent called %d times", inner.calls)
	}
}

func TestWrapAgentPassesThroughError(t *testing.T) {
	wantErr := errors.New("provider down")
	wrapped := WrapAgent(&stubAgent{err: wantErr}, testInstruments(t))

	_, err := wrapped.Execute(context.Background(), sage.Task{Input: "q"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestRecordHelpersDoNotPanic(t *testing.T) {
	inst := testInstruments(t)
	ctx := context.Background()
	inst.RecordStoreOp(ctx, "create student", true)
	inst.RecordStoreOp(ctx, "create student", false)
	inst.RecordIngest(ctx, "Math", 4)
}
