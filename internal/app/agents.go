package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/edusage/sage"
	"github.com/edusage/sage/ingest"
	"github.com/edusage/sage/store/sqlite"
)

// buildTutor assembles the agent tree: a router that delegates to repo-backed
// agents for history and analytics, a retrieval agent for curriculum
// questions, and plain LLM agents for explanations and study planning.
func (a *App) buildTutor(provider sage.Provider, embed ingest.EmbedFunc) sage.Agent {
	history := &historyAgent{interactions: a.interactions, window: a.cfg.Tutor.HistoryWindow}
	analytics := &analyticsAgent{progress: a.progress}
	curriculum := &curriculumAgent{
		curriculum: a.curriculum,
		embed:      embed,
		provider:   provider,
		topK:       a.cfg.Tutor.VectorTopK,
	}
	explainer := sage.NewLLMAgent("explainer", "explains concepts and answers subject questions directly",
		provider,
		sage.WithInstruction("You are a patient tutor. Explain the concept in the question simply, with one worked example."),
		sage.WithAgentLogger(a.log),
	)
	planner := sage.NewLLMAgent("planner", "builds study plans and suggests what to learn next",
		provider,
		sage.WithInstruction("You are a study planner. Propose a short, ordered study plan for the request."),
		sage.WithAgentLogger(a.log),
	)

	return sage.NewRouter("tutor", "educational assistant router", provider,
		sage.WithSubAgents(history, analytics, curriculum, explainer, planner),
		sage.WithInstruction("You are an educational assistant. Answer the student's question helpfully."),
		sage.WithAgentLogger(a.log),
	)
}

// historyAgent answers from the interaction log instead of the LLM.
type historyAgent struct {
	interactions *sqlite.InteractionRepo
	window       int
}

func (h *historyAgent) Name() string { return "history" }
func (h *historyAgent) Description() string {
	return "recalls the student's previous questions and answers in this session"
}

func (h *historyAgent) Execute(ctx context.Context, task sage.Task) (sage.Result, error) {
	var rows []sage.Interaction
	if task.SessionID != "" {
		rows = h.interactions.FindBySessionID(ctx, task.SessionID)
	} else if task.StudentID > 0 {
		rows = h.interactions.FindByStudentID(ctx, task.StudentID)
	}
	if h.window > 0 && len(rows) > h.window {
		rows = rows[len(rows)-h.window:]
	}
	if len(rows) == 0 {
		return sage.Result{Output: "No previous interactions recorded.", Agent: h.Name()}, nil
	}

	var b strings.Builder
	for _, in := range rows {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", in.InputContent, in.AgentResponse)
	}
	return sage.Result{Output: strings.TrimSpace(b.String()), Agent: h.Name()}, nil
}

// analyticsAgent summarizes the student's learning progress from the store.
type analyticsAgent struct {
	progress *sqlite.ProgressRepo
}

func (g *analyticsAgent) Name() string { return "analytics" }
func (g *analyticsAgent) Description() string {
	return "reports the student's progress, completed topics, and performance"
}

func (g *analyticsAgent) Execute(ctx context.Context, task sage.Task) (sage.Result, error) {
	rows := g.progress.FindByStudentID(ctx, task.StudentID)
	if len(rows) == 0 {
		return sage.Result{Output: "No progress recorded yet.", Agent: g.Name()}, nil
	}

	completed := 0
	var perfSum float64
	subjects := map[string]int{}
	for _, p := range rows {
		if p.IsCompleted() {
			completed++
		}
		perfSum += p.PerformanceScore
		subjects[p.Subject]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tracking %d topics across %d subjects.\n", len(rows), len(subjects))
	fmt.Fprintf(&b, "Completed: %d. Average performance: %.1f.\n", completed, perfSum/float64(len(rows)))
	for _, p := range rows {
		fmt.Fprintf(&b, "- %s / %s: %.0f%% complete, score %.1f\n", p.Subject, p.Topic, p.CompletionPercentage, p.PerformanceScore)
	}
	return sage.Result{Output: strings.TrimSpace(b.String()), Agent: g.Name()}, nil
}

// curriculumAgent retrieves the most similar curriculum content for the query
// and lets the provider compose an answer grounded in it. Without an embedder
// it returns the retrieved content directly.
type curriculumAgent struct {
	curriculum *sqlite.CurriculumRepo
	embed      ingest.EmbedFunc
	provider   sage.Provider
	topK       int
}

func (c *curriculumAgent) Name() string { return "curriculum" }
func (c *curriculumAgent) Description() string {
	return "finds relevant course material and answers from it"
}

func (c *curriculumAgent) Execute(ctx context.Context, task sage.Task) (sage.Result, error) {
	items := c.retrieve(ctx, task.Input)
	if len(items) == 0 {
		return sage.Result{Output: "No matching course material found.", Agent: c.Name()}, nil
	}

	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "## %s (%s, level %d)\n%s\n\n", it.Title, it.Subject, it.DifficultyLevel, it.Content)
	}
	material := strings.TrimSpace(b.String())

	if c.provider == nil {
		return sage.Result{Output: material, Agent: c.Name()}, nil
	}
	prompt := fmt.Sprintf("Answer the question using only the course material below.\n\n%s\n\nQuestion: %s", material, task.Input)
	out, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return sage.Result{}, fmt.Errorf("agent %s: %w", c.Name(), err)
	}
	return sage.Result{Output: out, Agent: c.Name()}, nil
}

func (c *curriculumAgent) retrieve(ctx context.Context, query string) []sage.CurriculumContent {
	topK := c.topK
	if topK <= 0 {
		topK = 5
	}
	if c.embed != nil {
		if vectors, err := c.embed(ctx, []string{query}); err == nil && len(vectors) == 1 {
			if items := c.curriculum.FindSimilar(ctx, vectors[0], topK); len(items) > 0 {
				return items
			}
		}
	}
	// Fallback: no embedder or nothing embedded yet.
	items := c.curriculum.GetAll(ctx)
	if len(items) > topK {
		items = items[:topK]
	}
	return items
}
