package sage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Provider is an opaque LLM backend: a prompt goes in, text comes out.
// Everything else about the model (transport, retries, streaming) is the
// provider's concern.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Task is one natural-language query flowing through the agent tree.
type Task struct {
	Input     string
	SessionID string
	StudentID int64
}

// Result is an agent's answer to a Task.
type Result struct {
	Output string
	Agent  string // name of the agent that produced the answer
}

// Agent is a composable unit of work in the assistant tree.
type Agent interface {
	Name() string
	Description() string
	Execute(ctx context.Context, task Task) (Result, error)
}

// nopLogger discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// AgentOption configures an LLMAgent or Router.
type AgentOption func(*agentConfig)

type agentConfig struct {
	instruction string
	agents      []Agent
	logger      *slog.Logger
}

// WithInstruction sets the system instruction prepended to every task.
func WithInstruction(s string) AgentOption {
	return func(c *agentConfig) { c.instruction = s }
}

// WithSubAgents registers sub-agents a Router can delegate to.
func WithSubAgents(agents ...Agent) AgentOption {
	return func(c *agentConfig) { c.agents = append(c.agents, agents...) }
}

// WithAgentLogger sets a structured logger for agent execution events.
func WithAgentLogger(l *slog.Logger) AgentOption {
	return func(c *agentConfig) { c.logger = l }
}

func buildAgentConfig(opts []AgentOption) agentConfig {
	cfg := agentConfig{logger: nopLogger}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// LLMAgent is a declarative Agent: a name, a description, an instruction, and
// a Provider. Execute concatenates instruction and input into one prompt and
// returns the provider's text.
type LLMAgent struct {
	name        string
	description string
	instruction string
	provider    Provider
	logger      *slog.Logger
}

var _ Agent = (*LLMAgent)(nil)

// NewLLMAgent creates an LLMAgent with the given provider and options.
func NewLLMAgent(name, description string, provider Provider, opts ...AgentOption) *LLMAgent {
	cfg := buildAgentConfig(opts)
	return &LLMAgent{
		name:        name,
		description: description,
		instruction: cfg.instruction,
		provider:    provider,
		logger:      cfg.logger,
	}
}

func (a *LLMAgent) Name() string        { return a.name }
func (a *LLMAgent) Description() string { return a.description }

// Execute sends the task to the provider and wraps the answer.
func (a *LLMAgent) Execute(ctx context.Context, task Task) (Result, error) {
	start := time.Now()
	prompt := task.Input
	if a.instruction != "" {
		prompt = a.instruction + "\n\n" + task.Input
	}
	out, err := a.provider.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("agent execute failed", "agent", a.name, "error", err, "duration", time.Since(start))
		return Result{}, fmt.Errorf("agent %s: %w", a.name, err)
	}
	a.logger.Debug("agent execute ok", "agent", a.name, "duration", time.Since(start))
	return Result{Output: out, Agent: a.name}, nil
}

// Router is an Agent that delegates tasks to the sub-agent the routing
// provider names. The provider sees each sub-agent's name and description and
// answers with a single name; an unknown or empty answer makes the Router
// handle the task itself with its own instruction.
type Router struct {
	name        string
	description string
	instruction string
	provider    Provider
	agents      map[string]Agent
	order       []string // registration order, for stable prompts
	logger      *slog.Logger
}

var _ Agent = (*Router)(nil)

// NewRouter creates a Router with the given routing provider and options.
func NewRouter(name, description string, provider Provider, opts ...AgentOption) *Router {
	cfg := buildAgentConfig(opts)
	r := &Router{
		name:        name,
		description: description,
		instruction: cfg.instruction,
		provider:    provider,
		agents:      make(map[string]Agent, len(cfg.agents)),
		logger:      cfg.logger,
	}
	for _, a := range cfg.agents {
		if _, ok := r.agents[a.Name()]; !ok {
			r.order = append(r.order, a.Name())
		}
		r.agents[a.Name()] = a
	}
	return r
}

func (r *Router) Name() string        { return r.name }
func (r *Router) Description() string { return r.description }

// SubAgents returns the registered sub-agents in registration order.
func (r *Router) SubAgents() []Agent {
	out := make([]Agent, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.agents[name])
	}
	return out
}

// Execute asks the routing provider to pick a sub-agent and delegates to it.
func (r *Router) Execute(ctx context.Context, task Task) (Result, error) {
	choice, err := r.provider.Generate(ctx, r.routingPrompt(task.Input))
	if err != nil {
		r.logger.Error("routing failed", "router", r.name, "error", err)
		return Result{}, fmt.Errorf("router %s: %w", r.name, err)
	}

	name := normalizeChoice(choice)
	if sub, ok := r.agents[name]; ok {
		r.logger.Debug("routing to sub-agent", "router", r.name, "agent", name)
		return sub.Execute(ctx, task)
	}

	// No sub-agent matched: answer directly.
	r.logger.Debug("routing fallback", "router", r.name, "choice", choice)
	prompt := task.Input
	if r.instruction != "" {
		prompt = r.instruction + "\n\n" + task.Input
	}
	out, err := r.provider.Generate(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("router %s: %w", r.name, err)
	}
	return Result{Output: out, Agent: r.name}, nil
}

// routingPrompt lists the sub-agents and asks the provider to name one.
func (r *Router) routingPrompt(input string) string {
	var b strings.Builder
	b.WriteString("You are a query router for an educational assistant. ")
	b.WriteString("Pick the single best agent for the query below and reply with its name only.\n\nAgents:\n")
	for _, name := range r.order {
		fmt.Fprintf(&b, "- %s: %s\n", name, r.agents[name].Description())
	}
	b.WriteString("\nQuery: ")
	b.WriteString(input)
	return b.String()
}

// normalizeChoice reduces a provider answer to a bare agent name.
func normalizeChoice(s string) string {
	if i := strings.IndexAny(s, "\n\r"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(strings.TrimSpace(s), "\"'`.")
	return strings.ToLower(strings.TrimSpace(s))
}
