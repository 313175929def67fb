package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
	"github.com/mindkeep-ai/mindkeep/logging"
	"github.com/mindkeep-ai/mindkeep/model"
	"github.com/mindkeep-ai/mindkeep/tool"
)

const (
	// DefaultHistoryWindow is the number of non-system messages sent to the
	// model per turn.
	DefaultHistoryWindow = 20

	// DefaultMaxIterations bounds think-act-observe cycles per Process call.
	DefaultMaxIterations = 10

	// DefaultMemoryTopK is how many facts proactive retrieval injects.
	DefaultMemoryTopK = 5

	statusThinking = "Thinking..."
)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	SystemPrompt  string
	SessionID     string
	HistoryWindow int
	MaxIterations int
	MemoryTopK    int
	Registry      *tool.Registry
	Memories      core.MemoryStore
	Messages      core.MessageStore
	Embedder      embedding.Embedder
	Observer      Observer
	Logger        logging.Logger
}

// Agent drives the think-act-observe cycle for one conversation.
//
// It owns the session's in-memory history and optionally mirrors every
// appended message to a core.MessageStore. Memories and Embedder together
// enable proactive retrieval; leaving either nil disables it without
// changing loop behavior.
type Agent struct {
	model         model.ChatModel
	registry      *tool.Registry
	memories      core.MemoryStore
	store         core.MessageStore
	embedder      embedding.Embedder
	observer      Observer
	logger        logging.Logger
	sessionID     string
	systemPrompt  string
	historyWindow int
	maxIterations int
	memoryTopK    int

	busy    atomic.Bool
	loaded  bool
	history []core.Message
}

// New creates an agent with sensible defaults: a 20-message context window,
// 10 loop iterations, top-5 memory injection, an empty tool registry and a
// fresh session id.
func New(chatModel model.ChatModel, optFns ...func(o *Options)) *Agent {
	opts := Options{
		HistoryWindow: DefaultHistoryWindow,
		MaxIterations: DefaultMaxIterations,
		MemoryTopK:    DefaultMemoryTopK,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry(opts.Logger)
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.SessionID == "" {
		opts.SessionID = core.NewID()
	}

	return &Agent{
		model:         chatModel,
		registry:      opts.Registry,
		memories:      opts.Memories,
		store:         opts.Messages,
		embedder:      opts.Embedder,
		observer:      opts.Observer,
		logger:        opts.Logger,
		sessionID:     opts.SessionID,
		systemPrompt:  opts.SystemPrompt,
		historyWindow: opts.HistoryWindow,
		maxIterations: opts.MaxIterations,
		memoryTopK:    opts.MemoryTopK,
	}
}

// SessionID returns the id of the session this agent owns.
func (a *Agent) SessionID() string { return a.sessionID }

// Registry returns the agent's tool registry so callers can add tools after
// construction.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// History returns a copy of the full message history.
func (a *Agent) History() []core.Message {
	out := make([]core.Message, len(a.history))
	copy(out, a.history)
	return out
}

// Process runs the agent loop for one user input and returns the final
// textual answer.
//
// Re-entrant calls fail with core.ErrBusy; the agent handles one Process at
// a time. If the most recent history entry is a user turn with identical
// text, the call is treated as a continuation and the images are attached to
// that turn instead of appending a duplicate. The loop runs at most
// MaxIterations; on budget exhaustion the last assistant text is returned
// without an error. Chat provider failures propagate to the caller.
func (a *Agent) Process(ctx context.Context, input string, images ...string) (string, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return "", core.ErrBusy
	}
	defer a.busy.Store(false)
	defer a.setStatus("")

	if err := a.loadHistory(ctx); err != nil {
		return "", err
	}
	a.appendUserTurn(ctx, input, images)

	var lastContent string
	for i := 1; i <= a.maxIterations; i++ {
		a.setStatus(statusThinking)

		window := windowHistory(a.history, a.systemPrompt, a.historyWindow)
		if i == 1 {
			window = a.injectMemories(ctx, window)
		}

		resp, err := a.model.Generate(ctx, model.Request{
			Messages: window,
			Tools:    a.registry.Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		assistant := core.NewAssistantMessage(resp.Content, resp.ToolCalls)
		if len(resp.ToolCalls) == 0 {
			a.embedForRecall(ctx, &assistant)
		}
		a.append(ctx, assistant)
		lastContent = resp.Content

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}
		a.runToolCalls(ctx, resp.ToolCalls)
	}

	a.logger.Warn("iteration budget exhausted", "session_id", a.sessionID, "max_iterations", a.maxIterations)
	return lastContent, nil
}

// runToolCalls dispatches the turn's tool calls strictly in order. A call
// with malformed arguments gets a synthesized failure result and must not
// poison its siblings.
func (a *Agent) runToolCalls(ctx context.Context, calls []core.ToolCall) {
	for _, call := range calls {
		args, err := parseToolArgs(call.Arguments)
		if err != nil {
			a.logger.Warn("malformed tool arguments", "tool", call.Name, "error", err.Error())
			content := fmt.Sprintf("invalid arguments for tool %s: %v", call.Name, err)
			a.append(ctx, core.NewToolMessage(call.ID, call.Name, content, nil))
			continue
		}

		name := displayName(call.Name)
		a.setStatus("Using " + name)
		result := a.registry.Execute(ctx, call.Name, args)
		a.setStatus("Finished " + name)

		a.append(ctx, core.NewToolMessage(call.ID, call.Name, result.ForModel, result.Images))
	}
}

// loadHistory seeds in-memory history from the message store once per agent.
func (a *Agent) loadHistory(ctx context.Context) error {
	if a.loaded || a.store == nil {
		a.loaded = true
		return nil
	}
	msgs, err := a.store.Messages(ctx, a.sessionID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	a.history = msgs
	a.loaded = true
	return nil
}

// appendUserTurn appends the user input as a new turn, unless it duplicates
// the most recent user turn, in which case the images are attached to that
// turn (a caller retrying before images finished loading).
func (a *Agent) appendUserTurn(ctx context.Context, input string, images []string) {
	if n := len(a.history); n > 0 {
		last := &a.history[n-1]
		if last.Role == core.RoleUser && last.Content == input {
			if len(images) > 0 {
				last.Images = append(last.Images, images...)
			}
			a.logger.Debug("duplicate user turn, attaching images", "session_id", a.sessionID, "images", len(images))
			return
		}
	}
	msg := core.NewUserMessage(input, images)
	a.embedForRecall(ctx, &msg)
	a.append(ctx, msg)
}

// append adds a message to history, mirrors it to the store when one is
// configured and notifies the observer. Persistence failures are logged and
// do not interrupt the loop.
func (a *Agent) append(ctx context.Context, msg core.Message) {
	a.history = append(a.history, msg)
	if a.store != nil {
		if err := a.store.Append(ctx, a.sessionID, msg); err != nil {
			a.logger.Warn("failed to persist message", "session_id", a.sessionID, "role", msg.Role, "error", err.Error())
		}
	}
	a.observer.OnMessage(msg)
}

// embedForRecall attaches an embedding so the turn becomes a candidate for
// conversation recall. Best-effort.
func (a *Agent) embedForRecall(ctx context.Context, msg *core.Message) {
	if a.embedder == nil || strings.TrimSpace(msg.Content) == "" {
		return
	}
	vec, err := a.embedder.Embed(ctx, msg.Content)
	if err != nil {
		a.logger.Debug("failed to embed message", "role", msg.Role, "error", err.Error())
		return
	}
	msg.Embedding = vec
}

func (a *Agent) setStatus(status string) {
	a.observer.OnStatus(status)
}

// parseToolArgs decodes a model-issued JSON argument payload. An empty or
// null payload yields an empty argument map.
func parseToolArgs(payload string) (map[string]any, error) {
	if strings.TrimSpace(payload) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// displayName turns an underscore-separated tool name into a human-readable
// title ("get_weather" -> "Get Weather").
func displayName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
