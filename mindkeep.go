// Package mindkeep provides a high-level façade over the agent loop and its
// services (chat model, embeddings, tool registry, session and memory
// stores). Most applications interact with this package by:
//  1. Creating a Mindkeep via New() (optionally overriding default services)
//  2. Registering extra tools on the shared registry
//  3. Opening an agent per conversation with Agent() and calling Process
//
// Defaults are safe for local development: a mock model and embedder, an
// in-memory message log and an in-memory memory store. Supplying a Config
// selects a real provider and switches persistence to SQLite.
package mindkeep

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mindkeep-ai/mindkeep/agent"
	"github.com/mindkeep-ai/mindkeep/config"
	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
	"github.com/mindkeep-ai/mindkeep/logging"
	"github.com/mindkeep-ai/mindkeep/memory"
	"github.com/mindkeep-ai/mindkeep/model"
	anthropicmodel "github.com/mindkeep-ai/mindkeep/model/anthropic"
	openaimodel "github.com/mindkeep-ai/mindkeep/model/openai"
	"github.com/mindkeep-ai/mindkeep/store/sqlite"
	"github.com/mindkeep-ai/mindkeep/tool"
)

// embedderCacheEntries bounds the shared embedding cache.
const embedderCacheEntries = 4096

// Options configures a Mindkeep instance. Any unset service is derived from
// Config (or an in-memory default when that is nil too).
type Options struct {
	Config   *config.Config
	Model    model.ChatModel
	Embedder embedding.Embedder
	Sessions core.SessionStore
	Memories core.MemoryStore
	Messages core.MessageStore
	Observer agent.Observer
	Logger   logging.Logger
}

// Mindkeep aggregates the shared services behind per-session agents.
type Mindkeep struct {
	cfg      *config.Config
	model    model.ChatModel
	embedder embedding.Embedder
	sessions core.SessionStore
	memories core.MemoryStore
	messages core.MessageStore
	registry *tool.Registry
	observer agent.Observer
	logger   logging.Logger
	db       *sqlite.DB
}

// New wires a Mindkeep instance from the given options.
func New(optFns ...func(o *Options)) (*Mindkeep, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
		cfg.Provider = config.ProviderMock
		cfg.DatabasePath = ""
	}

	logger := opts.Logger
	if logger == nil {
		logCfg := logging.DefaultConfig()
		logCfg.Level = cfg.SlogLevel()
		logCfg.Format = cfg.LogFormat
		logger = logging.New(logCfg)
	}

	m := &Mindkeep{
		cfg:      cfg,
		model:    opts.Model,
		embedder: opts.Embedder,
		sessions: opts.Sessions,
		memories: opts.Memories,
		messages: opts.Messages,
		observer: opts.Observer,
		logger:   logger,
	}

	if m.model == nil {
		chatModel, err := buildModel(cfg)
		if err != nil {
			return nil, err
		}
		m.model = chatModel
	}
	if m.embedder == nil {
		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		m.embedder = embedder
	}

	if err := m.initStores(); err != nil {
		return nil, err
	}

	m.registry = tool.NewRegistry(logger)
	m.registry.RegisterAll(tool.NewMemoryToolkit(m.memories, m.embedder, logger).Tools())

	return m, nil
}

// Registry returns the shared tool registry so applications can register
// their own tools before opening agents.
func (m *Mindkeep) Registry() *tool.Registry { return m.registry }

// Memories returns the shared memory fact store.
func (m *Mindkeep) Memories() core.MemoryStore { return m.memories }

// Agent opens an agent for the given session, creating the session record
// when it does not exist yet. An empty id starts a fresh session. The agent
// gets the shared registry plus a session-scoped conversation recall tool.
func (m *Mindkeep) Agent(ctx context.Context, sessionID string) (*agent.Agent, error) {
	if sessionID == "" {
		sessionID = core.NewID()
	}
	if m.sessions != nil {
		if _, err := m.sessions.Get(ctx, sessionID); errors.Is(err, core.ErrNotFound) {
			if _, err := m.sessions.Create(ctx, sessionID); err != nil {
				return nil, fmt.Errorf("create session: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
	}

	registry := tool.NewRegistry(m.logger)
	registry.RegisterAll(collectTools(m.registry))
	registry.Register(tool.NewRecallTool(m.messages, m.embedder, sessionID))

	return agent.New(m.model, func(o *agent.Options) {
		o.SessionID = sessionID
		o.SystemPrompt = m.cfg.SystemPrompt
		o.HistoryWindow = m.cfg.HistoryWindow
		o.MaxIterations = m.cfg.MaxIterations
		o.MemoryTopK = m.cfg.MemoryTopK
		o.Registry = registry
		o.Memories = m.memories
		o.Messages = m.messages
		o.Embedder = m.embedder
		o.Observer = m.observer
		o.Logger = m.logger
	}), nil
}

// Close releases the underlying database, if any.
func (m *Mindkeep) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Mindkeep) initStores() error {
	if m.sessions != nil && m.memories != nil && m.messages != nil {
		return nil
	}
	if m.cfg.DatabasePath != "" {
		db, err := sqlite.Open(m.cfg.DatabasePath)
		if err != nil {
			return err
		}
		m.db = db
		if m.sessions == nil {
			m.sessions = db.Sessions()
		}
		if m.memories == nil {
			m.memories = db.Memories()
		}
		if m.messages == nil {
			m.messages = db.Messages()
		}
		return nil
	}
	if m.memories == nil {
		m.memories = memory.NewInMemoryStore()
	}
	if m.messages == nil {
		m.messages = memory.NewInMemoryMessageStore()
	}
	return nil
}

func buildModel(cfg *config.Config) (model.ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var clientOpts []option.RequestOption
		if cfg.OpenAIAPIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.OpenAIAPIKey))
		}
		client := openaisdk.NewClient(clientOpts...)
		return openaimodel.NewFromClient(&client, func(o *openaimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.New(func(o *anthropicmodel.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	case config.ProviderMock:
		return model.NewMockModel("mindkeep-mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func buildEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	if cfg.Provider == config.ProviderMock {
		return embedding.NewMockEmbedder(0), nil
	}
	var clientOpts []option.RequestOption
	if cfg.OpenAIAPIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.OpenAIAPIKey))
	}
	client := openaisdk.NewClient(clientOpts...)
	inner := embedding.NewOpenAIEmbedderFromClient(&client, func(o *embedding.OpenAIOptions) {
		if cfg.EmbeddingModel != "" {
			o.Model = openaisdk.EmbeddingModel(cfg.EmbeddingModel)
		}
	})
	return embedding.NewCachedEmbedder(inner, embedderCacheEntries)
}

// collectTools snapshots a registry's catalog as concrete tools, preserving
// registration order.
func collectTools(r *tool.Registry) []tool.Tool {
	defs := r.Definitions()
	tools := make([]tool.Tool, 0, len(defs))
	for _, def := range defs {
		if t, ok := r.Get(def.Function.Name); ok {
			tools = append(tools, t)
		}
	}
	return tools
}
