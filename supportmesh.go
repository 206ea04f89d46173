// Package supportmesh provides a high-level façade that assembles the
// customer-support assistant from configuration: courier tools, session
// store, model provider, agent engine and request handler.
//
// Most applications interact with this package by:
//  1. Loading a config.Config (config.Load)
//  2. Creating a SupportMesh via New (optionally overriding model, store or tools)
//  3. Serving HTTPHandler or calling Handle directly
//
// All defaults are safe for local development; production deployments
// typically select the sqlite or s3 session backend.
package supportmesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/engine"
	"github.com/hupe1980/supportmesh/handler"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	anthropicmodel "github.com/hupe1980/supportmesh/model/anthropic"
	openaimodel "github.com/hupe1980/supportmesh/model/openai"
	"github.com/hupe1980/supportmesh/observability"
	"github.com/hupe1980/supportmesh/session"
	"github.com/hupe1980/supportmesh/tool"
	"github.com/hupe1980/supportmesh/tool/courier"
)

// Options override parts of the configuration-driven assembly.
type Options struct {
	// Model replaces the provider selected by cfg.Model.
	Model model.Model
	// SessionStore replaces the backend selected by cfg.Session.
	SessionStore core.SessionStore
	// Tools replaces the courier toolset selected by cfg.Tools.
	Tools []tool.Tool
	// Logger replaces the logger built from cfg.Logging.
	Logger logging.Logger
	// LogOutput receives log lines when Logger is nil. Defaults to os.Stderr.
	LogOutput io.Writer
	// Registry receives the metrics. Defaults to a fresh registry with Go
	// and process collectors.
	Registry *prometheus.Registry
	// HTTPClient is used by the courier tools.
	HTTPClient *http.Client
}

// SupportMesh is the assembled assistant.
type SupportMesh struct {
	cfg      *config.Config
	logger   logging.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	tools    *tool.Registry
	store    core.SessionStore
	engine   *engine.Engine
	handler  *handler.Handler
	closers  []io.Closer
}

// New assembles a SupportMesh from cfg. cfg is validated first.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*SupportMesh, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := Options{LogOutput: os.Stderr}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := &SupportMesh{cfg: cfg}

	if opts.Logger != nil {
		m.logger = opts.Logger
	} else {
		logger, err := NewLogger(cfg.Logging, opts.LogOutput)
		if err != nil {
			return nil, err
		}
		m.logger = logger
	}

	m.registry = opts.Registry
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.metrics = observability.NewMetrics(m.registry)

	tools := opts.Tools
	if tools == nil {
		var err error
		tools, err = courier.NewToolset(cfg.Tools.Toolset(), func(o *courier.Options) {
			o.Timeout = cfg.Tools.Timeout
			o.HTTPClient = opts.HTTPClient
			o.Logger = logging.ForComponent(m.logger, "courier")
		})
		if err != nil {
			return nil, fmt.Errorf("build toolset: %w", err)
		}
	}
	registry, err := tool.NewRegistry(tools, func(o *tool.RegistryOptions) {
		o.Logger = logging.ForComponent(m.logger, "tool")
		o.Metrics = m.metrics
	})
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	m.tools = registry

	llm := opts.Model
	if llm == nil {
		llm, err = NewModel(cfg.Model)
		if err != nil {
			return nil, err
		}
	}

	// Opened last: nothing after this step can fail.
	m.store = opts.SessionStore
	if m.store == nil {
		store, closer, err := NewSessionStore(ctx, cfg.Session)
		if err != nil {
			return nil, err
		}
		m.store = store
		if closer != nil {
			m.closers = append(m.closers, closer)
		}
	}

	m.engine = engine.New(llm, m.tools, func(o *engine.Options) {
		o.MaxIterations = cfg.Engine.MaxIterations
		o.Instructions = cfg.Engine.Instructions
		o.Logger = logging.ForComponent(m.logger, "engine")
		o.Metrics = m.metrics
	})

	m.handler = handler.New(m.store, m.engine, func(o *handler.Options) {
		o.Logger = logging.ForComponent(m.logger, "handler")
		o.Metrics = m.metrics
	})

	m.logger.Info(
		"supportmesh.ready",
		"model", llm.Info().Name,
		"provider", llm.Info().Provider,
		"tools", m.tools.Names(),
		"session_backend", cfg.Session.Backend,
	)
	return m, nil
}

// Handle runs one invocation.
func (m *SupportMesh) Handle(ctx context.Context, req handler.Request) handler.Response {
	return m.handler.Handle(ctx, req)
}

// HTTPHandler exposes the assistant over HTTP, including /metrics.
func (m *SupportMesh) HTTPHandler() http.Handler {
	return handler.NewHTTPHandler(m.handler, func(o *handler.HTTPOptions) {
		o.Gatherer = m.registry
	})
}

// Engine returns the agent engine.
func (m *SupportMesh) Engine() *engine.Engine { return m.engine }

// Tools returns the tool registry.
func (m *SupportMesh) Tools() *tool.Registry { return m.tools }

// Store returns the session store.
func (m *SupportMesh) Store() core.SessionStore { return m.store }

// Logger returns the root logger.
func (m *SupportMesh) Logger() logging.Logger { return m.logger }

// Close releases resources held by the session store.
func (m *SupportMesh) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewModel creates the model provider selected by cfg.
func NewModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = cfg.Name
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
			o.APIKey = cfg.APIKey
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropicsdk.Model(cfg.Name)
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
			o.APIKey = cfg.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}

// NewSessionStore creates the session backend selected by cfg. The returned
// closer is nil for backends without resources to release.
func NewSessionStore(ctx context.Context, cfg config.SessionConfig) (core.SessionStore, io.Closer, error) {
	switch cfg.Backend {
	case "", "memory":
		return session.NewInMemoryStore(), nil, nil
	case "sqlite":
		store, err := session.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "s3":
		store, err := session.NewS3Store(ctx, cfg.S3.StoreConfig())
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.Backend)
	}
}

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg config.LoggingConfig, out io.Writer) (*logging.StructuredLogger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultLoggerConfig()
	lc.Level = level
	lc.Format = cfg.Format
	if out != nil {
		lc.Output = out
	}
	lc.Component = "supportmesh"
	return logging.NewLogger(lc), nil
}
