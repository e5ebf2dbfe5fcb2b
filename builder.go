package authgraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/graphs"
	internalaudit "github.com/MrEthical07/authgraph/internal/audit"
	"github.com/MrEthical07/authgraph/internal/rate"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/provider/autotest"
	"github.com/MrEthical07/authgraph/provider/federated"
	"github.com/MrEthical07/authgraph/provider/firstparty"
)

type customGraph struct {
	name        string
	description string
	graph       graph.Graph
	source      nodes.CredentialSource
}

// Builder assembles an Engine. A Builder can build exactly one Engine.
type Builder struct {
	config  Config
	backend graph.Backend
	redis   redis.UniversalClient
	logger  *slog.Logger

	auditSink AuditSink
	prompter  graph.Prompter

	providers      []graph.CrossPlatformProvider
	graphs         []customGraph
	issuer         *jwt.Manager
	accountService federated.AccountService
	loginClient    firstparty.LoginClient
	loginVerifier  *jwt.Manager

	built bool
}

// New returns a Builder holding the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend sets the platform identity backend. It is required.
func (b *Builder) WithBackend(backend graph.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRedis sets the client used by the exchange rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger replaces the logger built from LoggingConfig.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithCrossPlatformProvider registers an additional provider.
func (b *Builder) WithCrossPlatformProvider(p graph.CrossPlatformProvider) *Builder {
	b.providers = append(b.providers, p)
	return b
}

// WithAccountService registers the federated provider backed by svc.
func (b *Builder) WithAccountService(svc federated.AccountService) *Builder {
	b.accountService = svc
	return b
}

// WithIdentityIssuer sets the token manager used by the automated testing
// graph and provider. Without it both are unavailable.
func (b *Builder) WithIdentityIssuer(m *jwt.Manager) *Builder {
	b.issuer = m
	return b
}

// WithFirstPartyLogin overrides the HTTP login client built from
// GraphConfig.FirstPartyLoginURL. verifier, when non-nil, checks the access
// tokens the login service returns.
func (b *Builder) WithFirstPartyLogin(client firstparty.LoginClient, verifier *jwt.Manager) *Builder {
	b.loginClient = client
	b.loginVerifier = verifier
	return b
}

func (b *Builder) WithPrompter(p graph.Prompter) *Builder {
	b.prompter = p
	return b
}

// WithGraph registers a custom graph. Registering one of the standard names
// replaces the standard graph.
func (b *Builder) WithGraph(name, description string, g graph.Graph) *Builder {
	b.graphs = append(b.graphs, customGraph{name: name, description: description, graph: g})
	return b
}

// WithPlatform registers a platform graph over src under name.
func (b *Builder) WithPlatform(name, description string, src nodes.CredentialSource) *Builder {
	b.graphs = append(b.graphs, customGraph{name: name, description: description, source: src})
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.backend == nil {
		return nil, ErrBackendRequired
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, invalid("RateLimit requires a redis client")
	}

	registry, err := b.buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = NewLogger(cfg.Logging, os.Stderr)
	}

	metrics := NewMetrics(cfg.Metrics)
	backend := b.backend
	if cfg.RateLimit.Enabled {
		limiter := rate.New(b.redis, rate.Config{
			Prefix:           cfg.RateLimit.RedisPrefix,
			MaxAttempts:      cfg.RateLimit.MaxExchangeAttempts,
			Cooldown:         cfg.RateLimit.Cooldown,
			EnableIPThrottle: cfg.RateLimit.EnableIPThrottle,
		})
		backend = limitBackend(backend, limiter, metrics)
	}

	engine := &Engine{
		config:   cfg,
		registry: registry,
		backend:  backend,
		logger:   logger,
		prompter: b.prompter,
		metrics:  metrics,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	b.built = true
	return engine, nil
}

func (b *Builder) buildRegistry(cfg Config) (*graph.Registry, error) {
	reg := graph.NewRegistry()

	// -------- PROVIDERS --------
	providers := append([]graph.CrossPlatformProvider(nil), b.providers...)
	if b.issuer != nil {
		providers = append(providers, autotest.New(b.issuer))
	}
	if b.accountService != nil {
		providers = append(providers, federated.New(b.accountService))
	}
	client := b.loginClient
	if client == nil && cfg.Graph.FirstPartyLoginURL != "" {
		client = firstparty.NewHTTPLoginClient(cfg.Graph.FirstPartyLoginURL, cfg.Graph.FirstPartyTimeout)
	}
	if client != nil {
		providers = append(providers, firstparty.New(client, b.loginVerifier))
	}
	for _, p := range providers {
		if err := reg.RegisterProvider(p); err != nil {
			return nil, err
		}
	}

	// -------- GRAPHS --------
	if err := graphs.RegisterDefaults(reg, graphs.Options{
		Issuer:            b.issuer,
		PreferredPlatform: cfg.Graph.PreferredPlatform,
	}); err != nil {
		return nil, err
	}
	for _, g := range b.graphs {
		var err error
		if g.source != nil {
			err = graphs.RegisterPlatform(reg, g.name, g.description, g.source)
		} else {
			err = reg.Register(g.name, g.description, g.graph)
		}
		if err != nil {
			return nil, err
		}
	}

	if name := cfg.Graph.CrossPlatformProvider; name != "" {
		if _, err := reg.Provider(name); err != nil {
			return nil, fmt.Errorf("%w: configured cross-platform provider: %w", ErrInvalidConfig, err)
		}
	}
	if !reg.Has(cfg.Graph.DefaultGraph) {
		return nil, fmt.Errorf("%w: default graph: %w: %s", ErrInvalidConfig, ErrGraphNotFound, cfg.Graph.DefaultGraph)
	}
	return reg, nil
}

// NewLogger builds the slog logger described by cfg, writing to w.
func NewLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
