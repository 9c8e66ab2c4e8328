package namecheck

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/urrwish/namecheck/cache"
	"github.com/urrwish/namecheck/session"
)

// Builder assembles an [Engine]. A Builder is single use: Build consumes
// it and further calls return [ErrBuilderUsed].
type Builder struct {
	cfg      *Config
	redis    redis.UniversalClient
	client   Doer
	tokens   TokenSource
	sink     AuditSink
	sessions *session.FileStore

	used bool
}

// NewBuilder creates a Builder seeded with the default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg *Config) *Builder {
	if cfg != nil {
		b.cfg = cloneConfig(cfg)
	}
	return b
}

// WithRedis supplies the Redis client backing the lookup cache. Without
// one the cache falls back to the file backend alone.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the upstream HTTP client.
func (b *Builder) WithHTTPClient(client Doer) *Builder {
	b.client = client
	return b
}

// WithTokenSource replaces the static configured bearer token with a
// caller-managed source.
func (b *Builder) WithTokenSource(ts TokenSource) *Builder {
	b.tokens = ts
	return b
}

// WithAuditSink sets the audit event destination. Defaults to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithSessionStore replaces the file-backed session store built from
// configuration. Mainly for tests.
func (b *Builder) WithSessionStore(store *session.FileStore) *Builder {
	b.sessions = store
	return b
}

// Build validates the configuration and constructs the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.used {
		return nil, ErrBuilderUsed
	}
	b.used = true

	cfg := cloneConfig(b.cfg)
	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	// A token backend with neither a configured bearer nor a token source
	// can never authenticate; refuse to start.
	if cfg.Backend == BackendAPI && cfg.API.Token == "" && b.tokens == nil {
		return nil, fmt.Errorf("%w: api backend needs a bearer token or token source", ErrMissingCredentials)
	}

	e := &Engine{}
	e.cfg.Store(cfg)

	e.client = b.client
	if e.client == nil {
		e.client = &http.Client{Timeout: cfg.HTTP.Timeout}
	}

	// Constructed whenever state paths exist, not only for the web backend,
	// so a later ApplyConfig switch to web finds a store in place.
	e.sessions = b.sessions
	if e.sessions == nil && cfg.Session.StatePath != "" {
		e.sessions = session.NewFileStore(
			cfg.Session.StatePath,
			cfg.Session.ResumePath,
			cfg.Session.ResumeCookie,
			cfg.Session.Baseline,
		)
	}

	e.tokens = b.tokens
	if e.tokens == nil {
		e.tokens = &engineTokenSource{engine: e}
	}

	e.metrics = NewMetrics(cfg.Metrics)

	sink := b.sink
	if !cfg.Audit.Enabled {
		sink = NoOpSink{}
	}
	e.audit = newAuditDispatcher(sink, cfg.Audit.BufferSize, cfg.Audit.DropIfFull)

	// The cache needs at least one backend behind it; with neither a Redis
	// client nor a file path the engine runs uncached.
	if cfg.Cache.Enabled && (b.redis != nil || cfg.Cache.FilePath != "") {
		store, err := cache.New(cache.Options{
			Redis:       b.redis,
			RedisPrefix: cfg.Cache.RedisPrefix,
			FilePath:    cfg.Cache.FilePath,
			OnError: func(backend string, err error) {
				e.metrics.Inc(MetricCacheWriteFailure)
				e.emitAudit(AuditEventCacheWrite, "", cfg.Backend, false, err.Error(), map[string]string{
					"cache_backend": backend,
				})
			},
		})
		if err != nil {
			e.audit.close()
			return nil, fmt.Errorf("build cache: %w", err)
		}
		e.cache = store
	}

	return e, nil
}
