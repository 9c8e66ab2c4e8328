package namecheck

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/urrwish/namecheck/cache"
	"github.com/urrwish/namecheck/session"
)

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// substitute counting or scripted implementations.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

/* ==== LOGIN STATE ==== */

type loginState int32

const (
	loginIdle loginState = iota
	loginResumeAttempt
	loginFreshLogin
	loginPosted
	loginDone
	loginFailed
)

func (s loginState) String() string {
	switch s {
	case loginIdle:
		return "idle"
	case loginResumeAttempt:
		return "resume_attempt"
	case loginFreshLogin:
		return "fresh_login"
	case loginPosted:
		return "posted"
	case loginDone:
		return "done"
	case loginFailed:
		return "failed"
	default:
		return "unknown"
	}
}

/* ==== ENGINE ==== */

// Engine resolves player ids to usernames against an authenticated
// upstream. Create one with [NewBuilder]; the zero value is not usable.
//
// All methods are safe for concurrent use. Configuration is swapped
// atomically by [Engine.ApplyConfig]; an in-flight resolution keeps the
// snapshot it started with.
type Engine struct {
	cfg      atomic.Pointer[Config]
	client   Doer
	sessions *session.FileStore
	cache    *cache.Store
	tokens   TokenSource
	metrics  *Metrics
	audit    *auditDispatcher

	// webMu serializes the web login flow so concurrent refreshes collapse
	// into one credential exchange. apiMu does the same for token rotation.
	webMu sync.Mutex
	apiMu sync.Mutex

	state  atomic.Int32
	closed atomic.Bool
}

// Config returns the active configuration snapshot.
func (e *Engine) Config() *Config {
	return e.cfg.Load()
}

// ApplyConfig validates and atomically installs a new configuration.
// In-flight resolutions finish under the snapshot they started with.
func (e *Engine) ApplyConfig(cfg *Config) error {
	next := cloneConfig(cfg)
	if err := normalizeConfig(next); err != nil {
		return err
	}
	if next.Backend == BackendWeb && e.sessions == nil {
		return fmt.Errorf("cannot switch to the web backend: engine was built without a session store")
	}
	e.cfg.Store(next)
	return nil
}

// Metrics returns the engine's metrics registry.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Cache returns the lookup cache, or nil when caching is disabled.
func (e *Engine) Cache() *cache.Store {
	return e.cache
}

// LoginState reports the most recent login flow state, for introspection.
func (e *Engine) LoginState() string {
	return loginState(e.state.Load()).String()
}

func (e *Engine) setState(s loginState) {
	e.state.Store(int32(s))
}

// Close drains the audit queue and releases cache resources. The engine
// must not be used after Close.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.audit.close()
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

func (e *Engine) emitAudit(eventType, playerID string, backend Backend, success bool, errMsg string, meta map[string]string) {
	e.audit.emit(AuditEvent{
		EventType: eventType,
		PlayerID:  playerID,
		Backend:   backend.String(),
		Success:   success,
		Error:     errMsg,
		Metadata:  meta,
	})
}
