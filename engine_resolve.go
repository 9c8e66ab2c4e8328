package namecheck

import (
	"context"
	"strings"
	"time"
)

// Resolve maps a player id to a username. It answers from the lookup cache
// when possible; otherwise it runs one upstream attempt and, on a
// refreshable failure, exactly one refresh-and-retry cycle before giving
// the second outcome back verbatim.
//
// Resolve returns an error only for caller mistakes (empty id, closed
// engine); upstream trouble is reported through the outcome.
func (e *Engine) Resolve(ctx context.Context, playerID string) (Outcome, error) {
	if e.closed.Load() {
		return Outcome{}, ErrEngineNotReady
	}

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return Outcome{}, ErrEmptyPlayerID
	}

	cfg := e.cfg.Load()
	start := time.Now()

	out, fromCache := e.resolve(ctx, cfg, playerID)

	e.metrics.Observe(MetricResolveLatency, time.Since(start))
	switch out.Kind {
	case OutcomeResolved:
		e.metrics.Inc(MetricResolveResolved)
	case OutcomeNotFound:
		e.metrics.Inc(MetricResolveNotFound)
	case OutcomeAuthFailure:
		e.metrics.Inc(MetricResolveAuthFailure)
	case OutcomeTransient:
		e.metrics.Inc(MetricResolveTransient)
	}

	definitive := out.Kind == OutcomeResolved || out.Kind == OutcomeNotFound
	e.emitAudit(AuditEventResolve, playerID, cfg.Backend, definitive, out.Message, map[string]string{
		"outcome":    out.Kind.String(),
		"from_cache": boolLabel(fromCache),
	})

	return out, nil
}

func (e *Engine) resolve(ctx context.Context, cfg *Config, playerID string) (Outcome, bool) {
	if e.cache != nil {
		name, ok, err := e.cache.Get(ctx, playerID)
		if err == nil && ok {
			e.metrics.Inc(MetricCacheHit)
			return resolved(name), true
		}
		e.metrics.Inc(MetricCacheMiss)
	}

	var (
		attempt func(context.Context) (Outcome, bool)
		refresh func(context.Context) error
	)
	switch cfg.Backend {
	case BackendAPI:
		attempt = func(ctx context.Context) (Outcome, bool) {
			return e.apiAttempt(ctx, cfg, playerID)
		}
		refresh = func(ctx context.Context) error {
			return e.refreshToken(ctx, cfg)
		}
	default:
		attempt = func(ctx context.Context) (Outcome, bool) {
			return e.webAttempt(ctx, cfg, playerID)
		}
		refresh = func(ctx context.Context) error {
			return e.refreshWebSession(ctx, cfg)
		}
	}

	out := e.executeWithRefresh(ctx, cfg, attempt, refresh)

	if out.Kind == OutcomeResolved && e.cache != nil {
		// A failed write must not demote a resolved outcome; the error hook
		// already counted and audited it.
		_ = e.cache.Put(ctx, playerID, out.Username)
	}

	return out, false
}

// executeWithRefresh runs one attempt. When the attempt reports a
// refreshable failure it refreshes once and runs exactly one more attempt;
// the second outcome stands no matter what it is. A failed refresh skips
// the retry and keeps the first outcome.
func (e *Engine) executeWithRefresh(ctx context.Context, cfg *Config, attempt func(context.Context) (Outcome, bool), refresh func(context.Context) error) Outcome {
	out, retryable := attempt(ctx)
	if !retryable {
		return out
	}

	e.metrics.Inc(MetricRefreshTriggered)

	if err := refresh(ctx); err != nil {
		e.emitAudit(AuditEventRefresh, "", cfg.Backend, false, err.Error(), nil)
		return out
	}
	e.emitAudit(AuditEventRefresh, "", cfg.Backend, true, "", nil)

	out, _ = attempt(ctx)
	return out
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
