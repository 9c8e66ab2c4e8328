package namecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// maxAPIBody bounds how much of a lookup response is read.
const maxAPIBody = 1 << 20

// TokenSource supplies the bearer token for the lookup API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RefreshableTokenSource is a [TokenSource] that can rotate its token when
// the upstream rejects it.
type RefreshableTokenSource interface {
	TokenSource
	Refresh(ctx context.Context) error
}

// engineTokenSource serves the statically configured bearer. It cannot
// rotate, so an auth failure under it is persistent.
type engineTokenSource struct {
	engine *Engine
}

func (s *engineTokenSource) Token(context.Context) (string, error) {
	tok := s.engine.cfg.Load().API.Token
	if tok == "" {
		return "", ErrMissingCredentials
	}
	return tok, nil
}

func (e *Engine) refreshToken(ctx context.Context, _ *Config) error {
	e.apiMu.Lock()
	defer e.apiMu.Unlock()

	r, ok := e.tokens.(RefreshableTokenSource)
	if !ok {
		return errors.New("bearer token source cannot rotate")
	}
	return r.Refresh(ctx)
}

// bearerExpired decodes the token without verifying its signature and
// checks the exp claim. Tokens without one are assumed live.
func bearerExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// apiAttempt runs one lookup against the token API. The bool return
// reports whether a token rotation followed by a retry could help.
func (e *Engine) apiAttempt(ctx context.Context, cfg *Config, playerID string) (Outcome, bool) {
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return authFailure(0, "no bearer token available"), true
	}

	// A locally expired bearer is a guaranteed rejection; skip the round
	// trip and go straight to rotation.
	if cfg.API.InspectBearerExpiry && bearerExpired(token, time.Now()) {
		return authFailure(0, "bearer token expired"), true
	}

	lookupURL := fmt.Sprintf(cfg.API.LookupURL, url.QueryEscape(playerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return transient(0, fmt.Sprintf("build lookup request: %v", err)), false
	}

	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("accept-language", "en-GB,en-US;q=0.9,en;q=0.8")
	req.Header.Set("app-version", "1.0.0")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("device-id", cfg.API.DeviceID)
	req.Header.Set("device-type", "web")
	req.Header.Set("origin", cfg.API.Origin)
	req.Header.Set("referer", cfg.API.Referer)
	req.Header.Set("sec-ch-ua", `"Chromium";v="134", "Not:A-Brand";v="24", "Google Chrome";v="134"`)
	req.Header.Set("sec-ch-ua-mobile", "?1")
	req.Header.Set("sec-ch-ua-platform", `"Android"`)
	req.Header.Set("user-agent", cfg.HTTP.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.metrics.Inc(MetricUpstreamTransportError)
		return transient(0, fmt.Sprintf("lookup request failed: %v", err)), true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBody))
	if err != nil {
		e.metrics.Inc(MetricUpstreamTransportError)
		return transient(resp.StatusCode, fmt.Sprintf("read lookup response: %v", err)), true
	}

	return classifyAPI(resp.StatusCode, body)
}
