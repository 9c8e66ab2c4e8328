package namecheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/urrwish/namecheck/internal/scrape"
	"github.com/urrwish/namecheck/session"
)

// refreshWebSession re-establishes an authenticated storefront session:
// it probes the stored resume id first and falls back to a full credential
// login only when the probe fails. Concurrent callers collapse into a
// single flow.
//
// Transport-level failures leave the persisted session untouched. A login
// POST that reaches the server persists whatever cookies came back even
// when the server rejects it, so the stored state always matches what the
// server last saw.
func (e *Engine) refreshWebSession(ctx context.Context, cfg *Config) error {
	e.webMu.Lock()
	defer e.webMu.Unlock()

	e.setState(loginResumeAttempt)

	working := &session.Session{Cookies: e.sessions.Baseline()}

	// The anonymous login page supplies the CSRF token and the session
	// cookie every later request rides on.
	loginURL := cfg.Web.BaseURL + cfg.Web.LoginPath
	loginPage, err := e.fetchPage(ctx, cfg, working, loginURL)
	if err != nil {
		e.loginFailure(cfg, fmt.Sprintf("fetch login page: %v", err))
		return fmt.Errorf("%w: fetch login page: %v", ErrLoginFailed, err)
	}
	if loginPage.status != http.StatusOK {
		e.loginFailure(cfg, fmt.Sprintf("login page status %d", loginPage.status))
		return fmt.Errorf("%w: login page answered %d", ErrLoginFailed, loginPage.status)
	}

	applyCookies(working, loginPage.cookies)
	working.CSRFToken = scrape.CSRFToken(loginPage.body)

	if e.tryResume(ctx, cfg, working) {
		return nil
	}

	return e.freshLogin(ctx, cfg, working, loginPage.body)
}

// tryResume replays the stored resume id against the protected page and
// reports whether it still maps to an authenticated session.
func (e *Engine) tryResume(ctx context.Context, cfg *Config, working *session.Session) bool {
	resumeValue, err := e.sessions.LoadResume()
	if err != nil || resumeValue == "" {
		return false
	}

	probe := working.Clone()
	probe.Set(e.sessions.ResumeCookieName(), resumeValue)

	page, err := e.fetchPage(ctx, cfg, probe, cfg.Web.BaseURL+cfg.Web.ProtectedPath)
	if err != nil || page.status != http.StatusOK {
		return false
	}
	if !strings.Contains(page.body, cfg.Web.AuthMarker) {
		return false
	}

	applyCookies(probe, page.cookies)
	if rgid := scrape.RegistrationID(page.body); rgid != "" {
		probe.RegistrationID = rgid
	}

	if err := e.sessions.Save(probe); err != nil {
		e.loginFailure(cfg, fmt.Sprintf("persist resumed session: %v", err))
		return false
	}

	e.setState(loginDone)
	e.metrics.Inc(MetricLoginResumed)
	e.emitAudit(AuditEventLogin, "", cfg.Backend, true, "", map[string]string{"mode": "resume"})
	return true
}

func (e *Engine) freshLogin(ctx context.Context, cfg *Config, working *session.Session, loginBody string) error {
	e.setState(loginFreshLogin)

	if cfg.Web.Email == "" || cfg.Web.Password == "" {
		e.loginFailure(cfg, "no storefront credentials configured")
		return fmt.Errorf("%w: storefront email and password are unset", ErrMissingCredentials)
	}

	emailField := scrape.InputNameByID(loginBody, cfg.Web.EmailInputID)
	passwordField := scrape.InputNameByID(loginBody, cfg.Web.PasswordInputID)
	if emailField == "" || passwordField == "" {
		e.loginFailure(cfg, "login form fields not found")
		return fmt.Errorf("%w: credential inputs missing from login page", ErrLoginFormUnusable)
	}

	form := url.Values{}
	for _, hidden := range scrape.HiddenInputs(loginBody, cfg.Web.MaxHiddenFields) {
		form.Set(hidden.Name, hidden.Value)
	}
	form.Set(emailField, cfg.Web.Email)
	form.Set(passwordField, cfg.Web.Password)

	e.setState(loginPosted)

	loginURL := cfg.Web.BaseURL + cfg.Web.LoginPath
	posted, err := e.postForm(ctx, cfg, working, loginURL, loginURL, form, false)
	if err != nil {
		// The POST never reached the server; the stored session stays as it
		// was.
		e.loginFailure(cfg, fmt.Sprintf("login post: %v", err))
		return fmt.Errorf("%w: login post: %v", ErrLoginFailed, err)
	}

	applyCookies(working, posted.cookies)

	if posted.status != http.StatusOK && posted.status != http.StatusFound {
		if err := e.sessions.Save(working); err != nil {
			e.loginFailure(cfg, fmt.Sprintf("persist rejected session: %v", err))
			return fmt.Errorf("%w: persist rejected session: %v", ErrLoginFailed, err)
		}
		e.setState(loginFailed)
		e.metrics.Inc(MetricLoginRejected)
		e.emitAudit(AuditEventLogin, "", cfg.Backend, false, fmt.Sprintf("login answered %d", posted.status), map[string]string{"mode": "fresh"})
		return fmt.Errorf("%w: login answered %d", ErrLoginRejected, posted.status)
	}

	// Confirm the credentials took and pick up the registration id the
	// inquiry form needs.
	confirm, err := e.fetchPage(ctx, cfg, working, cfg.Web.BaseURL+cfg.Web.ProtectedPath)
	if err == nil && confirm.status == http.StatusOK {
		applyCookies(working, confirm.cookies)
		if rgid := scrape.RegistrationID(confirm.body); rgid != "" {
			working.RegistrationID = rgid
		}
		if !strings.Contains(confirm.body, cfg.Web.AuthMarker) {
			if saveErr := e.sessions.Save(working); saveErr != nil {
				e.loginFailure(cfg, fmt.Sprintf("persist session: %v", saveErr))
				return fmt.Errorf("%w: persist session: %v", ErrLoginFailed, saveErr)
			}
			e.setState(loginFailed)
			e.metrics.Inc(MetricLoginRejected)
			e.emitAudit(AuditEventLogin, "", cfg.Backend, false, "credentials not accepted", map[string]string{"mode": "fresh"})
			return fmt.Errorf("%w: credentials not accepted", ErrLoginRejected)
		}
	}

	if err := e.sessions.Save(working); err != nil {
		e.loginFailure(cfg, fmt.Sprintf("persist session: %v", err))
		return fmt.Errorf("%w: persist session: %v", ErrLoginFailed, err)
	}

	e.setState(loginDone)
	e.metrics.Inc(MetricLoginFresh)
	e.emitAudit(AuditEventLogin, "", cfg.Backend, true, "", map[string]string{"mode": "fresh"})
	return nil
}

func (e *Engine) loginFailure(cfg *Config, msg string) {
	e.setState(loginFailed)
	e.metrics.Inc(MetricLoginFailed)
	e.emitAudit(AuditEventLogin, "", cfg.Backend, false, msg, nil)
}
