package namecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/urrwish/namecheck/internal/scrape"
	"github.com/urrwish/namecheck/session"
)

// maxWebBody bounds how much of a storefront page is read.
const maxWebBody = 4 << 20

// pageResult is one fetched storefront page plus the cookies it set.
type pageResult struct {
	status  int
	body    string
	cookies []*http.Cookie
}

func (e *Engine) fetchPage(ctx context.Context, cfg *Config, sess *session.Session, pageURL string) (*pageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}

	req.Header.Set("User-Agent", cfg.HTTP.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8")
	if sess != nil {
		if header := sess.CookieHeader(); header != "" {
			req.Header.Set("Cookie", header)
		}
	}

	return e.doPage(req)
}

func (e *Engine) postForm(ctx context.Context, cfg *Config, sess *session.Session, postURL, referer string, form url.Values, ajax bool) (*pageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build form request: %w", err)
	}

	req.Header.Set("User-Agent", cfg.HTTP.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", cfg.Web.BaseURL)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	if sess != nil {
		if header := sess.CookieHeader(); header != "" {
			req.Header.Set("Cookie", header)
		}
	}
	if ajax {
		req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		if sess != nil && sess.CSRFToken != "" {
			req.Header.Set("X-CSRF-Token", sess.CSRFToken)
		}
	} else {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}

	return e.doPage(req)
}

func (e *Engine) doPage(req *http.Request) (*pageResult, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		e.metrics.Inc(MetricUpstreamTransportError)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebBody))
	if err != nil {
		e.metrics.Inc(MetricUpstreamTransportError)
		return nil, fmt.Errorf("read page body: %w", err)
	}

	return &pageResult{
		status:  resp.StatusCode,
		body:    string(body),
		cookies: resp.Cookies(),
	}, nil
}

func applyCookies(sess *session.Session, cookies []*http.Cookie) {
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		sess.Set(c.Name, c.Value)
	}
}

// inquiryResponse is the storefront's id-check reply. The status field has
// been seen both as a number and as a string; on success the message field
// carries the dynamic checkout token.
type inquiryResponse struct {
	Status  json.Number `json:"status"`
	Message string      `json:"message"`
}

// webAttempt runs one lookup against the storefront: an inquiry POST to
// validate the id, then a checkout page fetch to scrape the username. The
// bool return reports whether a session refresh followed by a retry could
// help.
func (e *Engine) webAttempt(ctx context.Context, cfg *Config, playerID string) (Outcome, bool) {
	sess, err := e.sessions.Load()
	if err != nil {
		return authFailure(0, "session not initialized"), true
	}

	form := url.Values{}
	form.Set("rgid", sess.RegistrationID)
	form.Set("userid", playerID)
	form.Set("did", cfg.Web.DistributorID)
	form.Set("pid", cfg.Web.ProductID)
	form.Set("influencer", "")
	form.Set("cust_email", cfg.Web.ContactEmail)

	inquiryURL := cfg.Web.BaseURL + cfg.Web.InquiryPath
	referer := cfg.Web.BaseURL + cfg.Web.ProtectedPath

	page, err := e.postForm(ctx, cfg, sess, inquiryURL, referer, form, true)
	if err != nil {
		return transient(0, fmt.Sprintf("inquiry request failed: %v", err)), true
	}
	if page.status != http.StatusOK {
		return authFailure(page.status, "inquiry rejected"), true
	}

	var inq inquiryResponse
	if err := json.Unmarshal([]byte(page.body), &inq); err != nil {
		// A logged-out session gets the login page back instead of JSON.
		return authFailure(page.status, "inquiry answered with a non-json body"), true
	}

	if inq.Status.String() != "1" {
		return notFound("incorrect player id"), false
	}

	checkoutURL := cfg.Web.BaseURL + cfg.Web.CheckoutPath + url.PathEscape(inq.Message)
	checkout, err := e.fetchPage(ctx, cfg, sess, checkoutURL)
	if err != nil {
		return transient(0, fmt.Sprintf("checkout request failed: %v", err)), true
	}
	if checkout.status != http.StatusOK {
		return authFailure(checkout.status, "checkout rejected"), true
	}

	name := scrape.CheckoutUsername(checkout.body)
	if name == "" {
		return notFound("checkout page carries no username"), false
	}
	return resolved(name), false
}
