package namecheck

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urrwish/namecheck/session"
)

// Config is the complete engine configuration. It is constructed once, passed
// to [Builder.WithConfig], and treated as immutable afterwards; runtime
// reconfiguration goes through [Engine.ApplyConfig], which swaps the whole
// object atomically.
type Config struct {
	Backend Backend
	Web     WebConfig
	API     APIConfig
	HTTP    HTTPConfig
	Session SessionConfig
	Cache   CacheConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
WEB (COOKIE) BACKEND CONFIG
====================================
*/

// WebConfig describes the cookie/CSRF shop surface: where to log in, which
// page proves an authenticated viewer, and the fixed inquiry payload fields.
type WebConfig struct {
	BaseURL       string
	LoginPath     string
	ProtectedPath string
	InquiryPath   string
	// CheckoutPath is the prefix the dynamic checkout token from a successful
	// inquiry is appended to.
	CheckoutPath string

	// Email and Password are the login credentials. Never logged.
	Email    string
	Password string

	// AuthMarker is the page fragment whose presence proves the viewer is
	// signed in.
	AuthMarker string
	// EmailInputID and PasswordInputID are the DOM ids used to discover the
	// login form's field names.
	EmailInputID    string
	PasswordInputID string
	// MaxHiddenFields bounds how many hidden login-form inputs are echoed
	// back on the POST.
	MaxHiddenFields int

	// Fixed inquiry payload fields.
	DistributorID string
	ProductID     string
	ContactEmail  string
}

/*
====================================
API (TOKEN) BACKEND CONFIG
====================================
*/

// APIConfig describes the bearer-token lookup API and the client fingerprint
// it expects.
type APIConfig struct {
	// LookupURL is a template with one %s verb for the player id.
	LookupURL string
	// Token is the bearer token. Never logged.
	Token string
	// DeviceID is sent as the device fingerprint; generated once at Build
	// when empty.
	DeviceID string
	Origin   string
	Referer  string
	// InspectBearerExpiry classifies a parseable, already-expired JWT as an
	// auth failure before spending a network attempt.
	InspectBearerExpiry bool
}

/*
====================================
AMBIENT CONFIG
====================================
*/

// HTTPConfig bounds every external call.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// SessionConfig locates the persisted session state for the web backend.
type SessionConfig struct {
	StatePath  string
	ResumePath string
	// ResumeCookie names the cookie whose bare value is mirrored into the
	// resume file.
	ResumeCookie string
	// Baseline cookies are always present in a saved jar, login or not.
	Baseline []session.Cookie
}

// CacheConfig controls the lookup cache. The Redis side is enabled by handing
// a client to [Builder.WithRedis]; the file side by FilePath.
type CacheConfig struct {
	Enabled     bool
	RedisPrefix string
	FilePath    string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the lock-free counters and the resolve latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the stock configuration: web backend against the
// public storefront, file-backed session state under data/, cache and
// metrics on, audit off.
func DefaultConfig() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Backend: BackendWeb,
		Web: WebConfig{
			BaseURL:         "https://www.unipin.com",
			LoginPath:       "/login",
			ProtectedPath:   "/in/bgmi",
			InquiryPath:     "/in/bgmi/inquiry",
			CheckoutPath:    "/in/bgmi/checkout/",
			AuthMarker:      "Sign Out",
			EmailInputID:    "sign-in-email",
			PasswordInputID: "signInPassword",
			MaxHiddenFields: 5,
			DistributorID:   "5218",
			ProductID:       "764",
			ContactEmail:    "sahilraz9265@gmail.com",
		},
		API: APIConfig{
			LookupURL:           "https://bazaar.rooter.io/order/getUnipinUsername?gameCode=BGMI_IN&id=%s",
			Origin:              "https://shop.rooter.gg",
			Referer:             "https://shop.rooter.gg/",
			InspectBearerExpiry: true,
		},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Mobile Safari/537.36",
		},
		Session: SessionConfig{
			StatePath:    "data/session_state.json",
			ResumePath:   "data/session_resume.txt",
			ResumeCookie: "unipin_session",
			Baseline: []session.Cookie{
				{Name: "redeem_banner", Value: "yes"},
				{Name: "region", Value: "IN"},
				{Name: "CookieConsent", Value: "{stamp:'BdwMOWyJhyeycito6a5d/RwoCYRc53JWLvyV+4GNKCHN0VPZ4HjuVw==',necessary:true,preferences:false,statistics:false,marketing:false,method:'explicit',ver:1,utc:1741942679561,region:'in'}"},
			},
		},
		Cache: CacheConfig{
			Enabled:     true,
			RedisPrefix: "nc",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg *Config) *Config {
	out := *cfg
	out.Session.Baseline = append([]session.Cookie(nil), cfg.Session.Baseline...)
	return &out
}

// normalizeConfig fills derivable defaults and validates what cannot be
// defaulted. Web credentials are deliberately not required here: a missing
// web login surfaces as a persistent auth failure at resolve time, so an
// operator can supply credentials without restarting dependents. A missing
// API token is fatal because the token backend cannot do anything without
// one.
func normalizeConfig(cfg *Config) error {
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = 10 * time.Second
	}
	if cfg.Web.MaxHiddenFields <= 0 {
		cfg.Web.MaxHiddenFields = 5
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = 1
	}
	if cfg.API.DeviceID == "" {
		cfg.API.DeviceID = uuid.NewString()
	}

	switch cfg.Backend {
	case BackendWeb, BackendAPI:
	default:
		return fmt.Errorf("unknown backend %d", cfg.Backend)
	}

	if cfg.Backend == BackendWeb {
		if cfg.Web.BaseURL == "" {
			return fmt.Errorf("web backend requires a base URL")
		}
		if cfg.Session.StatePath == "" || cfg.Session.ResumePath == "" {
			return fmt.Errorf("web backend requires session state paths")
		}
	}

	return nil
}
