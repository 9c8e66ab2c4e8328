package namecheck

// OutcomeKind tags the variant carried by an [Outcome].
//
// The zero value is OutcomeTransient so an accidentally zero Outcome reads as
// a transient failure, never as a successful resolution.
type OutcomeKind uint8

const (
	// OutcomeTransient is a retry-later condition: network failure, timeout,
	// unexpected upstream shape, or an upstream 5xx.
	OutcomeTransient OutcomeKind = iota
	// OutcomeResolved carries a username.
	OutcomeResolved
	// OutcomeNotFound means the upstream answered and no such player exists.
	OutcomeNotFound
	// OutcomeAuthFailure means the session or token was not accepted.
	OutcomeAuthFailure
)

// String describes the kind for audit events and HTTP mapping.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAuthFailure:
		return "auth_failure"
	default:
		return "transient"
	}
}

// Outcome is the classified result of one resolution. Exactly one variant is
// meaningful per Kind: Username for OutcomeResolved; StatusCode and Message
// for the failure kinds. StatusCode 0 means no HTTP response was ever
// received.
type Outcome struct {
	Kind       OutcomeKind
	Username   string
	StatusCode int
	Message    string
}

func resolved(username string) Outcome {
	return Outcome{Kind: OutcomeResolved, Username: username}
}

func notFound(message string) Outcome {
	return Outcome{Kind: OutcomeNotFound, Message: message}
}

func authFailure(status int, message string) Outcome {
	return Outcome{Kind: OutcomeAuthFailure, StatusCode: status, Message: message}
}

func transient(status int, message string) Outcome {
	return Outcome{Kind: OutcomeTransient, StatusCode: status, Message: message}
}

// Backend selects which upstream surface the engine resolves against.
type Backend uint8

const (
	// BackendWeb is the cookie/CSRF shop surface (inquiry plus checkout
	// scrape).
	BackendWeb Backend = iota
	// BackendAPI is the bearer-token lookup API.
	BackendAPI
)

// String returns the configuration name of the backend.
func (b Backend) String() string {
	if b == BackendAPI {
		return "api"
	}
	return "web"
}
