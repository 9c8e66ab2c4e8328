package namecheck

import (
	"strings"
	"testing"
)

func TestClassifyAPI(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  OutcomeKind
		wantName  string
		wantRetry bool
	}{
		{
			name:     "transaction success",
			status:   200,
			body:     `{"transaction":"SUCCESS","unipinRes":{"username":"ProGamer99"}}`,
			wantKind: OutcomeResolved,
			wantName: "ProGamer99",
		},
		{
			name:     "transaction success without username",
			status:   200,
			body:     `{"transaction":"SUCCESS","unipinRes":{"username":"  "}}`,
			wantKind: OutcomeTransient,
		},
		{
			name:     "transaction failed",
			status:   200,
			body:     `{"transaction":"FAILED"}`,
			wantKind: OutcomeNotFound,
		},
		{
			name:      "stale authorization envelope",
			status:    200,
			body:      `{"success":false,"statusCode":403,"message":"Forbidden"}`,
			wantKind:  OutcomeAuthFailure,
			wantRetry: true,
		},
		{
			name:      "http unauthorized with garbage body",
			status:    401,
			body:      `<html>denied</html>`,
			wantKind:  OutcomeAuthFailure,
			wantRetry: true,
		},
		{
			name:      "http forbidden with empty envelope",
			status:    403,
			body:      `{}`,
			wantKind:  OutcomeAuthFailure,
			wantRetry: true,
		},
		{
			name:     "undecodable 200",
			status:   200,
			body:     `<html>maintenance</html>`,
			wantKind: OutcomeTransient,
		},
		{
			name:     "unknown envelope",
			status:   500,
			body:     `{"message":"upstream exploded"}`,
			wantKind: OutcomeTransient,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, retry := classifyAPI(tc.status, []byte(tc.body))
			if out.Kind != tc.wantKind {
				t.Fatalf("kind = %v, want %v", out.Kind, tc.wantKind)
			}
			if out.Username != tc.wantName {
				t.Fatalf("username = %q, want %q", out.Username, tc.wantName)
			}
			if retry != tc.wantRetry {
				t.Fatalf("retryable = %v, want %v", retry, tc.wantRetry)
			}
		})
	}
}

func TestClassifyAPICarriesMessage(t *testing.T) {
	out, _ := classifyAPI(500, []byte(`{"message":"upstream exploded"}`))
	if out.Message != "upstream exploded" {
		t.Fatalf("message = %q", out.Message)
	}
	if out.StatusCode != 500 {
		t.Fatalf("status = %d", out.StatusCode)
	}
}

func TestClassifyAPIFallThroughCarriesRawBody(t *testing.T) {
	body := `{"weird":"shape"}`
	out, retry := classifyAPI(500, []byte(body))
	if out.Kind != OutcomeTransient || retry {
		t.Fatalf("outcome = %+v retry = %v", out, retry)
	}
	if out.Message != body {
		t.Fatalf("message = %q, want the raw body", out.Message)
	}

	long := `{"pad":"` + strings.Repeat("x", 2*maxErrorBody) + `"}`
	out, _ = classifyAPI(500, []byte(long))
	if len(out.Message) != maxErrorBody {
		t.Fatalf("message length = %d, want %d", len(out.Message), maxErrorBody)
	}
}

func TestClassifyAPICompletedTransactionOutranksErrorEnvelope(t *testing.T) {
	body := `{"transaction":"SUCCESS","unipinRes":{"username":"ProGamer99"},"success":false,"statusCode":403}`
	out, retry := classifyAPI(200, []byte(body))
	if out.Kind != OutcomeResolved || out.Username != "ProGamer99" || retry {
		t.Fatalf("outcome = %+v retry = %v", out, retry)
	}
}
