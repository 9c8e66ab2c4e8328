package namecheck

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much raw response text travels in a transient
// outcome's message.
const maxErrorBody = 256

// apiEnvelope is the subset of the lookup API response the engine cares
// about. Both shapes arrive on the same endpoint: transaction results
// carry transaction/unipinRes, error results carry success/statusCode.
type apiEnvelope struct {
	Transaction string `json:"transaction"`
	UnipinRes   struct {
		Username string `json:"username"`
	} `json:"unipinRes"`
	Success    *bool  `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// classifyAPI maps one lookup response to an outcome. The second return
// reports whether a token refresh followed by a single retry could help.
func classifyAPI(status int, body []byte) (Outcome, bool) {
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return authFailure(status, "upstream rejected credentials"), true
		}
		return transient(status, "undecodable upstream response"), false
	}

	// First match wins: a completed transaction outranks the error-envelope
	// markers. A SUCCESS without a username falls through to the transient
	// tail since no rule covers it.
	switch env.Transaction {
	case "SUCCESS":
		if name := strings.TrimSpace(env.UnipinRes.Username); name != "" {
			return resolved(name), false
		}
	case "FAILED":
		return notFound("incorrect player id"), false
	}

	// The API reports an expired bearer as a 200 with an error envelope.
	if env.Success != nil && !*env.Success && env.StatusCode == http.StatusForbidden {
		return authFailure(status, "upstream reported stale authorization"), true
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return authFailure(status, "upstream rejected credentials"), true
	}

	msg := strings.TrimSpace(env.Message)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
	}
	return transient(status, msg), false
}
