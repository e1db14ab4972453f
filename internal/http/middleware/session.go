package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionHeader carries the browser session identifier. Session state (gate
// flag, active filter, booking draft, assistant transcript) lives in memory
// keyed by this value and resets when the client drops the header.
const SessionHeader = "X-Session-Id"

type contextKey string

const sessionIDKey contextKey = "sessionID"

// Session ensures every request carries a session id, minting a fresh one
// when the header is absent and echoing it back so the client can persist it.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		w.Header().Set(SessionHeader, sessionID)
		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID returns the session id attached by the Session middleware.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
