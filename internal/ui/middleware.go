package ui

import (
	"context"
	"net/http"

	"github.com/me/covweb/internal/logging"
)

// Context keys for session data.
type contextKey string

const (
	sessionContextKey contextKey = "session"
)

// SessionFromContext retrieves the session from the request context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey).(*Session)
	return sess
}

// SessionMiddleware attaches the browser's session to the request context,
// creating one and setting its cookie when the request has none.
func (ui *UI) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := ui.sessions.GetSessionFromRequest(r)
		if sess == nil {
			sess = ui.sessions.CreateSession()
			SetSessionCookie(w, sess, ui.secure)
			ui.logger.Debug("session created", "session", sess.ID)
		}

		logging.AddRequestAttrs(r.Context(), "session", sess.ID)
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
