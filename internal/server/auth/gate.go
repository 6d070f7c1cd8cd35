package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/shared/respond"
)

// Rejection codes written by the Gate.
const (
	CodeMissingSession          = "missing_session"
	CodeInvalidSession          = "invalid_session"
	CodeSessionStoreUnavailable = "session_store_unavailable"
)

// SessionResolver looks up a session by token.
type SessionResolver interface {
	Get(ctx context.Context, token string) (*models.Session, error)
}

// Gate admits only requests carrying a usable session token in the
// sessionid header.
type Gate struct {
	sessions SessionResolver
	logger   logging.Logger
}

func NewGate(sessions SessionResolver, logger logging.Logger) *Gate {
	return &Gate{sessions: sessions, logger: logger}
}

// Require wraps next. Rejected requests never reach it:
// no header is 401 missing_session, an unusable token is 401 invalid_session
// and a failing session store is 503 session_store_unavailable.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := strings.TrimSpace(r.Header.Get(common.SessionHeaderName))
		if token == "" {
			respond.Error(w, http.StatusUnauthorized, CodeMissingSession, "session header is required")
			return
		}

		sess, err := g.sessions.Get(ctx, token)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrNotFound):
			respond.Error(w, http.StatusUnauthorized, CodeInvalidSession, "session is invalid or expired")
			return
		default:
			g.logger.Error(ctx, "session lookup failed", "error", err)
			respond.Error(w, http.StatusServiceUnavailable, CodeSessionStoreUnavailable, "session store is unavailable")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAccount(ctx, sess.AccountID, token)))
	})
}
