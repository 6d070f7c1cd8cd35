// Package auth resolves the session of an incoming request and carries the
// authenticated account through the request context.
package auth

import "context"

type ctxKey string

const (
	accountIDKey    ctxKey = "accountID"
	sessionTokenKey ctxKey = "sessionToken"
)

// WithAccount returns ctx carrying the authenticated account and its session token.
func WithAccount(ctx context.Context, accountID, token string) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return context.WithValue(ctx, sessionTokenKey, token)
}

// AccountID returns the account resolved by the Gate.
func AccountID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accountIDKey).(string)
	return v, ok && v != ""
}

// SessionToken returns the session token the request was authenticated with.
func SessionToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionTokenKey).(string)
	return v, ok && v != ""
}
