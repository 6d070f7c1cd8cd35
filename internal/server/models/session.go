package models

import "time"

// Session is a server-side authentication record. Token holds the plaintext
// value only on the copy returned at creation; stored records are looked up
// by a digest of it.
type Session struct {
	Token         string
	AccountID     string
	Authenticated bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Usable reports whether the session may authenticate a request at now.
func (s *Session) Usable(now time.Time) bool {
	return s.Authenticated && now.Before(s.ExpiresAt)
}
