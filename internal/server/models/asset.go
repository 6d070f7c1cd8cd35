package models

import "time"

// SignedURLGrant is a time-limited read URL for a private asset. Grants are
// computed on demand and never stored.
type SignedURLGrant struct {
	Key       string
	URL       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
