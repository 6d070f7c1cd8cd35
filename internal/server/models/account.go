// Package models defines server-side records persisted in the document store
// and the values exchanged with the object store.
package models

import "time"

// Account is a registered user. PasswordHash is a bcrypt record (algorithm
// tag, cost, salt and digest in one string) and is only ever produced by the
// credential manager. AssetKey names the current profile image in object
// storage; empty means none.
type Account struct {
	ID           string
	FirstName    string
	MiddleName   string
	LastName     string
	UserName     string
	Email        string
	PasswordHash string
	AssetKey     string
	CreatedAt    time.Time
}
