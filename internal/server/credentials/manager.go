// Package credentials hashes and verifies account passwords with bcrypt.
//
// A stored record is the bcrypt modular-crypt string ("$2a$<cost>$<salt+digest>"),
// so algorithm, work factor and salt travel with the digest.
package credentials

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Manager hashes and verifies passwords at a fixed cost.
type Manager struct {
	cost  int
	dummy []byte
}

// NewManager returns a Manager using the given bcrypt cost.
func NewManager(cost int) (*Manager, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range", common.ErrValidation, cost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		return nil, err
	}
	return &Manager{cost: cost, dummy: dummy}, nil
}

// Hash returns a new record for password. Every call draws a fresh salt.
func (m *Manager) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", common.ErrValidation, MaxPasswordBytes)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify reports whether password matches record. A mismatch is (false, nil);
// ErrCredential is returned only when record itself is unusable.
func (m *Manager) Verify(password, record string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(record)); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrCredential, err)
	}

	err := bcrypt.CompareHashAndPassword([]byte(record), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrCredential, err)
	}
}

// DummyVerify spends the same work as Verify against a fixed record. Login
// calls it for unknown users so that response time does not reveal whether
// an account exists.
func (m *Manager) DummyVerify(password string) {
	_ = bcrypt.CompareHashAndPassword(m.dummy, []byte(password))
}
