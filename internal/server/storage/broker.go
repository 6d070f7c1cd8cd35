// Package storage puts, deletes and grants time-limited read access to
// private objects, either in an S3-compatible bucket or on the local
// filesystem.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Broker is the object store used for profile images. All backend failures
// wrap common.ErrStorage.
type Broker interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (*models.SignedURLGrant, error)
}

const (
	// KeyPrefix is the namespace of profile images.
	KeyPrefix = "avatars/"

	keyRandBytes = 16
)

// NewKey returns a fresh, unguessable object key.
func NewKey() (string, error) {
	s, err := common.MakeRandHexString(keyRandBytes)
	if err != nil {
		return "", fmt.Errorf("generate storage key: %w", err)
	}
	return KeyPrefix + s, nil
}

// ValidKey reports whether key has the shape produced by NewKey.
func ValidKey(key string) bool {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	return ok && common.IsHexString(rest, 2*keyRandBytes)
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: malformed object key %q", common.ErrValidation, key)
	}
	return nil
}

func checkTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: signed url ttl must be positive", common.ErrValidation)
	}
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}
