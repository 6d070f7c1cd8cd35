package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/shared/respond"
	"github.com/golang-jwt/jwt/v5"
)

// AssetsPath is where LocalBroker.Handler expects to be mounted.
const AssetsPath = "/assets/"

const contentTypeSuffix = ".type"

// assetClaims is the payload of a local signed URL token.
type assetClaims struct {
	jwt.RegisteredClaims
}

// LocalBroker keeps objects under a directory on disk. Its signed URLs point
// at Handler and carry an HS256 token bound to one key and an expiry.
type LocalBroker struct {
	root    string
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewLocalBroker(root string, secret []byte, baseURL string) (*LocalBroker, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: asset signing secret is empty", common.ErrValidation)
	}
	dir, err := filex.EnsureDir(root)
	if err != nil {
		return nil, storageError("prepare root", err)
	}
	return &LocalBroker{
		root:    dir,
		secret:  secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

func (b *LocalBroker) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

func (b *LocalBroker) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storageError("put object", err)
	}

	p := b.path(key)
	if err := filex.WriteFileAtomic(p+contentTypeSuffix, []byte(contentType), 0o640); err != nil {
		return storageError("put object", err)
	}
	if err := filex.WriteFileAtomic(p, data, 0o640); err != nil {
		return storageError("put object", err)
	}
	return nil
}

func (b *LocalBroker) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storageError("delete object", err)
	}

	p := b.path(key)
	for _, name := range []string{p, p + contentTypeSuffix} {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return storageError("delete object", err)
		}
	}
	return nil
}

func (b *LocalBroker) SignedURL(_ context.Context, key string, ttl time.Duration) (*models.SignedURLGrant, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkTTL(ttl); err != nil {
		return nil, err
	}

	issued := b.now().UTC()
	expires := issued.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, assetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return nil, storageError("sign url", err)
	}

	return &models.SignedURLGrant{
		Key:       key,
		URL:       b.baseURL + AssetsPath + key + "?" + url.Values{"token": {signed}}.Encode(),
		IssuedAt:  issued,
		ExpiresAt: expires,
	}, nil
}

// verify checks that token grants read access to key.
func (b *LocalBroker) verify(token, key string) error {
	claims := &assetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return b.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return err
	}
	if !parsed.Valid || claims.Subject != key {
		return common.ErrUnauthorized
	}
	return nil
}

// Handler serves objects for valid signed URLs. Mount it at AssetsPath.
func (b *LocalBroker) Handler() http.Handler {
	return http.StripPrefix(AssetsPath, http.HandlerFunc(b.serveAsset))
}

func (b *LocalBroker) serveAsset(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if !ValidKey(key) {
		respond.Error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}

	if err := b.verify(r.URL.Query().Get("token"), key); err != nil {
		respond.Error(w, http.StatusForbidden, "invalid_signature", "signed url is invalid or expired")
		return
	}

	p := b.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respond.Error(w, http.StatusNotFound, "not_found", "asset not found")
			return
		}
		respond.Error(w, http.StatusBadGateway, "storage_error", "asset could not be read")
		return
	}

	contentType := "application/octet-stream"
	if ct, err := os.ReadFile(p + contentTypeSuffix); err == nil && len(ct) > 0 {
		contentType = string(ct)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
