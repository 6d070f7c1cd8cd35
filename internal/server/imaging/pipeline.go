// Package imaging turns an uploaded profile picture into a stored square
// thumbnail and makes it the account's current asset.
//
// Replace runs the stages
//
//	validating -> deleting_old -> transforming -> uploading -> committing -> done
//
// and stops at the first failure with a *PipelineError naming the stage.
// The account's asset key is set only in the committing stage. When a run
// fails after the old object was deleted, the key is cleared instead.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

type Stage string

const (
	StageValidating   Stage = "validating"
	StageDeletingOld  Stage = "deleting_old"
	StageTransforming Stage = "transforming"
	StageUploading    Stage = "uploading"
	StageCommitting   Stage = "committing"
	StageDone         Stage = "done"
)

// PipelineError reports the stage a pipeline run failed in.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("image pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func fail(stage Stage, err error) error {
	return &PipelineError{Stage: stage, Err: err}
}

// AccountStore reads accounts and commits their asset key.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// CommitAssetKey sets the account's asset key and returns the key it
	// replaced.
	CommitAssetKey(ctx context.Context, accountID, key string) (previous string, err error)
	// ClearAssetKey empties the account's asset key if it still equals
	// expected and reports whether it did.
	ClearAssetKey(ctx context.Context, accountID, expected string) (bool, error)
}

type Options struct {
	MaxBytes     int64
	MaxPixels    int
	Size         int
	SignedURLTTL time.Duration
}

const (
	// DefaultMaxPixels bounds decoded image area.
	DefaultMaxPixels = 40_000_000
	DefaultSize      = 256
)

type Pipeline struct {
	broker   storage.Broker
	accounts AccountStore
	opts     Options
	logger   logging.Logger
	newKey   func() (string, error)
}

func NewPipeline(broker storage.Broker, accounts AccountStore, opts Options, logger logging.Logger) *Pipeline {
	if opts.MaxPixels == 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	return &Pipeline{broker: broker, accounts: accounts, opts: opts, logger: logger, newKey: storage.NewKey}
}

// Object is an uploaded, not yet committed thumbnail.
type Object struct {
	Key         string
	ContentType string
}

// Ingest validates, transforms and uploads data without touching any
// account. Sign-up commits the returned key as part of account creation.
func (p *Pipeline) Ingest(ctx context.Context, data []byte) (*Object, error) {
	f, err := validate(data, p.opts.MaxBytes, p.opts.MaxPixels)
	if err != nil {
		return nil, fail(StageValidating, err)
	}
	return p.transformAndUpload(ctx, data, f)
}

func (p *Pipeline) transformAndUpload(ctx context.Context, data []byte, f format) (*Object, error) {
	thumb, err := thumbnail(data, f, p.opts.Size)
	if err != nil {
		return nil, fail(StageTransforming, err)
	}

	key, err := p.newKey()
	if err != nil {
		return nil, fail(StageUploading, err)
	}
	if err := p.broker.Put(ctx, key, thumb, f.contentType); err != nil {
		return nil, fail(StageUploading, err)
	}
	return &Object{Key: key, ContentType: f.contentType}, nil
}

// Replace makes data the account's profile picture and returns a signed URL
// for it.
func (p *Pipeline) Replace(ctx context.Context, accountID string, data []byte) (*models.SignedURLGrant, error) {
	f, err := validate(data, p.opts.MaxBytes, p.opts.MaxPixels)
	if err != nil {
		return nil, fail(StageValidating, err)
	}

	account, err := p.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fail(StageDeletingOld, err)
	}
	deleted := account.AssetKey
	if deleted != "" {
		if err := p.broker.Delete(ctx, deleted); err != nil {
			return nil, fail(StageDeletingOld, err)
		}
	}

	obj, err := p.transformAndUpload(ctx, data, f)
	if err != nil {
		p.release(ctx, accountID, deleted)
		return nil, err
	}

	previous, err := p.accounts.CommitAssetKey(ctx, accountID, obj.Key)
	if err != nil {
		p.discard(ctx, obj.Key, "uncommitted upload")
		p.release(ctx, accountID, deleted)
		return nil, fail(StageCommitting, err)
	}
	// A concurrent replace committed between our delete and our commit; its
	// object is no longer referenced by anyone.
	if previous != "" && previous != deleted {
		p.discard(ctx, previous, "superseded upload")
	}

	grant, err := p.broker.SignedURL(ctx, obj.Key, p.opts.SignedURLTTL)
	if err != nil {
		return nil, fail(StageDone, err)
	}
	return grant, nil
}

// Discard deletes an uploaded object that will never be committed.
func (p *Pipeline) Discard(ctx context.Context, key string) {
	p.discard(ctx, key, "abandoned upload")
}

func (p *Pipeline) discard(ctx context.Context, key, reason string) {
	// runs even after the client went away
	ctx = context.WithoutCancel(ctx)
	if err := p.broker.Delete(ctx, key); err != nil {
		p.logger.Warn(ctx, "orphaned object left in storage", "key", key, "reason", reason, "error", err)
	}
}

// release clears the account's key after its object was deleted but no
// replacement got committed, so no signed URL is issued for a missing object.
// A key committed by a concurrent replace in the meantime is left alone.
func (p *Pipeline) release(ctx context.Context, accountID, deleted string) {
	if deleted == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if _, err := p.accounts.ClearAssetKey(ctx, accountID, deleted); err != nil {
		p.logger.Warn(ctx, "account still references a deleted object", "account_id", accountID, "key", deleted, "error", err)
	}
}

// StageOf returns the failing stage of err, if it came from a pipeline run.
func StageOf(err error) (Stage, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
