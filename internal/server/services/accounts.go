// Package services implements the account and note use cases of the server
// on top of the repositories, the session store and the object store.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/credentials"
	"github.com/dmitrijs2005/notekeeper/internal/server/imaging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

const (
	MinPasswordLength = 8
	maxNameLength     = 100
)

var userNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

type SignUpInput struct {
	FirstName  string
	MiddleName string
	LastName   string
	UserName   string
	Password   string
	// Image is an optional profile picture.
	Image []byte
}

// AuthResult is returned by a successful sign-up or login.
type AuthResult struct {
	Account *models.Account
	Session *models.Session
	// Image is nil when the account has no profile picture.
	Image *models.SignedURLGrant
}

type AccountService struct {
	repomanager  repomanager.RepositoryManager
	credentials  *credentials.Manager
	sessions     *sessions.Store
	pipeline     *imaging.Pipeline
	broker       storage.Broker
	loginDomain  string
	signedURLTTL time.Duration
	logger       logging.Logger
}

func NewAccountService(
	m repomanager.RepositoryManager,
	creds *credentials.Manager,
	store *sessions.Store,
	pipeline *imaging.Pipeline,
	broker storage.Broker,
	cfg *config.Config,
	logger logging.Logger,
) *AccountService {
	return &AccountService{
		repomanager:  m,
		credentials:  creds,
		sessions:     store,
		pipeline:     pipeline,
		broker:       broker,
		loginDomain:  cfg.LoginDomain,
		signedURLTTL: cfg.SignedURLTTL,
		logger:       logger,
	}
}

// LoginEmail derives the login email of userName.
func (s *AccountService) LoginEmail(userName string) string {
	return strings.ToLower(userName) + "@" + s.loginDomain
}

func validateSignUp(in *SignUpInput) error {
	in.UserName = strings.TrimSpace(in.UserName)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.MiddleName = strings.TrimSpace(in.MiddleName)
	in.LastName = strings.TrimSpace(in.LastName)

	if !userNameRe.MatchString(in.UserName) {
		return fmt.Errorf("%w: username must be 3-32 letters, digits, '.', '_' or '-'", common.ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	}
	for _, n := range []string{in.FirstName, in.MiddleName, in.LastName} {
		if len(n) > maxNameLength {
			return fmt.Errorf("%w: name longer than %d characters", common.ErrValidation, maxNameLength)
		}
	}
	return nil
}

// SignUp registers an account, stores its optional profile picture and
// opens a session.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	if err := validateSignUp(&in); err != nil {
		return nil, err
	}

	hash, err := s.credentials.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		LastName:     in.LastName,
		UserName:     in.UserName,
		Email:        s.LoginEmail(in.UserName),
		PasswordHash: hash,
	}

	if len(in.Image) > 0 {
		obj, err := s.pipeline.Ingest(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		account.AssetKey = obj.Key
	}

	created, err := s.repomanager.Repositories().Users().Create(ctx, account)
	if err != nil {
		if account.AssetKey != "" {
			s.pipeline.Discard(ctx, account.AssetKey)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.openSession(ctx, created)
}

// Login authenticates by username or login email. Unknown users and wrong
// passwords both yield common.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", common.ErrValidation)
	}

	account, err := s.repomanager.Repositories().Users().GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.credentials.DummyVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	ok, err := s.credentials.Verify(password, account.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unusable", "account_id", account.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.openSession(ctx, account)
}

func (s *AccountService) openSession(ctx context.Context, account *models.Account) (*AuthResult, error) {
	res := &AuthResult{Account: account}

	if account.AssetKey != "" {
		grant, err := s.broker.SignedURL(ctx, account.AssetKey, s.signedURLTTL)
		if err != nil {
			return nil, err
		}
		res.Image = grant
	}

	sess, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	res.Session = sess
	return res, nil
}

// Logout revokes the session token. Revoking twice is not an error.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// ProfilePicture issues a fresh signed URL for the account's current asset.
// common.ErrNotFound means the account has none.
func (s *AccountService) ProfilePicture(ctx context.Context, accountID string) (*models.SignedURLGrant, error) {
	account, err := s.repomanager.Repositories().Users().GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.AssetKey == "" {
		return nil, common.ErrNotFound
	}
	return s.broker.SignedURL(ctx, account.AssetKey, s.signedURLTTL)
}

// ReplaceProfilePicture runs the image pipeline for the account.
func (s *AccountService) ReplaceProfilePicture(ctx context.Context, accountID string, data []byte) (*models.SignedURLGrant, error) {
	return s.pipeline.Replace(ctx, accountID, data)
}
