package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/credentials"
	"github.com/dmitrijs2005/notekeeper/internal/server/imaging"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	sessionrepo "github.com/dmitrijs2005/notekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc      *AccountService
	notes    *NoteService
	rm       *repomanager.InMemoryRepositoryManager
	store    *sessions.Store
	objects  string
	broker   *storage.LocalBroker
	pipeline *imaging.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	rm := repomanager.NewInMemoryRepositoryManager()
	creds, err := credentials.NewManager(bcrypt.MinCost)
	require.NoError(t, err)

	logger := logging.Nop()
	store := sessions.NewStore(rm.Sessions(), cfg.SessionTTL, logger)

	objects := filepath.Join(t.TempDir(), "objects")
	broker, err := storage.NewLocalBroker(objects, []byte("secret"), "http://localhost:8080")
	require.NoError(t, err)

	pipeline := imaging.NewPipeline(broker, NewAssetKeyStore(rm), imaging.Options{
		MaxBytes: cfg.MaxImageBytes, Size: 32, SignedURLTTL: cfg.SignedURLTTL,
	}, logger)

	return &fixture{
		svc:      NewAccountService(rm, creds, store, pipeline, broker, cfg, logger),
		notes:    NewNoteService(rm),
		rm:       rm,
		store:    store,
		objects:  objects,
		broker:   broker,
		pipeline: pipeline,
	}
}

func (f *fixture) sessionCount() int {
	return f.rm.Sessions().(*sessionrepo.MemoryRepository).Len()
}

// objectCount counts stored objects, ignoring metadata sidecars.
func (f *fixture) objectCount(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(f.objects, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasSuffix(path, ".type") {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func alice() SignUpInput {
	return SignUpInput{FirstName: "Alice", LastName: "Liddell", UserName: "alice", Password: "longenough1"}
}

func TestSignUpThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, "alice@meroni.com", res.Account.Email)
	assert.NotEmpty(t, res.Account.ID)
	assert.NotEqual(t, "longenough1", res.Account.PasswordHash)
	assert.Nil(t, res.Image)

	sess, err := f.store.Get(ctx, res.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, sess.AccountID)

	for _, login := range []string{"alice", "alice@meroni.com", "ALICE@meroni.com"} {
		got, err := f.svc.Login(ctx, login, "longenough1")
		require.NoError(t, err, login)
		assert.Equal(t, res.Account.ID, got.Account.ID)
		assert.NotEqual(t, res.Session.Token, got.Session.Token)
	}
}

func TestLogin_WrongPasswordCreatesNoSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)
	before := f.sessionCount()

	_, err = f.svc.Login(ctx, "alice", "longenough2")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "bob", "longenough1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.Equal(t, before, f.sessionCount())
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = f.svc.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestLogin_CorruptHashIsNotAMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)

	// stored record damaged out of band
	users := f.rm.Users()
	acc, err := users.GetByID(ctx, res.Account.ID)
	require.NoError(t, err)
	acc.UserName = "alice2"
	acc.Email = "alice2@meroni.com"
	acc.PasswordHash = "$2a$99$broken"
	_, err = users.Create(ctx, acc)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "alice2", "longenough1")
	assert.ErrorIs(t, err, common.ErrCredential)
}

func TestSignUp_Validation(t *testing.T) {
	f := newFixture(t)

	for name, mutate := range map[string]func(*SignUpInput){
		"short password":   func(in *SignUpInput) { in.Password = "short" },
		"empty username":   func(in *SignUpInput) { in.UserName = "" },
		"username spaces":  func(in *SignUpInput) { in.UserName = "al ice" },
		"username symbols": func(in *SignUpInput) { in.UserName = "alice@x" },
		"long name":        func(in *SignUpInput) { in.FirstName = strings.Repeat("a", 101) },
		"long password":    func(in *SignUpInput) { in.Password = strings.Repeat("a", 73) },
	} {
		t.Run(name, func(t *testing.T) {
			in := alice()
			mutate(&in)
			_, err := f.svc.SignUp(context.Background(), in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
	assert.Zero(t, f.sessionCount())
}

func TestSignUp_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)

	in := alice()
	in.UserName = "ALICE"
	in.Image = pngImage(t, 20, 20)
	_, err = f.svc.SignUp(ctx, in)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
	assert.Zero(t, f.objectCount(t), "image of a rejected sign-up must not stay in storage")
}

func TestSignUp_WithImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := alice()
	in.Image = pngImage(t, 60, 40)
	res, err := f.svc.SignUp(ctx, in)
	require.NoError(t, err)

	require.NotNil(t, res.Image)
	assert.True(t, storage.ValidKey(res.Account.AssetKey))
	assert.Equal(t, res.Account.AssetKey, res.Image.Key)
	assert.Equal(t, 1, f.objectCount(t))

	login, err := f.svc.Login(ctx, "alice", "longenough1")
	require.NoError(t, err)
	require.NotNil(t, login.Image)
	assert.Equal(t, res.Account.AssetKey, login.Image.Key)
}

func TestSignUp_BadImage(t *testing.T) {
	f := newFixture(t)

	in := alice()
	in.Image = []byte("not an image")
	_, err := f.svc.SignUp(context.Background(), in)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Login(context.Background(), "alice", "longenough1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials, "no account is created")
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, res.Session.Token))
	_, err = f.store.Get(ctx, res.Session.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, f.svc.Logout(ctx, res.Session.Token))
}

func TestReplaceProfilePicture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)

	_, err = f.svc.ProfilePicture(ctx, res.Account.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	first, err := f.svc.ReplaceProfilePicture(ctx, res.Account.ID, pngImage(t, 50, 50))
	require.NoError(t, err)
	second, err := f.svc.ReplaceProfilePicture(ctx, res.Account.ID, pngImage(t, 70, 30))
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, 1, f.objectCount(t), "the replaced picture must be deleted")

	acc, err := f.rm.Users().GetByID(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Key, acc.AssetKey)

	grant, err := f.svc.ProfilePicture(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Key, grant.Key)
	assert.True(t, grant.ExpiresAt.After(time.Now()))
	u, err := url.Parse(grant.URL)
	require.NoError(t, err)
	assert.Equal(t, "/assets/"+second.Key, u.Path)
	assert.NotEmpty(t, u.Query().Get("token"))
}

func TestReplaceProfilePicture_CorruptImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SignUp(ctx, alice())
	require.NoError(t, err)
	first, err := f.svc.ReplaceProfilePicture(ctx, res.Account.ID, pngImage(t, 50, 50))
	require.NoError(t, err)

	// unreadable header: rejected up front, the current picture stays
	header := append(pngImage(t, 50, 50)[:8], []byte("garbage garbage garbage")...)
	_, err = f.svc.ReplaceProfilePicture(ctx, res.Account.ID, header)
	assert.ErrorIs(t, err, common.ErrValidation)
	grant, err := f.svc.ProfilePicture(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Key, grant.Key)

	// readable header, broken pixels: the old picture is already gone
	pixels := pngImage(t, 50, 50)[:40]
	_, err = f.svc.ReplaceProfilePicture(ctx, res.Account.ID, pixels)
	stage, ok := imaging.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, imaging.StageTransforming, stage)

	acc, err := f.rm.Users().GetByID(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Empty(t, acc.AssetKey)
	assert.Zero(t, f.objectCount(t))

	_, err = f.svc.ProfilePicture(ctx, res.Account.ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "no url for a deleted object")

	login, err := f.svc.Login(ctx, "alice", "longenough1")
	require.NoError(t, err)
	assert.Nil(t, login.Image)
}
