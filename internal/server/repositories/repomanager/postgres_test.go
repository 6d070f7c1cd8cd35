package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_UsesPgxDriver(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	}

	m, err := NewPostgresRepositoryManager("postgres://x")
	require.NoError(t, err)
	var _ RepositoryManager = m
	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://x", gotDSN)
}

func TestNewPostgresRepositoryManager_OpenError(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := NewPostgresRepositoryManager("::")
	assert.ErrorContains(t, err, "bad dsn")
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	r := NewPostgresRepositoryManagerWithDB(db).Repositories()

	assert.IsType(t, &users.PostgresRepository{}, r.Users())
	assert.IsType(t, &sessions.PostgresRepository{}, r.Sessions())
	assert.IsType(t, &notes.PostgresRepository{}, r.Notes())
}

func TestWithTx_BindsRepositoriesToTransaction(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT asset_key FROM users`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"asset_key"}).AddRow("avatars/old"))
	mock.ExpectExec(`UPDATE users SET asset_key`).
		WithArgs("u-1", "avatars/new").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewPostgresRepositoryManagerWithDB(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		prev, err := r.Users().LockAssetKey(ctx, "u-1")
		if err != nil {
			return err
		}
		if prev != "avatars/old" {
			return errors.New("unexpected previous key")
		}
		return r.Users().SetAssetKey(ctx, "u-1", "avatars/new")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewPostgresRepositoryManagerWithDB(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return common.ErrNotFound
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	m := NewPostgresRepositoryManagerWithDB(db)
	require.NoError(t, m.Ping(context.Background()))
	assert.ErrorIs(t, m.Ping(context.Background()), common.ErrStoreUnavailable)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManagerWithDB(db)
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManagerWithDB(db)
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
