// Package server initializes and runs the notekeeper HTTP server.
// It selects the document store and object storage backends, applies
// migrations, runs the session sweeper and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/credentials"
	"github.com/dmitrijs2005/notekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/notekeeper/internal/server/imaging"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	sessions    *sessions.Store
	httpServer  *httpapi.HTTPServer
}

func newRepositoryManager(c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StoreType {
	case config.StoreMemory:
		return repomanager.NewInMemoryRepositoryManager(), nil
	case config.StorePostgres:
		m, err := repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", c.StoreType)
	}
}

// newBroker returns the object store and, for the local backend, the handler
// serving its signed URLs.
func newBroker(ctx context.Context, c *config.Config) (storage.Broker, *storage.LocalBroker, error) {
	switch c.StorageBackend {
	case config.BackendLocal:
		b, err := storage.NewLocalBroker(c.LocalStorageRoot, []byte(c.AssetSecret), c.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case config.BackendS3:
		b, err := storage.NewS3Broker(ctx, storage.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	broker, local, err := newBroker(ctx, c)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	creds, err := credentials.NewManager(c.BcryptCost)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	store := sessions.NewStore(rm.Repositories().Sessions(), c.SessionTTL, logger.With("module", "sessions"))
	pipeline := imaging.NewPipeline(broker, services.NewAssetKeyStore(rm), imaging.Options{
		MaxBytes:     c.MaxImageBytes,
		Size:         c.ThumbnailSize,
		SignedURLTTL: c.SignedURLTTL,
	}, logger.With("module", "imaging"))

	opts := httpapi.Options{
		Address:        c.EndpointAddrHTTP,
		CORSOrigin:     c.CORSOrigin,
		LoginRateLimit: c.LoginRateLimit,
		MaxImageBytes:  c.MaxImageBytes,
	}
	if local != nil {
		opts.Assets = local.Handler()
	}

	hs := httpapi.NewHTTPServer(opts,
		services.NewAccountService(rm, creds, store, pipeline, broker, c, logger.With("module", "accounts")),
		services.NewNoteService(rm),
		auth.NewGate(store, logger.With("module", "gate")),
		rm,
		logger,
	)

	return &App{config: c, logger: logger, repomanager: rm, sessions: store, httpServer: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.RunSweeper(ctx, app.config.SessionSweepInterval)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(context.Background(), "close store", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
