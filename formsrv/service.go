// Package formsrv composes the form service: the store, the identity
// provider, the mail worker and the web server with its pages.
package formsrv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/G-Node/formsrv/formsrv/auth"
	"github.com/G-Node/formsrv/formsrv/builder"
	"github.com/G-Node/formsrv/formsrv/db"
	"github.com/G-Node/formsrv/formsrv/web"
	"github.com/G-Node/formsrv/formsrv/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// mailQueueSize is the number of confirmation mails that can wait for
// delivery.
const mailQueueSize = 100

// Service represents the full form service which contains a web server, a
// database for accounts, forms and submissions, and a worker that delivers
// confirmation mails.
type Service struct {
	web    *web.Server
	db     *db.Connection
	mailer *worker.Worker
	auth   auth.Provider
	log    *zap.Logger
	loc    *time.Location
	policy builder.Policy
	Config *Config
}

// NewService creates a new Service with the given configuration.  The
// configuration must have its defaults set (see ReadConfig).
func NewService(cfg *Config, logger *zap.Logger) (*Service, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := new(Service)
	srv.Config = cfg
	srv.log = logger
	srv.loc, _ = time.LoadLocation(cfg.Timezone)
	srv.policy, _ = builder.ParsePolicy(cfg.FieldPolicy)

	// DB
	srv.log.Info("Initialising database", zap.String("driver", cfg.DB.Driver), zap.String("path", cfg.DB.Path))
	conn, err := db.New(cfg.DB.Driver, cfg.DB.Path, logger)
	if err != nil {
		return nil, err
	}
	conn.ShowSQL(cfg.DB.ShowSQL)
	srv.db = conn

	// Mail worker
	srv.mailer = worker.New(logMailer{srv}, mailQueueSize, logger)

	// Identity provider
	switch cfg.Auth.Provider {
	case "gogs":
		srv.auth = auth.NewGogsProvider(conn, cfg.Auth.GogsServer)
	default:
		tokens := auth.NewTokens(cfg.Auth.Secret, auth.ConfirmTTL)
		srv.auth = auth.NewLocalProvider(conn, tokens, srv.mailer, cfg.BaseURL)
	}

	// Web server
	srv.web = web.New(cfg.Port, logger)
	srv.setupWebRoutes()
	return srv, nil
}

// logMailer writes confirmation links to the current log of the service.
type logMailer struct {
	srv *Service
}

func (m logMailer) SendConfirmation(ctx context.Context, user *db.User, link string) error {
	return auth.LogMailer{Logger: m.srv.log}.SendConfirmation(ctx, user, link)
}

// SetLogger replaces the logger of the service and of its database, mail
// worker and web server.  It must be called before Start or Run.
func (srv *Service) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv.log = logger
	srv.db.SetLogger(logger)
	srv.mailer.SetLogger(logger)
	srv.web.SetLogger(logger)
}

// Handler returns the HTTP handler serving all pages of the service.
func (srv *Service) Handler() http.Handler {
	return srv.web.Router
}

// Start the service (mail worker and web server).
func (srv *Service) Start() {
	srv.log.Info("Starting mail worker")
	srv.mailer.Start()

	srv.log.Info("Starting web service", zap.String("addr", srv.web.Addr))
	srv.web.Start()
	srv.log.Info("Web server started")
}

// Run starts the service and blocks until the context is cancelled or the
// web server fails, then stops the service.
func (srv *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	srv.log.Info("Starting mail worker")
	srv.mailer.Start()

	srv.log.Info("Starting web service", zap.String("addr", srv.web.Addr))
	g.Go(func() error {
		if err := srv.web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})
	srv.log.Info("Web server started")

	g.Go(func() error {
		<-ctx.Done()
		srv.Stop()
		return nil
	})
	return g.Wait()
}

// Stop the service by gracefully shutting down the web service, stopping the
// mail worker, and closing the database connection, in that order.
func (srv *Service) Stop() {
	srv.log.Info("Stopping web service")
	srv.web.Stop()

	srv.log.Info("Stopping mail worker")
	srv.mailer.Stop()

	srv.log.Info("Closing database connection")
	if err := srv.db.Close(); err != nil {
		srv.log.Error("Error closing database", zap.Error(err))
	}
	srv.log.Info("Service stopped")
}

// Close releases the database of a service that was never started.
func (srv *Service) Close() error {
	return srv.db.Close()
}
