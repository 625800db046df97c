// Package lakesim is a local stand-in for the Tidelake service: the
// same REST surface lakeacl talks to in production, backed by sqlite.
package lakesim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tidelake/lakeacl/internal/db"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg   *Config
	store *Store
	auth  *AuthService
	http  *http.Server
}

func New(cfg *Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = uuid.NewString()
		slog.Warn("no auth secret configured, using an ephemeral one; tokens will not survive a restart")
	}

	conn, err := db.NewSqliteDB(db.WithPath(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		store: NewStore(conn),
		auth:  NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
	}
	s.http = &http.Server{
		Addr:    cfg.Bind,
		Handler: s.buildRouter(),
	}
	return s, nil
}

// Init migrates the schema and applies the seed file, if any. Start
// calls it; tests call it directly and serve Handler in-process.
func (s *Server) Init(ctx context.Context) error {
	if err := s.store.Migrate(ctx); err != nil {
		return err
	}
	if s.cfg.SeedPath != "" {
		seed, err := LoadSeed(s.cfg.SeedPath)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, s.store); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}
	return nil
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}

	slog.Info("lakesim listening", "addr", s.cfg.Bind, "db", s.cfg.DBPath)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.Stop()
	})
	return g.Wait()
}

func (s *Server) Stop() error {
	slog.Info("lakesim shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.store.Close()
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Store exposes the backing store for seeding and assertions.
func (s *Server) Store() *Store {
	return s.store
}
