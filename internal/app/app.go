package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zrwaldrip/IS403-Pokemon/internal/audit"
	"github.com/zrwaldrip/IS403-Pokemon/internal/catalog"
	"github.com/zrwaldrip/IS403-Pokemon/internal/config"
	"github.com/zrwaldrip/IS403-Pokemon/internal/db"
	"github.com/zrwaldrip/IS403-Pokemon/internal/httpserver"
	"github.com/zrwaldrip/IS403-Pokemon/internal/observability"
	"github.com/zrwaldrip/IS403-Pokemon/internal/session"
	"github.com/zrwaldrip/IS403-Pokemon/internal/users"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *sql.DB
	server *httpserver.Server
}

func New(cfg config.Config) (*App, error) {
	logger := observability.NewLogger()

	conn, err := db.Open(cfg.DB.Driver, cfg.DB.DataSourceName())
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(conn, cfg.DB.Driver); err != nil {
		_ = conn.Close()
		return nil, err
	}

	catalogService, err := catalog.NewService(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create catalog service: %w", err)
	}
	userService, err := users.NewService(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create user service: %w", err)
	}

	// Postgres-backed sessions survive restarts; sqlite deployments keep
	// them in memory.
	var sessionStore session.Store
	if cfg.DB.Driver == "postgres" {
		sessionStore, err = session.NewPostgresStore(conn)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("create postgres session store: %w", err)
		}
	} else {
		sessionStore = session.NewMemoryStore()
	}
	sessionManager := session.NewManager(cfg.Session.Secret, sessionStore, cfg.Session.TTL)

	if _, err := userService.GetByUsername(cfg.Bootstrap.Username); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			if err := userService.Create(cfg.Bootstrap.Username, cfg.Bootstrap.Password, cfg.Bootstrap.Level); err != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("create bootstrap user: %w", err)
			}
			logger.Info("bootstrap user created", "username", cfg.Bootstrap.Username)
		} else {
			_ = conn.Close()
			return nil, fmt.Errorf("check bootstrap user: %w", err)
		}
	}

	auditLogger := audit.NewLogger(cfg.AuditLogFile)

	server := httpserver.New(cfg.HTTP, httpserver.Deps{
		Catalog:  catalogService,
		Users:    userService,
		Sessions: sessionManager,
		Audit:    auditLogger,
		Log:      logger,
	})

	return &App{
		cfg:    cfg,
		log:    logger,
		db:     conn,
		server: server,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	defer func() {
		_ = a.db.Close()
	}()

	errCh := make(chan error, 1)

	go func() {
		a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)
		errCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}
