package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zrwaldrip/IS403-Pokemon/internal/catalog"
	"github.com/zrwaldrip/IS403-Pokemon/internal/config"
	"github.com/zrwaldrip/IS403-Pokemon/internal/session"
	"github.com/zrwaldrip/IS403-Pokemon/internal/users"
)

type CatalogService interface {
	List() ([]catalog.Pokemon, error)
	SearchByDescription(name string) (catalog.Pokemon, error)
	Get(id int) (catalog.Pokemon, error)
	Update(id int, description string, baseTotal int) error
	Delete(id int) error
}

type UserService interface {
	Authenticate(username, password string) (users.User, error)
	List() ([]users.User, error)
	Get(id int) (users.User, error)
	Create(username, password string, level int) error
	Update(id int, username, password string) error
	Delete(id int) error
}

type SessionManager interface {
	Current(r *http.Request) session.State
	Login(w http.ResponseWriter, r *http.Request, username string, level int) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

type AuditLogger interface {
	Log(actor, action, target, outcome, detail string) error
}

type Deps struct {
	Catalog  CatalogService
	Users    UserService
	Sessions SessionManager
	Audit    AuditLogger
	Log      *slog.Logger
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      loggingMiddleware(deps.Log, handler),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = newRequestID()
		}
		w.Header().Set("X-Request-Id", reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", reqID,
		)
	})
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
