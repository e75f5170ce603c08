package integration

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/zrwaldrip/IS403-Pokemon/internal/catalog"
	"github.com/zrwaldrip/IS403-Pokemon/internal/db"
	"github.com/zrwaldrip/IS403-Pokemon/internal/session"
	"github.com/zrwaldrip/IS403-Pokemon/internal/users"
)

func openTestPostgres(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping Postgres integration tests")
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sql.Open() error: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	if err := conn.Ping(); err != nil {
		t.Fatalf("conn.Ping() error: %v", err)
	}
	if err := db.EnsureSchema(conn, "postgres"); err != nil {
		t.Fatalf("EnsureSchema() error: %v", err)
	}
	return conn
}

func TestPostgresCatalogCRUD(t *testing.T) {
	conn := openTestPostgres(t)

	svc, err := catalog.NewService(conn)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}

	name := fmt.Sprintf("itest_pokemon_%d", time.Now().UnixNano())
	var id int
	if err := conn.QueryRow(
		"INSERT INTO pokemon (description, base_total) VALUES ($1, $2) RETURNING id",
		name, 318,
	).Scan(&id); err != nil {
		t.Fatalf("insert pokemon: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec("DELETE FROM pokemon WHERE id = $1", id)
	})

	got, err := svc.SearchByDescription(name)
	if err != nil {
		t.Fatalf("SearchByDescription() error: %v", err)
	}
	if got.ID != id || got.BaseTotal != 318 {
		t.Fatalf("unexpected row: %+v", got)
	}

	if err := svc.Update(id, name+"_updated", 420); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	updated, err := svc.Get(id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if updated.Description != name+"_updated" || updated.BaseTotal != 420 {
		t.Fatalf("unexpected updated row: %+v", updated)
	}

	if err := svc.Delete(id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := svc.Get(id); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresUserAuthenticateRoundTrip(t *testing.T) {
	conn := openTestPostgres(t)

	svc, err := users.NewService(conn)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}

	username := fmt.Sprintf("itest_user_%d", time.Now().UnixNano())
	if err := svc.Create(username, "pw123", 2); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec("DELETE FROM users WHERE username = $1", username)
	})

	u, err := svc.Authenticate(username, "pw123")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if u.Level != 2 {
		t.Fatalf("expected level 2, got %d", u.Level)
	}

	if _, err := svc.Authenticate(username, "wrong"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.Update(u.ID, username, "pw456"); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if _, err := svc.Authenticate(username, "pw456"); err != nil {
		t.Fatalf("Authenticate() after update error: %v", err)
	}
}

func TestPostgresSessionStoreRoundTrip(t *testing.T) {
	conn := openTestPostgres(t)

	store, err := session.NewPostgresStore(conn)
	if err != nil {
		t.Fatalf("NewPostgresStore() error: %v", err)
	}

	token := fmt.Sprintf("itest_token_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = store.Destroy(token)
	})

	st := session.State{
		IsLoggedIn: true,
		Username:   "alice",
		Level:      2,
		ExpiresAt:  time.Now().Add(time.Minute).UTC(),
	}
	if err := store.Set(token, st); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	loaded, err := store.Get(token)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !loaded.IsLoggedIn || loaded.Username != "alice" || loaded.Level != 2 {
		t.Fatalf("unexpected state: %+v", loaded)
	}

	// Logout keeps the row but clears the flag.
	loaded.IsLoggedIn = false
	if err := store.Set(token, loaded); err != nil {
		t.Fatalf("Set() after logout error: %v", err)
	}
	after, err := store.Get(token)
	if err != nil {
		t.Fatalf("Get() after logout error: %v", err)
	}
	if after.IsLoggedIn {
		t.Fatalf("expected is_logged_in to be false after logout")
	}
	if after.Username != "alice" {
		t.Fatalf("expected record to survive logout, got %+v", after)
	}

	if err := store.Destroy(token); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	if _, err := store.Get(token); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after destroy, got %v", err)
	}
}
