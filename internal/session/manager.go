package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const cookieName = "pokedex_session"

// Manager links requests to server-side state. The cookie carries only an
// opaque token, signed with the configured secret; everything else lives
// in the Store.
type Manager struct {
	cookies *sessions.CookieStore
	store   Store
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewManager(secret string, store Store, ttl time.Duration) *Manager {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		cookies: cs,
		store:   store,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Current resolves the request's session state. Missing, tampered, or
// expired sessions all come back as the anonymous zero State.
func (m *Manager) Current(r *http.Request) State {
	c, err := m.cookies.Get(r, cookieName)
	if err != nil {
		return State{}
	}
	token, _ := c.Values["token"].(string)
	if token == "" {
		return State{}
	}
	st, err := m.store.Get(token)
	if err != nil {
		return State{}
	}
	if !st.ExpiresAt.IsZero() && m.nowFunc().After(st.ExpiresAt) {
		_ = m.store.Destroy(token)
		return State{}
	}
	return st
}

// Login creates a logged-in session record and writes its token cookie.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, username string, level int) error {
	token, err := generateToken(32)
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	st := State{
		IsLoggedIn: true,
		Username:   username,
		Level:      level,
		ExpiresAt:  m.nowFunc().Add(m.ttl),
	}
	if err := m.store.Set(token, st); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	c, _ := m.cookies.New(r, cookieName)
	c.Values["token"] = token
	if err := c.Save(r, w); err != nil {
		_ = m.store.Destroy(token)
		return fmt.Errorf("write session cookie: %w", err)
	}
	return nil
}

// Logout flips the logged-in flag. The record and cookie are retained.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	c, err := m.cookies.Get(r, cookieName)
	if err != nil {
		return nil
	}
	token, _ := c.Values["token"].(string)
	if token == "" {
		return nil
	}
	st, err := m.store.Get(token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	st.IsLoggedIn = false
	return m.store.Set(token, st)
}

func generateToken(n int) (string, error) {
	if n < 16 {
		return "", fmt.Errorf("token length too short")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
