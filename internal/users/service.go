package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages account rows in the users table.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &Service{db: db}, nil
}

// Authenticate matches username and password by exact equality and returns
// the matched user.
func (s *Service) Authenticate(username, password string) (User, error) {
	const q = `
SELECT id, username, password, level
FROM users
WHERE username = $1 AND password = $2`
	var u User
	if err := s.db.QueryRow(q, username, password).Scan(&u.ID, &u.Username, &u.Password, &u.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("authenticate user: %w", err)
	}
	return u, nil
}

func (s *Service) List() ([]User, error) {
	const q = `SELECT id, username, password, level FROM users`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Level); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *Service) Get(id int) (User, error) {
	const q = `SELECT id, username, password, level FROM users WHERE id = $1`
	var u User
	if err := s.db.QueryRow(q, id).Scan(&u.ID, &u.Username, &u.Password, &u.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) GetByUsername(username string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrNotFound
	}
	const q = `SELECT id, username, password, level FROM users WHERE username = $1`
	var u User
	if err := s.db.QueryRow(q, username).Scan(&u.ID, &u.Username, &u.Password, &u.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Create inserts a new account. Submitted fields are stored as-is; there is
// deliberately no uniqueness check, matching the existing table contract.
func (s *Service) Create(username, password string, level int) error {
	const q = `INSERT INTO users (username, password, level) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(q, username, password, level); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Service) Update(id int, username, password string) error {
	// Placeholder numbers follow appearance order so the query binds the
	// same on both drivers.
	const q = `
UPDATE users
SET username = $1,
	password = $2
WHERE id = $3`
	res, err := s.db.Exec(q, username, password, id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(id int) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := s.db.Exec(q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read delete affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
