package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("pokemon not found")

// Service answers catalog queries against the pokemon table. Every method
// is a single database round trip.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &Service{db: db}, nil
}

// List returns every pokemon ordered ascending by description.
func (s *Service) List() ([]Pokemon, error) {
	const q = `
SELECT id, description, base_total
FROM pokemon
ORDER BY description ASC`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query pokemon: %w", err)
	}
	defer rows.Close()

	out := make([]Pokemon, 0)
	for rows.Next() {
		var p Pokemon
		if err := rows.Scan(&p.ID, &p.Description, &p.BaseTotal); err != nil {
			return nil, fmt.Errorf("scan pokemon: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pokemon: %w", err)
	}
	return out, nil
}

// SearchByDescription performs a case-insensitive exact match on the
// description column.
func (s *Service) SearchByDescription(name string) (Pokemon, error) {
	const q = `
SELECT id, description, base_total
FROM pokemon
WHERE LOWER(description) = $1`
	var p Pokemon
	if err := s.db.QueryRow(q, strings.ToLower(name)).Scan(&p.ID, &p.Description, &p.BaseTotal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pokemon{}, ErrNotFound
		}
		return Pokemon{}, fmt.Errorf("search pokemon: %w", err)
	}
	return p, nil
}

func (s *Service) Get(id int) (Pokemon, error) {
	const q = `SELECT id, description, base_total FROM pokemon WHERE id = $1`
	var p Pokemon
	if err := s.db.QueryRow(q, id).Scan(&p.ID, &p.Description, &p.BaseTotal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pokemon{}, ErrNotFound
		}
		return Pokemon{}, fmt.Errorf("get pokemon: %w", err)
	}
	return p, nil
}

func (s *Service) Update(id int, description string, baseTotal int) error {
	// Placeholder numbers follow appearance order so the query binds the
	// same on both drivers.
	const q = `
UPDATE pokemon
SET description = $1,
	base_total = $2
WHERE id = $3`
	res, err := s.db.Exec(q, description, baseTotal, id)
	if err != nil {
		return fmt.Errorf("update pokemon: %w", err)
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
	const q = `DELETE FROM pokemon WHERE id = $1`
	res, err := s.db.Exec(q, id)
	if err != nil {
		return fmt.Errorf("delete pokemon: %w", err)
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
