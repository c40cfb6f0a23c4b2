package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Gesture represents one registered gesture label and its catalog metadata.
type Gesture struct {
	ID        string
	Name      string
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GestureRepository provides catalog operations for gestures.
type GestureRepository struct {
	db *sql.DB
}

// Gestures returns the gesture repository for this store.
func (s *Store) Gestures() *GestureRepository {
	return &GestureRepository{db: s.db}
}

// EnsureByName returns the gesture with the given name, creating it with a
// fresh ID when it is not registered yet.
func (r *GestureRepository) EnsureByName(name string) (*Gesture, error) {
	g, err := r.GetByName(name)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	g = &Gesture{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.Exec(
		`INSERT INTO gestures (id, name, samples, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Samples, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// RecordSample bumps the cached sample count for a gesture.
func (r *GestureRepository) RecordSample(id string) error {
	result, err := r.db.Exec(
		`UPDATE gestures SET samples = samples + 1, updated_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a gesture by its ID.
func (r *GestureRepository) GetByID(id string) (*Gesture, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, samples, created_at, updated_at
		 FROM gestures WHERE id = ?`,
		id,
	))
}

// GetByName retrieves a gesture by its name.
func (r *GestureRepository) GetByName(name string) (*Gesture, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, samples, created_at, updated_at
		 FROM gestures WHERE name = ?`,
		name,
	))
}

func (r *GestureRepository) scanOne(row *sql.Row) (*Gesture, error) {
	g := &Gesture{}
	err := row.Scan(&g.ID, &g.Name, &g.Samples, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// List retrieves all registered gestures ordered by creation time.
func (r *GestureRepository) List() ([]*Gesture, error) {
	rows, err := r.db.Query(
		`SELECT id, name, samples, created_at, updated_at
		 FROM gestures ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gestures []*Gesture
	for rows.Next() {
		g := &Gesture{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Samples, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		gestures = append(gestures, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return gestures, nil
}

// Delete removes a gesture from the catalog by its ID. Recorded dataset
// samples are append-only and are not touched.
func (r *GestureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM gestures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
