package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/geometry"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Recognition is one journaled gesture attempt and its outcome.
type Recognition struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Score     float64          `json:"score"`
	Command   string           `json:"command"`
	Strokes   int              `json:"strokes"`
	Points    []geometry.Point `json:"points,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// RecognitionRepository provides access to the recognition journal.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create inserts a recognition. A zero CreatedAt is set to now.
func (r *RecognitionRepository) Create(rec *Recognition) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	points, err := json.Marshal(rec.Points)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO recognitions (id, name, score, command, strokes, points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Score, rec.Command, rec.Strokes, string(points), rec.CreatedAt,
	)
	return err
}

// GetByID retrieves a recognition, including its points.
func (r *RecognitionRepository) GetByID(id string) (*Recognition, error) {
	rec := &Recognition{}
	var points string

	err := r.db.QueryRow(
		`SELECT id, name, score, command, strokes, points, created_at
		 FROM recognitions WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Name, &rec.Score, &rec.Command, &rec.Strokes, &points, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(points), &rec.Points); err != nil {
		return nil, fmt.Errorf("failed to decode points: %w", err)
	}
	return rec, nil
}

// List returns up to limit recognitions, newest first, without their
// points. A non-positive limit returns all of them.
func (r *RecognitionRepository) List(limit int) ([]*Recognition, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, name, score, command, strokes, created_at
		 FROM recognitions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recognition
	for rows.Next() {
		rec := &Recognition{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Score, &rec.Command, &rec.Strokes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// CountByName returns how often each template name was recognized.
func (r *RecognitionRepository) CountByName() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT name, COUNT(*) FROM recognitions GROUP BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// Delete removes a recognition and its actions.
func (r *RecognitionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recognitions WHERE id = ?`, id)
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
