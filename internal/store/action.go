package store

import (
	"database/sql"
	"time"
)

// Action records one plugin execution triggered by a recognition.
type Action struct {
	ID            int64     `json:"id"`
	RecognitionID string    `json:"recognition_id"`
	PluginName    string    `json:"plugin_name"`
	ActionName    string    `json:"action_name"`
	Success       bool      `json:"success"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ActionRepository provides access to the action log.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

// Create inserts an action and sets its ID.
func (r *ActionRepository) Create(a *Action) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO actions (recognition_id, plugin_name, action_name, success, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.RecognitionID, a.PluginName, a.ActionName, a.Success, a.Message, a.CreatedAt,
	)
	if err != nil {
		return err
	}

	a.ID, err = result.LastInsertId()
	return err
}

// ListByRecognition returns the actions of one recognition in execution
// order.
func (r *ActionRepository) ListByRecognition(recognitionID string) ([]*Action, error) {
	rows, err := r.db.Query(
		`SELECT id, recognition_id, plugin_name, action_name, success, message, created_at
		 FROM actions WHERE recognition_id = ? ORDER BY id`,
		recognitionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a := &Action{}
		var success int
		if err := rows.Scan(&a.ID, &a.RecognitionID, &a.PluginName, &a.ActionName, &success, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Success = success == 1
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return actions, nil
}
