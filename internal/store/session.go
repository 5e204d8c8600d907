package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// SessionStatus is the lifecycle state of a recorded session.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
	StatusFailed    SessionStatus = "failed"
)

// Session represents one collection run stored in the manifest.
type Session struct {
	ID                string
	DataRoot          string
	Labels            []string
	SequenceCount     int
	FramesPerSequence int
	Status            SessionStatus
	Error             string
	FramesWritten     int
	StartedAt         time.Time
	FinishedAt        *time.Time
}

// SessionRepository provides access to recorded sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session in the running state.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	sess.Status = StatusRunning

	labels, err := json.Marshal(sess.Labels)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO sessions (id, data_root, labels, sequence_count, frames_per_sequence, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.DataRoot, string(labels), sess.SequenceCount, sess.FramesPerSequence,
		string(sess.Status), sess.StartedAt,
	)
	return err
}

// Finish records the final status of a session.
func (r *SessionRepository) Finish(id string, status SessionStatus, framesWritten int, errMsg string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET status = ?, frames_written = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		string(status), framesWritten, errMsg, time.Now(), id,
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

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, data_root, labels, sequence_count, frames_per_sequence, status, error,
		        frames_written, started_at, finished_at
		 FROM sessions WHERE id = ?`,
		id,
	)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List retrieves all sessions, most recent first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, data_root, labels, sequence_count, frames_per_sequence, status, error,
		        frames_written, started_at, finished_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var labels, status string
	var finished sql.NullTime

	err := row.Scan(&sess.ID, &sess.DataRoot, &labels, &sess.SequenceCount, &sess.FramesPerSequence,
		&status, &sess.Error, &sess.FramesWritten, &sess.StartedAt, &finished)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(labels), &sess.Labels); err != nil {
		return nil, err
	}
	sess.Status = SessionStatus(status)
	if finished.Valid {
		t := finished.Time
		sess.FinishedAt = &t
	}
	return sess, nil
}
