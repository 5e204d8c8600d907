package store

import (
	"database/sql"
	"time"
)

// FrameRecord is the manifest entry of one written keypoint file.
type FrameRecord struct {
	SessionID  string
	DataRoot   string
	Label      string
	Sequence   int
	FrameIndex int
	Path       string
	LeftHand   bool
	RightHand  bool
	CreatedAt  time.Time
}

// SequenceAbort records a sequence truncated by a frame read failure.
type SequenceAbort struct {
	SessionID      string
	Label          string
	Sequence       int
	FramesRecorded int
	Reason         string
	CreatedAt      time.Time
}

// LabelCount summarizes the frames recorded for one label.
type LabelCount struct {
	DataRoot  string
	Label     string
	Sequences int
	Frames    int
}

// FrameRepository provides access to frame records and sequence aborts.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Upsert stores a frame record. Re-recording a triple under the same
// dataset root replaces the earlier record, matching the overwrite of its
// keypoint file.
func (r *FrameRepository) Upsert(rec *FrameRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO frame_records (session_id, data_root, label, sequence, frame_index, path, left_hand, right_hand, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(data_root, label, sequence, frame_index) DO UPDATE SET
			session_id = excluded.session_id,
			path = excluded.path,
			left_hand = excluded.left_hand,
			right_hand = excluded.right_hand,
			created_at = excluded.created_at`,
		rec.SessionID, rec.DataRoot, rec.Label, rec.Sequence, rec.FrameIndex, rec.Path,
		rec.LeftHand, rec.RightHand, rec.CreatedAt,
	)
	return err
}

// RecordAbort stores a sequence abort.
func (r *FrameRepository) RecordAbort(a *SequenceAbort) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sequence_aborts (session_id, label, sequence, frames_recorded, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.Label, a.Sequence, a.FramesRecorded, a.Reason, a.CreatedAt,
	)
	return err
}

// CountBySession returns how many frame records a session currently owns.
func (r *FrameRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM frame_records WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// Get retrieves the record of one (label, sequence, frame) triple under a
// dataset root.
func (r *FrameRepository) Get(dataRoot, label string, sequence, frameIndex int) (*FrameRecord, error) {
	rec := &FrameRecord{}
	err := r.db.QueryRow(
		`SELECT session_id, data_root, label, sequence, frame_index, path, left_hand, right_hand, created_at
		 FROM frame_records WHERE data_root = ? AND label = ? AND sequence = ? AND frame_index = ?`,
		dataRoot, label, sequence, frameIndex,
	).Scan(&rec.SessionID, &rec.DataRoot, &rec.Label, &rec.Sequence, &rec.FrameIndex, &rec.Path,
		&rec.LeftHand, &rec.RightHand, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CountByLabel summarizes recorded sequences and frames per dataset root
// and label.
func (r *FrameRepository) CountByLabel() ([]LabelCount, error) {
	rows, err := r.db.Query(
		`SELECT data_root, label, COUNT(DISTINCT sequence), COUNT(*)
		 FROM frame_records GROUP BY data_root, label ORDER BY data_root, label`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []LabelCount
	for rows.Next() {
		var c LabelCount
		if err := rows.Scan(&c.DataRoot, &c.Label, &c.Sequences, &c.Frames); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AbortsBySession lists the sequence aborts of a session in order.
func (r *FrameRepository) AbortsBySession(sessionID string) ([]SequenceAbort, error) {
	rows, err := r.db.Query(
		`SELECT session_id, label, sequence, frames_recorded, reason, created_at
		 FROM sequence_aborts WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aborts []SequenceAbort
	for rows.Next() {
		var a SequenceAbort
		if err := rows.Scan(&a.SessionID, &a.Label, &a.Sequence, &a.FramesRecorded, &a.Reason, &a.CreatedAt); err != nil {
			return nil, err
		}
		aborts = append(aborts, a)
	}
	return aborts, rows.Err()
}
