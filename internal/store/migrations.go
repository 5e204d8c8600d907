package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	legacy, err := s.renameLegacyFrameRecords()
	if err != nil {
		return err
	}

	migrations := []string{
		// Sessions table - one row per collection run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			data_root TEXT NOT NULL,
			labels TEXT NOT NULL DEFAULT '[]',
			sequence_count INTEGER NOT NULL,
			frames_per_sequence INTEGER NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('running', 'completed', 'cancelled', 'failed')),
			error TEXT NOT NULL DEFAULT '',
			frames_written INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,

		// Frame records - the latest write of each frame file, keyed by dataset root and triple
		`CREATE TABLE IF NOT EXISTS frame_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			data_root TEXT NOT NULL,
			label TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			frame_index INTEGER NOT NULL,
			path TEXT NOT NULL,
			left_hand INTEGER NOT NULL DEFAULT 0,
			right_hand INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			UNIQUE(data_root, label, sequence, frame_index)
		)`,

		// Sequence aborts - sequences truncated by a frame read failure
		`CREATE TABLE IF NOT EXISTS sequence_aborts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			frames_recorded INTEGER NOT NULL,
			reason TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_frame_records_session_id ON frame_records(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sequence_aborts_session_id ON sequence_aborts(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	if legacy {
		return s.copyLegacyFrameRecords()
	}
	return nil
}

// renameLegacyFrameRecords moves a frame_records table without a data_root
// column out of the way so it can be recreated with the current key.
func (s *Store) renameLegacyFrameRecords() (bool, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('frame_records')`)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	exists, hasRoot := false, false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		exists = true
		if name == "data_root" {
			hasRoot = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	rows.Close()

	if !exists || hasRoot {
		return false, nil
	}
	if _, err := s.db.Exec(`DROP INDEX IF EXISTS idx_frame_records_session_id`); err != nil {
		return false, err
	}
	if _, err := s.db.Exec(`ALTER TABLE frame_records RENAME TO frame_records_legacy`); err != nil {
		return false, err
	}
	return true, nil
}

// copyLegacyFrameRecords fills the new table from the renamed one, taking
// each record's dataset root from its session.
func (s *Store) copyLegacyFrameRecords() error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO frame_records
			(session_id, data_root, label, sequence, frame_index, path, left_hand, right_hand, created_at)
		 SELECT f.session_id, ss.data_root, f.label, f.sequence, f.frame_index, f.path,
			f.left_hand, f.right_hand, f.created_at
		 FROM frame_records_legacy f JOIN sessions ss ON ss.id = f.session_id
		 ORDER BY f.id`,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DROP TABLE frame_records_legacy`)
	return err
}
