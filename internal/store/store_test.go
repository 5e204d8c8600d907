package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func newRunningSession(t *testing.T, s *Store, id string) *Session {
	t.Helper()

	sess := &Session{
		ID:                id,
		DataRoot:          "/data",
		Labels:            []string{"hola", "mucho gusto"},
		SequenceCount:     60,
		FramesPerSequence: 30,
	}
	require.NoError(t, s.BeginSession(sess))
	return sess
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, s.Path())
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"sessions", "frame_records", "sequence_aborts"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q should exist after migrations", table)
	}

	for _, idx := range []string{"idx_frame_records_session_id", "idx_sequence_aborts_session_id"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			idx,
		).Scan(&name)
		assert.NoError(t, err, "index %q should exist after migrations", idx)
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	newRunningSession(t, s, "s1")
	require.NoError(t, s.Close())

	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	sess, err := s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, sess.Status)
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = s.DB().Exec("SELECT 1")
	assert.Error(t, err, "DB operations should fail after close")
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)

	var fkEnabled int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled))
	assert.Equal(t, 1, fkEnabled)

	err := s.RecordFrame(&FrameRecord{SessionID: "missing", Label: "a", Path: "x"})
	assert.Error(t, err, "frame of an unknown session should violate the foreign key")
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	sess := newRunningSession(t, s, "s1")
	assert.False(t, sess.StartedAt.IsZero())

	got, err := s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hola", "mucho gusto"}, got.Labels)
	assert.Equal(t, 60, got.SequenceCount)
	assert.Equal(t, 30, got.FramesPerSequence)
	assert.Nil(t, got.FinishedAt)

	require.NoError(t, s.FinishSession("s1", StatusCancelled, 42, ""))

	got, err = s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 42, got.FramesWritten)
	require.NotNil(t, got.FinishedAt)
}

func TestSessionRepository_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.FinishSession("nope", StatusCompleted, 0, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepository_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.BeginSession(&Session{
			ID:        id,
			DataRoot:  "/data",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	sessions, err := s.Sessions().List()
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[2].ID)
}

func TestFrameRepository_UpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	newRunningSession(t, s, "first")
	newRunningSession(t, s, "second")

	require.NoError(t, s.RecordFrame(&FrameRecord{
		SessionID: "first", DataRoot: "/data", Label: "hola", Sequence: 0, FrameIndex: 0, Path: "/data/hola/0/0.npy", LeftHand: true,
	}))
	require.NoError(t, s.RecordFrame(&FrameRecord{
		SessionID: "second", DataRoot: "/data", Label: "hola", Sequence: 0, FrameIndex: 0, Path: "/data/hola/0/0.npy", RightHand: true,
	}))

	rec, err := s.Frames().Get("/data", "hola", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "second", rec.SessionID)
	assert.False(t, rec.LeftHand)
	assert.True(t, rec.RightHand)

	n, err := s.Frames().CountBySession("first")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Frames().Get("/data", "hola", 0, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFrameRepository_SeparateDataRoots(t *testing.T) {
	s := newTestStore(t)
	for _, root := range []string{"/data/a", "/data/b"} {
		require.NoError(t, s.BeginSession(&Session{ID: root, DataRoot: root, Labels: []string{"hola"}}))
		require.NoError(t, s.RecordFrame(&FrameRecord{
			SessionID: root, DataRoot: root, Label: "hola", Path: filepath.Join(root, "hola", "0", "0.npy"),
		}))
	}

	for _, root := range []string{"/data/a", "/data/b"} {
		n, err := s.Frames().CountBySession(root)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "frames of %s", root)

		rec, err := s.Frames().Get(root, "hola", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "hola", "0", "0.npy"), rec.Path)
		assert.Equal(t, root, rec.DataRoot)
	}

	counts, err := s.Frames().CountByLabel()
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{
		{DataRoot: "/data/a", Label: "hola", Sequences: 1, Frames: 1},
		{DataRoot: "/data/b", Label: "hola", Sequences: 1, Frames: 1},
	}, counts)
}

func TestNewStore_UpgradesFrameRecordsWithoutDataRoot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")

	old, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE sessions (
			id TEXT PRIMARY KEY, data_root TEXT NOT NULL, labels TEXT NOT NULL DEFAULT '[]',
			sequence_count INTEGER NOT NULL, frames_per_sequence INTEGER NOT NULL,
			status TEXT NOT NULL, error TEXT NOT NULL DEFAULT '', frames_written INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL, finished_at DATETIME)`,
		`CREATE TABLE frame_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT, session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			label TEXT NOT NULL, sequence INTEGER NOT NULL, frame_index INTEGER NOT NULL, path TEXT NOT NULL,
			left_hand INTEGER NOT NULL DEFAULT 0, right_hand INTEGER NOT NULL DEFAULT 0, created_at DATETIME NOT NULL,
			UNIQUE(label, sequence, frame_index))`,
		`INSERT INTO sessions (id, data_root, sequence_count, frames_per_sequence, status, started_at)
		 VALUES ('s1', '/data/a', 1, 1, 'completed', CURRENT_TIMESTAMP)`,
		`INSERT INTO frame_records (session_id, label, sequence, frame_index, path, created_at)
		 VALUES ('s1', 'hola', 0, 0, '/data/a/hola/0/0.npy', CURRENT_TIMESTAMP)`,
	} {
		_, err := old.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, old.Close())

	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Frames().Get("/data/a", "hola", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.SessionID)

	var legacy int
	require.NoError(t, s.DB().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE name = 'frame_records_legacy'`,
	).Scan(&legacy))
	assert.Zero(t, legacy)
}

func TestFrameRepository_CountByLabel(t *testing.T) {
	s := newTestStore(t)
	newRunningSession(t, s, "s1")

	for seq := 0; seq < 2; seq++ {
		for f := 0; f < 3; f++ {
			require.NoError(t, s.RecordFrame(&FrameRecord{SessionID: "s1", Label: "b", Sequence: seq, FrameIndex: f, Path: "p"}))
		}
	}
	require.NoError(t, s.RecordFrame(&FrameRecord{SessionID: "s1", Label: "a", Sequence: 4, FrameIndex: 0, Path: "p"}))

	counts, err := s.Frames().CountByLabel()
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{
		{Label: "a", Sequences: 1, Frames: 1},
		{Label: "b", Sequences: 2, Frames: 6},
	}, counts)
}

func TestFrameRepository_Aborts(t *testing.T) {
	s := newTestStore(t)
	newRunningSession(t, s, "s1")

	require.NoError(t, s.RecordAbort(&SequenceAbort{SessionID: "s1", Label: "hola", Sequence: 0, FramesRecorded: 10, Reason: "end of stream"}))
	require.NoError(t, s.RecordAbort(&SequenceAbort{SessionID: "s1", Label: "hola", Sequence: 3, FramesRecorded: 0, Reason: "end of stream"}))

	aborts, err := s.Frames().AbortsBySession("s1")
	require.NoError(t, err)
	require.Len(t, aborts, 2)
	assert.Equal(t, 0, aborts[0].Sequence)
	assert.Equal(t, 10, aborts[0].FramesRecorded)
	assert.Equal(t, 3, aborts[1].Sequence)
}

func TestSessionDelete_CascadesFrames(t *testing.T) {
	s := newTestStore(t)
	newRunningSession(t, s, "s1")
	require.NoError(t, s.RecordFrame(&FrameRecord{SessionID: "s1", Label: "a", Path: "p"}))

	_, err := s.DB().Exec(`DELETE FROM sessions WHERE id = ?`, "s1")
	require.NoError(t, err)

	n, err := s.Frames().CountBySession("s1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
