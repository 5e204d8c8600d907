package store

// BeginSession records the start of a collection run.
func (s *Store) BeginSession(sess *Session) error {
	return s.Sessions().Create(sess)
}

// RecordFrame records a written keypoint file.
func (s *Store) RecordFrame(rec *FrameRecord) error {
	return s.Frames().Upsert(rec)
}

// RecordAbort records a sequence cut short by a frame read failure.
func (s *Store) RecordAbort(a *SequenceAbort) error {
	return s.Frames().RecordAbort(a)
}

// FinishSession records how a collection run ended.
func (s *Store) FinishSession(id string, status SessionStatus, framesWritten int, errMsg string) error {
	return s.Sessions().Finish(id, status, framesWritten, errMsg)
}
