package session

import "errors"

// Error kinds returned by Run. Match them with errors.Is.
var (
	// ErrResourceUnavailable means the frame source could not be opened.
	// Nothing was recorded.
	ErrResourceUnavailable = errors.New("frame source unavailable")

	// ErrStreamEnded means the frame source failed while priming a
	// sequence. It ends the whole session.
	ErrStreamEnded = errors.New("frame stream ended during priming")

	// ErrFrameRead marks a frame read failure while recording. It only
	// aborts the current sequence and is never returned by Run.
	ErrFrameRead = errors.New("frame read failed")

	// ErrPersistence means a directory, keypoint file or manifest entry
	// could not be written, or a keypoint vector could not be built with
	// the expected length.
	ErrPersistence = errors.New("persistence failure")

	// ErrDetection means the landmark detector failed on a frame.
	ErrDetection = errors.New("landmark detection failed")

	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("invalid session config")

	// ErrAlreadyRun is returned when Run is called more than once.
	ErrAlreadyRun = errors.New("session already run")
)
