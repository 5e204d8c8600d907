// Package session drives a dataset collection run: for every label and
// sequence it primes the user with a countdown, then records a fixed number
// of frames, turning each into a keypoint vector on disk.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/handset/internal/capture"
	"github.com/ayusman/handset/internal/dataset"
	"github.com/ayusman/handset/internal/detector"
	"github.com/ayusman/handset/internal/keypoints"
	"github.com/ayusman/handset/internal/store"
	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Deps are the collaborators of a session. Source and Detector are
// required; the rest are optional.
type Deps struct {
	Source   capture.Camera
	Detector detector.Detector
	Display  Display
	// Writer defaults to a dataset.Layout rooted at Config.DataRoot.
	Writer    Writer
	Manifest  Manifest
	Observers []Observer
	Logger    *slog.Logger
	// Sleep waits between priming ticks. It returns early with ctx.Err()
	// when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// outcome is how a loop level finished when it did not fail.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeSequenceAborted
	outcomeCancelled
)

// Session is a single collection run. It is not reusable.
type Session struct {
	cfg  Config
	deps Deps
	id   string
	log  *slog.Logger

	mu     sync.Mutex
	state  State
	ran    bool
	result Result
}

// New validates cfg and creates a session.
func New(cfg Config, deps Deps) (*Session, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("%w: frame source is required", ErrInvalidConfig)
	}
	if deps.Detector == nil {
		return nil, fmt.Errorf("%w: detector is required", ErrInvalidConfig)
	}
	if deps.Display == nil {
		deps.Display = nopDisplay{}
	}
	if deps.Writer == nil {
		deps.Writer = dataset.New(cfg.DataRoot)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}

	id := uuid.NewString()
	return &Session{
		cfg:  cfg,
		deps: deps,
		id:   id,
		log:  deps.Logger.With("session", id),
	}, nil
}

// ID returns the session identifier recorded in the manifest.
func (s *Session) ID() string {
	return s.id
}

// Config returns the effective configuration, defaults applied.
func (s *Session) Config() Config {
	return s.cfg
}

// State returns the current state. Safe to call from any goroutine.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run records every label, sequence and frame in order. A user stop or a
// done ctx ends the run early with StatusCancelled and a nil error. Frame
// read failures while recording only abort the current sequence. Any other
// failure ends the run with StatusFailed and an error matching one of the
// package error kinds. The source, detector and display are released on
// every path.
func (s *Session) Run(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return Result{}, ErrAlreadyRun
	}
	s.ran = true
	s.mu.Unlock()

	s.result = Result{SessionID: s.id, StartedAt: time.Now()}
	s.log.Info("session starting",
		"labels", s.cfg.Labels,
		"sequences", s.cfg.SequenceCount,
		"frames", s.cfg.FramesPerSequence,
		"data_root", s.cfg.DataRoot,
	)

	if err := s.deps.Source.Open(); err != nil {
		err = fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
		s.release()
		return s.finish(StatusFailed, err, false)
	}

	if m := s.deps.Manifest; m != nil {
		err := m.BeginSession(&store.Session{
			ID:                s.id,
			DataRoot:          s.cfg.DataRoot,
			Labels:            s.cfg.Labels,
			SequenceCount:     s.cfg.SequenceCount,
			FramesPerSequence: s.cfg.FramesPerSequence,
			StartedAt:         s.result.StartedAt,
		})
		if err != nil {
			err = fmt.Errorf("%w: begin manifest session: %w", ErrPersistence, err)
			s.release()
			return s.finish(StatusFailed, err, false)
		}
	}

	out, err := s.runLabels(ctx)
	s.release()

	switch {
	case err != nil:
		return s.finish(StatusFailed, err, true)
	case out == outcomeCancelled:
		return s.finish(StatusCancelled, nil, true)
	default:
		return s.finish(StatusCompleted, nil, true)
	}
}

func (s *Session) runLabels(ctx context.Context) (outcome, error) {
	for _, label := range s.cfg.Labels {
		for seq := 0; seq < s.cfg.SequenceCount; seq++ {
			out, err := s.runSequence(ctx, label, seq)
			if err != nil {
				return out, err
			}
			switch out {
			case outcomeCancelled:
				return out, nil
			case outcomeSequenceAborted:
				s.result.SequencesAborted++
			default:
				s.result.SequencesCompleted++
			}
		}
	}
	return outcomeDone, nil
}

func (s *Session) runSequence(ctx context.Context, label string, seq int) (outcome, error) {
	s.log.Info("collecting sequence", "label", label, "sequence", seq)

	out, err := s.prime(ctx, label, seq)
	if err != nil || out != outcomeDone {
		return out, err
	}
	return s.record(ctx, label, seq)
}

// prime runs the countdown before a sequence. A failed read ends the
// session.
func (s *Session) prime(ctx context.Context, label string, seq int) (outcome, error) {
	for n := s.cfg.PrimingTicks; n >= 1; n-- {
		s.setState(State{Phase: PhasePriming, Label: label, Sequence: seq, Countdown: n})

		frame, err := s.deps.Source.ReadFrame()
		if err != nil {
			return outcomeDone, fmt.Errorf("%w: label %q sequence %d: %w", ErrStreamEnded, label, seq, err)
		}
		if s.cfg.Mirror {
			capture.Mirror(frame)
		}
		s.deps.Display.ShowPriming(frame, label, n)
		frame.Close()

		if s.stopRequested(ctx) {
			return outcomeCancelled, nil
		}
		if err := s.deps.Sleep(ctx, s.cfg.PrimingInterval); err != nil {
			return outcomeCancelled, nil
		}
		// the stop key can be latched while waiting
		if s.stopRequested(ctx) {
			return outcomeCancelled, nil
		}
	}
	return outcomeDone, nil
}

// record captures the frames of one sequence. A failed read aborts only
// this sequence.
func (s *Session) record(ctx context.Context, label string, seq int) (outcome, error) {
	dirReady := false

	for i := 0; i < s.cfg.FramesPerSequence; i++ {
		s.setState(State{Phase: PhaseRecording, Label: label, Sequence: seq, Frame: i})

		frame, err := s.deps.Source.ReadFrame()
		if err != nil {
			return outcomeSequenceAborted, s.abortSequence(label, seq, i, err)
		}

		event, hands, err := s.recordFrame(frame, label, seq, i, &dirReady)
		if err != nil {
			frame.Close()
			return outcomeDone, err
		}
		s.deps.Display.ShowRecording(frame, hands, label, seq, i)
		frame.Close()

		s.result.FramesWritten++
		for _, o := range s.deps.Observers {
			o.FrameWritten(event)
		}

		if s.stopRequested(ctx) {
			return outcomeCancelled, nil
		}
	}
	return outcomeDone, nil
}

// recordFrame detects hands on frame and persists the keypoint vector.
func (s *Session) recordFrame(frame *gocv.Mat, label string, seq, i int, dirReady *bool) (FrameEvent, keypoints.Hands, error) {
	if s.cfg.Mirror {
		capture.Mirror(frame)
	}

	detected, err := s.deps.Detector.Detect(frame)
	if err != nil {
		if errors.Is(err, detector.ErrLandmarkCount) {
			return FrameEvent{}, keypoints.Hands{}, fmt.Errorf("%w: label %q sequence %d frame %d: %w", ErrPersistence, label, seq, i, err)
		}
		return FrameEvent{}, keypoints.Hands{}, fmt.Errorf("%w: label %q sequence %d frame %d: %w", ErrDetection, label, seq, i, err)
	}
	vec, hands := keypoints.Extract(detected)

	if !*dirReady {
		if _, err := s.deps.Writer.EnsureSequenceDir(label, seq); err != nil {
			return FrameEvent{}, hands, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		*dirReady = true
	}

	path := s.deps.Writer.FramePath(label, seq, i)
	if err := s.deps.Writer.WriteKeypoints(path, vec); err != nil {
		return FrameEvent{}, hands, fmt.Errorf("%w: write %s: %w", ErrPersistence, path, err)
	}

	left, right := hands.Present()
	if m := s.deps.Manifest; m != nil {
		err := m.RecordFrame(&store.FrameRecord{
			SessionID:  s.id,
			DataRoot:   s.cfg.DataRoot,
			Label:      label,
			Sequence:   seq,
			FrameIndex: i,
			Path:       path,
			LeftHand:   left,
			RightHand:  right,
		})
		if err != nil {
			return FrameEvent{}, hands, fmt.Errorf("%w: manifest frame %s: %w", ErrPersistence, path, err)
		}
	}

	s.log.Debug("frame written", "label", label, "sequence", seq, "frame", i, "left", left, "right", right)

	return FrameEvent{
		Label:     label,
		Sequence:  seq,
		Frame:     i,
		Path:      path,
		LeftHand:  left,
		RightHand: right,
	}, hands, nil
}

// abortSequence logs a read failure that truncates a sequence. It only
// returns an error when the abort cannot be written to the manifest.
func (s *Session) abortSequence(label string, seq, recorded int, cause error) error {
	cause = fmt.Errorf("%w: %w", ErrFrameRead, cause)
	s.log.Warn("sequence aborted", "label", label, "sequence", seq, "frames_recorded", recorded, "error", cause)

	if m := s.deps.Manifest; m != nil {
		err := m.RecordAbort(&store.SequenceAbort{
			SessionID:      s.id,
			Label:          label,
			Sequence:       seq,
			FramesRecorded: recorded,
			Reason:         cause.Error(),
		})
		if err != nil {
			return fmt.Errorf("%w: manifest abort: %w", ErrPersistence, err)
		}
	}

	for _, o := range s.deps.Observers {
		o.SequenceAborted(AbortEvent{Label: label, Sequence: seq, FramesRecorded: recorded, Err: cause})
	}
	return nil
}

func (s *Session) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.deps.Display.StopRequested()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	for _, o := range s.deps.Observers {
		o.StateChanged(st)
	}
}

// release closes every collaborator, logging close errors.
func (s *Session) release() {
	if err := s.deps.Source.Close(); err != nil {
		s.log.Error("closing frame source", "error", err)
	}
	if err := s.deps.Detector.Close(); err != nil {
		s.log.Error("closing detector", "error", err)
	}
	if err := s.deps.Display.Close(); err != nil {
		s.log.Error("closing display", "error", err)
	}
}

// finish records the final status. The manifest is only updated when the
// session was begun there.
func (s *Session) finish(status Status, runErr error, begun bool) (Result, error) {
	s.result.Status = status
	s.result.FinishedAt = time.Now()
	s.setState(State{Phase: PhaseTerminated})

	if m := s.deps.Manifest; m != nil && begun {
		var msg string
		if runErr != nil {
			msg = runErr.Error()
		}
		if err := m.FinishSession(s.id, store.SessionStatus(status), s.result.FramesWritten, msg); err != nil {
			s.log.Error("finishing manifest session", "error", err)
			if runErr == nil {
				s.result.Status = StatusFailed
				runErr = fmt.Errorf("%w: finish manifest session: %w", ErrPersistence, err)
			}
		}
	}

	attrs := []any{
		"status", s.result.Status,
		"frames_written", s.result.FramesWritten,
		"sequences_completed", s.result.SequencesCompleted,
		"sequences_aborted", s.result.SequencesAborted,
		"elapsed", s.result.FinishedAt.Sub(s.result.StartedAt).Round(time.Millisecond),
	}
	if runErr != nil {
		s.log.Error("session failed", append(attrs, "error", runErr)...)
	} else {
		s.log.Info("session finished", attrs...)
	}

	for _, o := range s.deps.Observers {
		o.Finished(s.result)
	}
	return s.result, runErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
