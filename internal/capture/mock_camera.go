package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera produces synthetic frames for tests. Reads can be scripted to
// fail at chosen read numbers, and the stream can be capped.
type MockCamera struct {
	mu      sync.Mutex
	width   int
	height  int
	running bool
	reads   int
	opens   int
	closes  int
	failAt  map[int]bool
	limit   int
	openErr error
	fps     int
}

// NewMockCamera creates a MockCamera producing black frames of the given size.
func NewMockCamera(width, height int) *MockCamera {
	return &MockCamera{
		width:  width,
		height: height,
		failAt: make(map[int]bool),
		limit:  -1,
		fps:    DefaultFPS,
	}
}

// FailOn makes the given 0-based read numbers fail with ErrEndOfStream.
func (c *MockCamera) FailOn(reads ...int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range reads {
		c.failAt[r] = true
	}
}

// Limit ends the stream after n successful or failed reads. Negative
// means unlimited.
func (c *MockCamera) Limit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = n
}

// SetOpenError makes Open fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opens++
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	n := c.reads
	c.reads++

	if c.limit >= 0 && n >= c.limit {
		return nil, fmt.Errorf("%w: no more frames", ErrEndOfStream)
	}
	if c.failAt[n] {
		return nil, fmt.Errorf("%w: scripted failure on read %d", ErrEndOfStream, n)
	}

	frame := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns the number of ReadFrame calls made while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Closes returns how many times Close was called.
func (c *MockCamera) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// Opens returns how many times Open was called.
func (c *MockCamera) Opens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}
