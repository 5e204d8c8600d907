package capture

import (
	"errors"
	"testing"
)

func TestMockCamera_ReadsFrames(t *testing.T) {
	cam := NewMockCamera(64, 48)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 3; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		if f.Cols() != 64 || f.Rows() != 48 {
			t.Errorf("frame size = %dx%d, want 64x48", f.Cols(), f.Rows())
		}
		f.Close()
	}

	if got := cam.Reads(); got != 3 {
		t.Errorf("Reads() = %d, want 3", got)
	}
}

func TestMockCamera_FailOn(t *testing.T) {
	cam := NewMockCamera(8, 8)
	cam.FailOn(1)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("read 0 error = %v", err)
	}
	f.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("read 1 error = %v, want ErrEndOfStream", err)
	}

	// a scripted failure does not end the stream for good
	f, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("read 2 error = %v", err)
	}
	f.Close()
}

func TestMockCamera_Limit(t *testing.T) {
	cam := NewMockCamera(8, 8)
	cam.Limit(1)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("read 0 error = %v", err)
	}
	f.Close()

	for i := 0; i < 2; i++ {
		if _, err := cam.ReadFrame(); !IsEndOfStream(err) {
			t.Fatalf("read past limit error = %v, want end of stream", err)
		}
	}
}

func TestMockCamera_OpenError(t *testing.T) {
	cam := NewMockCamera(8, 8)
	wantErr := errors.New("no device")
	cam.SetOpenError(wantErr)

	if err := cam.Open(); !errors.Is(err, wantErr) {
		t.Fatalf("Open() error = %v, want %v", err, wantErr)
	}
	if cam.IsOpen() {
		t.Error("camera should not be open after failed Open()")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if cam.Opens() != 1 {
		t.Errorf("Opens() = %d, want 1", cam.Opens())
	}
}

func TestMockCamera_Close(t *testing.T) {
	cam := NewMockCamera(8, 8)
	cam.Open()

	cam.Close()
	cam.Close()

	if cam.IsOpen() {
		t.Error("IsOpen() should be false after Close()")
	}
	if cam.Closes() != 2 {
		t.Errorf("Closes() = %d, want 2", cam.Closes())
	}
}

func TestMockCamera_ImplementsCamera(t *testing.T) {
	var _ Camera = (*MockCamera)(nil)
}
