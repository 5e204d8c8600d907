package detector

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandLandmarks_AppendXYZ(t *testing.T) {
	var hand HandLandmarks
	for i := range hand.Points {
		hand.Points[i] = Point3D{X: float64(i), Y: float64(i) + 0.25, Z: -float64(i)}
	}

	got := hand.AppendXYZ([]float64{42})

	require.Len(t, got, 1+NumLandmarks*3)
	assert.Equal(t, 42.0, got[0])
	for i := 0; i < NumLandmarks; i++ {
		assert.Equal(t, float64(i), got[1+i*3], "x of landmark %d", i)
		assert.Equal(t, float64(i)+0.25, got[2+i*3], "y of landmark %d", i)
		assert.Equal(t, -float64(i), got[3+i*3], "z of landmark %d", i)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Nil(t, hands)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{
			ThumbsUpLandmarks(Right),
			OpenPalmLandmarks(Left),
		})

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, hands)
	})

	t.Run("script sees call numbers", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetError(errors.New("ignored"))
		var seen []int
		mock.SetScript(func(call int) ([]HandLandmarks, error) {
			seen = append(seen, call)
			return nil, nil
		})

		for i := 0; i < 3; i++ {
			_, err := mock.Detect(nil)
			require.NoError(t, err)
		}

		assert.Equal(t, []int{0, 1, 2}, seen)
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()
		require.False(t, mock.Closed())

		require.NoError(t, mock.Close())
		assert.True(t, mock.Closed())
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestThumbsUpLandmarks(t *testing.T) {
	for _, side := range []string{Left, Right} {
		t.Run(side, func(t *testing.T) {
			landmarks := ThumbsUpLandmarks(side)

			assert.Equal(t, side, landmarks.Handedness)
			assert.GreaterOrEqual(t, landmarks.Score, 0.9)

			// Thumb tip sits above the MCP and IP joints (lower Y)
			assert.Less(t, landmarks.Points[ThumbTip].Y, landmarks.Points[ThumbMCP].Y)
			assert.Less(t, landmarks.Points[ThumbTip].Y, landmarks.Points[ThumbIP].Y)

			for _, f := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
				extension := landmarks.Points[f[0]].Y - landmarks.Points[f[1]].Y
				assert.LessOrEqual(t, extension, 0.15, "finger %d should be curled", f[1])
			}
		})
	}
}

func TestOpenPalmLandmarks(t *testing.T) {
	right := OpenPalmLandmarks(Right)
	left := OpenPalmLandmarks(Left)

	t.Run("handedness", func(t *testing.T) {
		assert.True(t, right.IsRight())
		assert.True(t, left.IsLeft())
	})

	t.Run("all fingers are extended", func(t *testing.T) {
		for _, f := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
			assert.GreaterOrEqual(t, right.Points[f[0]].Y-right.Points[f[1]].Y, 0.2, "finger %d", f[1])
		}
	})

	t.Run("left is the mirror of right", func(t *testing.T) {
		for i := 0; i < NumLandmarks; i++ {
			assert.InDelta(t, 1-right.Points[i].X, left.Points[i].X, 1e-12)
			assert.Equal(t, right.Points[i].Y, left.Points[i].Y)
			assert.Equal(t, right.Points[i].Z, left.Points[i].Z)
		}
		// thumb points outward on each side
		assert.Greater(t, right.Points[ThumbTip].X, right.Points[ThumbMCP].X)
		assert.Less(t, left.Points[ThumbTip].X, left.Points[ThumbMCP].X)
	})
}

func servicePoints(n int) string {
	points := make([]string, n)
	for i := range points {
		points[i] = fmt.Sprintf(`{"x":%d,"y":0.5,"z":-0.1}`, i)
	}
	return "[" + strings.Join(points, ",") + "]"
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantHands int
		wantErr   error
	}{
		{
			name:      "no hands",
			line:      `{"hands":[]}`,
			wantHands: 0,
		},
		{
			name:      "two hands",
			line:      `{"hands":[{"points":` + servicePoints(21) + `,"handedness":"Left","score":0.9},{"points":` + servicePoints(21) + `,"handedness":"Right","score":0.8}]}`,
			wantHands: 2,
		},
		{
			name:    "short landmark set",
			line:    `{"hands":[{"points":` + servicePoints(20) + `,"handedness":"Left","score":0.9}]}`,
			wantErr: ErrLandmarkCount,
		},
		{
			name:    "long landmark set",
			line:    `{"hands":[{"points":` + servicePoints(33) + `,"handedness":"Right","score":0.9}]}`,
			wantErr: ErrLandmarkCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseResponse([]byte(tt.line + "\n"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, hands, tt.wantHands)
		})
	}

	t.Run("points keep order", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[{"points":` + servicePoints(21) + `,"handedness":"Left","score":0.9}]}`))
		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, Left, hands[0].Handedness)
		assert.Equal(t, Point3D{X: 20, Y: 0.5, Z: -0.1}, hands[0].Points[PinkyTip])
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"error":"model not loaded"}`))
		assert.ErrorContains(t, err, "model not loaded")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"hands":`))
		assert.Error(t, err)
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = t.TempDir() + "/missing.py"

	_, err := NewMediaPipeDetector(cfg)
	assert.Error(t, err)
}
