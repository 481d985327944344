package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeHandle struct {
	mu            sync.Mutex
	maxFaces      int
	previewing    bool
	detecting     bool
	shutter       bool
	closed        bool
	pictures      int
	onFaces       func(int)
	onPicture     func([]byte, error)
	takePictureFn func() error
}

func (h *fakeHandle) MaxDetectedFaces() int { return h.maxFaces }

func (h *fakeHandle) StartPreview() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previewing = true
	return nil
}

func (h *fakeHandle) StopPreview() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previewing = false
}

func (h *fakeHandle) StartFaceDetection(fn func(int)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detecting = true
	h.onFaces = fn
	return nil
}

func (h *fakeHandle) StopFaceDetection() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detecting = false
}

func (h *fakeHandle) EnableShutterSound(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutter = enabled
}

func (h *fakeHandle) TakePicture(fn func([]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.takePictureFn != nil {
		if err := h.takePictureFn(); err != nil {
			return err
		}
	}
	h.pictures++
	h.onPicture = fn
	return nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) signal(n int) {
	h.mu.Lock()
	fn := h.onFaces
	h.mu.Unlock()
	fn(n)
}

func (h *fakeHandle) deliver(data []byte, err error) {
	h.mu.Lock()
	fn := h.onPicture
	h.mu.Unlock()
	fn(data, err)
}

type fakeDevice struct {
	cams    []Info
	handle  *fakeHandle
	openErr error
	opens   int
}

func (d *fakeDevice) Cameras() []Info { return d.cams }

func (d *fakeDevice) Open(id string) (Handle, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opens++
	return d.handle, nil
}

func newFakeDevice(maxFaces int) *fakeDevice {
	return &fakeDevice{
		cams: []Info{
			{ID: "0", Facing: FacingBack},
			{ID: "1", Facing: FacingFront},
		},
		handle: &fakeHandle{maxFaces: maxFaces, shutter: true},
	}
}

// stillJPEG is a 40x20 blue frame.
func stillJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestLiveSource_StartIsIdempotent(t *testing.T) {
	dev := newFakeDevice(5)
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	require.NoError(t, src.Start())
	require.NoError(t, src.Start())

	assert.Equal(t, 1, dev.opens)
	assert.Equal(t, StatePreviewActive, src.State())
	assert.True(t, dev.handle.previewing)
	assert.True(t, dev.handle.detecting)

	status := src.Status()
	assert.Equal(t, "1", status.CameraID, "front camera by default")
	assert.Equal(t, "front", status.Facing)
	assert.True(t, status.FaceDetection)
}

func TestLiveSource_StopWhenIdle(t *testing.T) {
	dev := newFakeDevice(5)
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	assert.NoError(t, src.Stop())
	assert.NoError(t, src.Stop())
	assert.Equal(t, StateIdle, src.State())
	assert.Equal(t, 0, dev.opens)
	assert.False(t, dev.handle.closed)
}

func TestLiveSource_StopReleasesCamera(t *testing.T) {
	dev := newFakeDevice(5)
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	require.NoError(t, src.Start())
	require.NoError(t, src.Stop())

	assert.Equal(t, StateIdle, src.State())
	assert.False(t, dev.handle.detecting)
	assert.False(t, dev.handle.previewing)
	assert.True(t, dev.handle.closed)
	assert.Empty(t, src.Status().CameraID)
}

func TestLiveSource_CaptureFlow(t *testing.T) {
	dev := newFakeDevice(5)
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	var got []image.Image
	src.SetListener(func(img image.Image) { got = append(got, img) })

	require.NoError(t, src.Start())

	dev.handle.signal(0)
	assert.Equal(t, StatePreviewActive, src.State(), "zero faces must not trigger capture")

	dev.handle.signal(2)
	assert.Equal(t, StateCapturingStill, src.State())
	assert.False(t, dev.handle.shutter, "shutter sound disabled before capture")
	assert.Equal(t, 1, dev.handle.pictures)

	// further signals while capturing are ignored
	dev.handle.signal(1)
	assert.Equal(t, 1, dev.handle.pictures)

	dev.handle.deliver(stillJPEG(t), nil)

	require.Len(t, got, 1)
	assert.Equal(t, StateCaptured, src.State())
	assert.Equal(t, image.Pt(20, 40), got[0].Bounds().Size(), "still rotated by 270 degrees")
	assert.False(t, dev.handle.closed, "camera stays open after capture")

	// no second capture until re-armed
	dev.handle.signal(1)
	assert.Equal(t, 1, dev.handle.pictures)

	require.NoError(t, src.Start())
	assert.Equal(t, StatePreviewActive, src.State())
	assert.Equal(t, 1, dev.opens, "re-arming does not reopen")

	dev.handle.signal(1)
	assert.Equal(t, 2, dev.handle.pictures)
}

func TestLiveSource_PictureAfterStopIsDropped(t *testing.T) {
	dev := newFakeDevice(5)
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	calls := 0
	src.SetListener(func(image.Image) { calls++ })

	require.NoError(t, src.Start())
	dev.handle.signal(1)
	require.NoError(t, src.Stop())

	dev.handle.deliver(stillJPEG(t), nil)

	assert.Equal(t, 0, calls)
	assert.Equal(t, StateIdle, src.State())
}

func TestLiveSource_FailedCaptureRearms(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"camera error", nil, errors.New("sensor busy")},
		{"undecodable still", []byte("garbage"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice(5)
			src := NewLiveSource(dev, DefaultOptions(), testLogger())
			calls := 0
			src.SetListener(func(image.Image) { calls++ })

			require.NoError(t, src.Start())
			dev.handle.signal(1)
			dev.handle.deliver(tt.data, tt.err)

			assert.Equal(t, 0, calls)
			assert.Equal(t, StatePreviewActive, src.State())
		})
	}
}

func TestLiveSource_TakePictureError(t *testing.T) {
	dev := newFakeDevice(5)
	dev.handle.takePictureFn = func() error { return errors.New("not ready") }
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	require.NoError(t, src.Start())
	dev.handle.signal(1)

	assert.Equal(t, StatePreviewActive, src.State())
}

func TestLiveSource_NoFaceDetectionSupport(t *testing.T) {
	dev := newFakeDevice(0)
	src := NewLiveSource(dev, DefaultOptions(), testLogger())

	require.NoError(t, src.Start())

	assert.Equal(t, StatePreviewActive, src.State())
	assert.True(t, dev.handle.previewing, "preview keeps running")
	assert.False(t, dev.handle.detecting)
	assert.False(t, src.Status().FaceDetection)
}

func TestLiveSource_StartErrors(t *testing.T) {
	t.Run("no camera with facing", func(t *testing.T) {
		dev := newFakeDevice(5)
		dev.cams = []Info{{ID: "0", Facing: FacingBack}}
		src := NewLiveSource(dev, DefaultOptions(), testLogger())

		err := src.Start()
		assert.ErrorIs(t, err, ErrNoCamera)
		assert.Equal(t, StateIdle, src.State())
	})

	t.Run("permission denied", func(t *testing.T) {
		dev := newFakeDevice(5)
		dev.openErr = ErrPermissionDenied
		src := NewLiveSource(dev, DefaultOptions(), testLogger())

		err := src.Start()
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, StateIdle, src.State())
	})
}

func TestLiveSource_BackFacing(t *testing.T) {
	dev := newFakeDevice(5)
	src := NewLiveSource(dev, Options{Facing: FacingBack, Rotation: 90}, testLogger())

	require.NoError(t, src.Start())
	assert.Equal(t, "0", src.Status().CameraID)
}

func TestParseFacing(t *testing.T) {
	tests := []struct {
		in      string
		want    Facing
		wantErr bool
	}{
		{"front", FacingFront, false},
		{"", FacingFront, false},
		{"BACK", FacingBack, false},
		{"rear", FacingBack, false},
		{"sideways", FacingFront, true},
	}

	for _, tt := range tests {
		got, err := ParseFacing(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "preview_active", StatePreviewActive.String())
	assert.Equal(t, "capturing_still", StateCapturingStill.String())
	assert.Equal(t, "captured", StateCaptured.String())
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Log(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) types() []audit.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func TestLiveSource_AuditTrail(t *testing.T) {
	dev := newFakeDevice(5)
	rec := &recordingAudit{}
	src := NewLiveSource(dev, DefaultOptions(), testLogger()).WithAuditLogger(rec)

	require.NoError(t, src.Start())
	dev.handle.signal(1)
	dev.handle.deliver(stillJPEG(t), nil)
	require.NoError(t, src.Stop())

	assert.Equal(t, []audit.EventType{
		audit.EventCameraStarted,
		audit.EventCameraCaptured,
		audit.EventCameraStopped,
	}, rec.types())

	for _, e := range rec.events {
		assert.NotEmpty(t, e.Metadata["camera_id"])
	}
	assert.Equal(t, "20", rec.events[1].Metadata["width"])
}
