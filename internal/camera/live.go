package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"

	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
)

type State int

const (
	StateIdle State = iota
	StatePreviewActive
	StateCapturingStill
	StateCaptured
)

func (s State) String() string {
	switch s {
	case StatePreviewActive:
		return "preview_active"
	case StateCapturingStill:
		return "capturing_still"
	case StateCaptured:
		return "captured"
	default:
		return "idle"
	}
}

// Listener receives each captured still, already rotated for display.
type Listener func(img image.Image)

type Options struct {
	Facing Facing
	// Rotation is applied clockwise to every still; 270 suits front sensors.
	Rotation int
}

func DefaultOptions() Options {
	return Options{Facing: FacingFront, Rotation: 270}
}

type Status struct {
	State         string `json:"state"`
	CameraID      string `json:"camera_id,omitempty"`
	Facing        string `json:"facing"`
	FaceDetection bool   `json:"face_detection"`
}

// LiveSource opens a camera, waits for the hardware to report a face and
// captures one still per arming. Start re-arms after a capture; Stop
// releases the camera.
type LiveSource struct {
	device      Device
	opts        Options
	logger      *slog.Logger
	auditLogger audit.Logger

	// opMu serializes Start and Stop; mu guards the fields below and is
	// never held while calling the device or the listener.
	opMu sync.Mutex

	mu        sync.Mutex
	state     State
	handle    Handle
	cameraID  string
	detecting bool
	session   uint64
	listener  Listener
}

func NewLiveSource(device Device, opts Options, logger *slog.Logger) *LiveSource {
	return &LiveSource{
		device:      device,
		opts:        opts,
		logger:      logger.With("component", "camera"),
		auditLogger: &audit.NoOpLogger{},
	}
}

func (s *LiveSource) WithAuditLogger(l audit.Logger) *LiveSource {
	s.auditLogger = l
	return s
}

func (s *LiveSource) logAudit(eventType audit.EventType, cameraID string, meta map[string]string) {
	if meta == nil {
		meta = make(map[string]string, 1)
	}
	meta["camera_id"] = cameraID
	_ = s.auditLogger.Log(context.Background(), audit.Event{
		EventType: eventType,
		Provider:  "camera",
		Success:   true,
		Metadata:  meta,
	})
}

// SetListener replaces the capture listener. nil removes it.
func (s *LiveSource) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

func (s *LiveSource) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *LiveSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:         s.state.String(),
		CameraID:      s.cameraID,
		Facing:        s.opts.Facing.String(),
		FaceDetection: s.detecting,
	}
}

// Start opens the camera and begins preview with face signalling. It is a
// no-op while a preview is running.
func (s *LiveSource) Start() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	switch s.state {
	case StatePreviewActive, StateCapturingStill:
		s.mu.Unlock()
		return nil
	case StateCaptured:
		s.state = StatePreviewActive
		s.mu.Unlock()
		s.logger.Info("live capture re-armed")
		return nil
	}
	s.mu.Unlock()

	id, err := s.pickCamera()
	if err != nil {
		return err
	}

	h, err := s.device.Open(id)
	if err != nil {
		return fmt.Errorf("open camera %s: %w", id, err)
	}

	if err := h.StartPreview(); err != nil {
		_ = h.Close()
		return fmt.Errorf("start preview: %w", err)
	}

	s.mu.Lock()
	s.session++
	session := s.session
	s.handle = h
	s.cameraID = id
	s.state = StatePreviewActive
	s.detecting = false
	s.mu.Unlock()

	s.logAudit(audit.EventCameraStarted, id, map[string]string{"facing": s.opts.Facing.String()})

	if h.MaxDetectedFaces() <= 0 {
		s.logger.Info("face detection not supported, preview only", slog.String("camera_id", id))
		return nil
	}

	if err := h.StartFaceDetection(func(count int) { s.onFaces(session, count) }); err != nil {
		s.logger.Warn("start face detection", slog.String("camera_id", id), slog.String("error", err.Error()))
		return nil
	}

	s.mu.Lock()
	if s.session == session {
		s.detecting = true
	}
	s.mu.Unlock()

	s.logger.Info("live capture started",
		slog.String("camera_id", id),
		slog.Int("max_faces", h.MaxDetectedFaces()),
	)
	return nil
}

func (s *LiveSource) pickCamera() (string, error) {
	for _, c := range s.device.Cameras() {
		if c.Facing == s.opts.Facing {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoCamera, s.opts.Facing)
}

// Stop tears down detection and preview and releases the camera. It is a
// no-op when idle. A still requested before Stop is dropped.
func (s *LiveSource) Stop() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return nil
	}
	h, detecting, id := s.handle, s.detecting, s.cameraID
	s.handle = nil
	s.cameraID = ""
	s.detecting = false
	s.state = StateIdle
	s.session++
	s.mu.Unlock()

	if detecting {
		h.StopFaceDetection()
	}
	h.StopPreview()
	if err := h.Close(); err != nil {
		return fmt.Errorf("close camera %s: %w", id, err)
	}

	s.logAudit(audit.EventCameraStopped, id, nil)
	s.logger.Info("live capture stopped", slog.String("camera_id", id))
	return nil
}

func (s *LiveSource) onFaces(session uint64, count int) {
	if count < 1 {
		return
	}

	s.mu.Lock()
	if s.session != session || s.state != StatePreviewActive {
		s.mu.Unlock()
		return
	}
	s.state = StateCapturingStill
	h := s.handle
	s.mu.Unlock()

	s.logger.Debug("face signalled, capturing still", slog.Int("faces", count))

	h.EnableShutterSound(false)
	err := h.TakePicture(func(data []byte, err error) { s.onPicture(session, data, err) })
	if err != nil {
		s.logger.Warn("take picture", slog.String("error", err.Error()))
		s.rearm(session)
	}
}

func (s *LiveSource) onPicture(session uint64, data []byte, err error) {
	if err != nil {
		s.logger.Warn("still capture failed", slog.String("error", err.Error()))
		s.rearm(session)
		return
	}

	img, _, err := imaging.Decode(data)
	if err == nil {
		img, err = imaging.Rotate(img, s.opts.Rotation)
	}
	if err != nil {
		s.logger.Warn("decode still", slog.String("error", err.Error()))
		s.rearm(session)
		return
	}

	s.mu.Lock()
	if s.session != session || s.state != StateCapturingStill {
		s.mu.Unlock()
		s.logger.Debug("still dropped after stop")
		return
	}
	s.state = StateCaptured
	l := s.listener
	id := s.cameraID
	s.mu.Unlock()

	b := img.Bounds()
	s.logAudit(audit.EventCameraCaptured, id, map[string]string{
		"width":  strconv.Itoa(b.Dx()),
		"height": strconv.Itoa(b.Dy()),
	})

	if l != nil {
		l(img)
	}
}

// rearm returns to preview after a failed capture so the next face retries.
func (s *LiveSource) rearm(session uint64) {
	s.mu.Lock()
	if s.session == session && s.state == StateCapturingStill {
		s.state = StatePreviewActive
	}
	s.mu.Unlock()
}
