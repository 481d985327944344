// Package virtual implements camera.Device over a directory of still frames,
// for hosts without camera hardware.
package virtual

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/facemood/internal/camera"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
)

const cameraID = "virtual-0"

var (
	ErrNoFrames      = errors.New("no frames found")
	ErrNotPreviewing = errors.New("preview not running")
)

type Config struct {
	FramesDir string
	Facing    camera.Facing
	Interval  time.Duration
	MaxFaces  int
}

// Device plays frames from a directory in name order, looping forever.
type Device struct {
	config  Config
	frames  []string
	counter FaceCounter
	logger  *slog.Logger
}

// New lists the frames in cfg.FramesDir. counter may be nil, in which case
// the camera reports no face detection support.
func New(cfg Config, counter FaceCounter, logger *slog.Logger) (*Device, error) {
	entries, err := os.ReadDir(cfg.FramesDir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			frames = append(frames, filepath.Join(cfg.FramesDir, e.Name()))
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, cfg.FramesDir)
	}
	sort.Strings(frames)

	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.MaxFaces <= 0 {
		cfg.MaxFaces = 5
	}

	return &Device{
		config:  cfg,
		frames:  frames,
		counter: counter,
		logger:  logger.With("component", "virtual_camera"),
	}, nil
}

func (d *Device) Cameras() []camera.Info {
	return []camera.Info{{ID: cameraID, Facing: d.config.Facing}}
}

func (d *Device) Open(id string) (camera.Handle, error) {
	if id != cameraID {
		return nil, fmt.Errorf("%w: %s", camera.ErrNoCamera, id)
	}
	return &handle{device: d}, nil
}

type handle struct {
	device *Device

	mu      sync.Mutex
	frame   int
	current []byte
	onFaces func(int)
	shutter bool
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

func (h *handle) MaxDetectedFaces() int {
	if h.device.counter == nil {
		return 0
	}
	return h.device.config.MaxFaces
}

func (h *handle) StartPreview() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("camera closed")
	}
	if h.stop != nil {
		return nil
	}

	if err := h.advanceLocked(); err != nil {
		return err
	}

	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.loop(h.stop, h.done)
	return nil
}

func (h *handle) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.device.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *handle) tick() {
	h.mu.Lock()
	if err := h.advanceLocked(); err != nil {
		h.mu.Unlock()
		h.device.logger.Warn("read frame", slog.String("error", err.Error()))
		return
	}
	frame, onFaces := h.current, h.onFaces
	h.mu.Unlock()

	if onFaces == nil || h.device.counter == nil {
		return
	}

	img, _, err := imaging.Decode(frame)
	if err != nil {
		h.device.logger.Warn("decode frame", slog.String("error", err.Error()))
		return
	}
	onFaces(h.device.counter.CountFaces(img))
}

// advanceLocked loads the next frame into current.
func (h *handle) advanceLocked() error {
	path := h.device.frames[h.frame%len(h.device.frames)]
	h.frame++
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	h.current = data
	return nil
}

func (h *handle) StopPreview() {
	h.mu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	h.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (h *handle) StartFaceDetection(onFaces func(int)) error {
	if h.device.counter == nil {
		return errors.New("face detection not supported")
	}
	h.mu.Lock()
	h.onFaces = onFaces
	h.mu.Unlock()
	return nil
}

func (h *handle) StopFaceDetection() {
	h.mu.Lock()
	h.onFaces = nil
	h.mu.Unlock()
}

func (h *handle) EnableShutterSound(enabled bool) {
	h.mu.Lock()
	h.shutter = enabled
	h.mu.Unlock()
}

// TakePicture delivers the frame currently on preview.
func (h *handle) TakePicture(onPicture func([]byte, error)) error {
	h.mu.Lock()
	if h.stop == nil {
		h.mu.Unlock()
		return ErrNotPreviewing
	}
	still := append([]byte(nil), h.current...)
	h.mu.Unlock()

	go onPicture(still, nil)
	return nil
}

func (h *handle) Close() error {
	h.StopPreview()
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
