package camera

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoCamera         = errors.New("no camera with the requested facing")
	ErrPermissionDenied = errors.New("camera permission denied")
)

type Facing int

const (
	FacingBack Facing = iota
	FacingFront
)

func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front", "":
		return FacingFront, nil
	case "back", "rear":
		return FacingBack, nil
	default:
		return FacingFront, fmt.Errorf("unknown camera facing %q", s)
	}
}

type Info struct {
	ID     string
	Facing Facing
}

// Device enumerates and opens cameras. Open returns ErrPermissionDenied
// (possibly wrapped) when access is refused.
type Device interface {
	Cameras() []Info
	Open(id string) (Handle, error)
}

// Handle is an opened camera. Callbacks may run on goroutines owned by the
// device.
type Handle interface {
	// MaxDetectedFaces is zero when the hardware cannot signal faces.
	MaxDetectedFaces() int
	StartPreview() error
	StopPreview()
	StartFaceDetection(onFaces func(count int)) error
	StopFaceDetection()
	EnableShutterSound(enabled bool)
	TakePicture(onPicture func(data []byte, err error)) error
	Close() error
}
