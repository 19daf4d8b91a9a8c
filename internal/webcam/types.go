package webcam

import (
	"errors"
	"fmt"
	"time"
)

// CameraInfo describes one local capture device at enumeration time.
// The index is an ordinal that is stable only within the enumeration
// call that produced it; devices are re-enumerated on every request.
type CameraInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// CaptureResult is a single captured frame, JPEG-encoded.
type CaptureResult struct {
	Data        []byte
	MIMEType    string
	Width       int
	Height      int
	Timestamp   time.Time
	CameraIndex int
}

// ErrNotSupported indicates the capture subsystem itself is absent, as
// opposed to merely having zero devices attached.
var ErrNotSupported = errors.New("webcam: local camera support not available")

// ErrHandleLost indicates the open device handle died underneath us.
// Driver implementations wrap it when a frame read fails because the
// device is gone rather than because the read itself failed.
var ErrHandleLost = errors.New("webcam: device handle lost")

// NotFoundError reports a camera index with no corresponding device.
type NotFoundError struct {
	Index int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("webcam: camera %d not found", e.Index)
}
