package webcam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Session owns at most one open capture device at a time. Every
// operation runs under an exclusive lock held for the whole
// open+capture sequence, so concurrent tool calls against the device
// are fully serialized and never observe an interleaved open.
type Session struct {
	driver Driver
	log    zerolog.Logger

	// sem is the session lock. A weighted semaphore instead of a plain
	// mutex so acquisition respects context cancellation; an
	// acquisition failure is an internal fault, not a domain error.
	sem *semaphore.Weighted

	// handle and index are mutated only while holding sem.
	handle Handle
	index  int

	// current mirrors index for lock-free reads; -1 means closed.
	current atomic.Int64
}

// NewSession creates a Session over the given driver with no device open.
func NewSession(driver Driver, log zerolog.Logger) *Session {
	s := &Session{
		driver: driver,
		log:    log.With().Str("component", "webcam-session").Logger(),
		sem:    semaphore.NewWeighted(1),
	}
	s.current.Store(-1)
	return s
}

// ListCameras enumerates the local capture devices. An enumeration
// failure is reported as zero devices rather than an error, except when
// device support itself is absent, which is a hard failure.
func (s *Session) ListCameras(ctx context.Context) ([]CameraInfo, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	cameras, err := s.driver.Devices(ctx)
	if err != nil {
		if errors.Is(err, ErrNotSupported) {
			return nil, err
		}
		s.log.Warn().Err(err).Msg("failed to query devices")
		return []CameraInfo{}, nil
	}
	s.log.Info().Int("count", len(cameras)).Msg("listed cameras")
	return cameras, nil
}

// Open opens the camera at the given index, releasing whichever device
// was open before. The previous handle is released even if the new open
// fails, so the session never points at a stale handle.
func (s *Session) Open(ctx context.Context, index int) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	s.closeLocked()
	return s.openLocked(ctx, index)
}

// Capture grabs one frame from the requested camera, defaulting to
// index 0. The camera is opened implicitly when it is not already the
// active one. On failure the session settles back to open (handle
// retained) or closed (handle dead), never an intermediate state.
func (s *Session) Capture(ctx context.Context, index *int) (*CaptureResult, error) {
	target := 0
	if index != nil {
		target = *index
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	if s.handle == nil || s.index != target {
		s.closeLocked()
		if err := s.openLocked(ctx, target); err != nil {
			return nil, err
		}
	}

	img, err := s.handle.ReadFrame(ctx)
	if err != nil {
		if errors.Is(err, ErrHandleLost) {
			s.closeLocked()
		}
		return nil, fmt.Errorf("capture from camera %d: %w", target, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	bounds := img.Bounds()
	s.log.Info().
		Int("camera", target).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("captured image")

	return &CaptureResult{
		Data:        buf.Bytes(),
		MIMEType:    "image/jpeg",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Timestamp:   time.Now().UTC(),
		CameraIndex: target,
	}, nil
}

// Current reports which camera index is open, if any.
func (s *Session) Current() (int, bool) {
	idx := s.current.Load()
	if idx < 0 {
		return 0, false
	}
	return int(idx), true
}

// Close releases the open device handle, if any.
func (s *Session) Close() error {
	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	s.closeLocked()
	return nil
}

// openLocked opens a device without touching the previous handle; the
// caller must hold sem and have closed any prior handle already.
func (s *Session) openLocked(ctx context.Context, index int) error {
	handle, err := s.driver.Open(ctx, index)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return fmt.Errorf("open camera %d: %w", index, err)
	}
	s.handle = handle
	s.index = index
	s.current.Store(int64(index))
	s.log.Info().Int("camera", index).Msg("opened camera")
	return nil
}

// closeLocked releases the current handle. The caller must hold sem.
func (s *Session) closeLocked() {
	if s.handle == nil {
		return
	}
	if err := s.handle.Close(); err != nil {
		s.log.Warn().Err(err).Int("camera", s.index).Msg("failed to close camera")
	}
	s.handle = nil
	s.current.Store(-1)
}
