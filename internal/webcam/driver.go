package webcam

import (
	"context"
	"image"
)

// Driver is the contract the session requires from the capture
// subsystem. Implementations own the pixel-level work; the session only
// manages handle lifecycle and serialization.
type Driver interface {
	// Devices enumerates the capture devices visible to the subsystem.
	// Ordinals in the result are positional and valid only until the
	// next enumeration.
	Devices(ctx context.Context) ([]CameraInfo, error)

	// Open acquires the device at the given ordinal. The caller owns
	// the returned handle and must Close it.
	Open(ctx context.Context, index int) (Handle, error)
}

// Handle is one open capture device.
type Handle interface {
	// ReadFrame captures a single decoded frame. Errors wrapping
	// ErrHandleLost mean the device itself is gone and the handle must
	// be discarded.
	ReadFrame(ctx context.Context) (image.Image, error)

	// Close releases the device.
	Close() error
}
