package webcam

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Default capture resolution requested from the device when the config
// does not specify one.
const (
	defaultCaptureWidth  = 1280
	defaultCaptureHeight = 720
)

// Compile-time interface check.
var _ Driver = (*FFmpegDriver)(nil)

// FFmpegDriver captures frames from V4L2 devices by shelling out to
// ffmpeg, and enumerates /dev/video* nodes. It holds no state of its
// own; all per-device state lives in the handles it returns.
type FFmpegDriver struct {
	width  int
	height int
	log    zerolog.Logger
}

// NewFFmpegDriver creates an FFmpegDriver requesting the given capture
// resolution. Zero width or height selects the default resolution.
func NewFFmpegDriver(width, height int, log zerolog.Logger) *FFmpegDriver {
	if width <= 0 {
		width = defaultCaptureWidth
	}
	if height <= 0 {
		height = defaultCaptureHeight
	}
	return &FFmpegDriver{
		width:  width,
		height: height,
		log:    log.With().Str("component", "ffmpeg-driver").Logger(),
	}
}

// Devices scans /dev/video* and reports each node as a camera, sorted
// by device number so ordinals are deterministic.
func (d *FFmpegDriver) Devices(ctx context.Context) ([]CameraInfo, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not in PATH", ErrNotSupported)
	}

	nodes, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, fmt.Errorf("webcam: scan devices: %w", err)
	}

	sort.Slice(nodes, func(i, j int) bool {
		return deviceNumber(nodes[i]) < deviceNumber(nodes[j])
	})

	cameras := make([]CameraInfo, 0, len(nodes))
	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			return cameras, err
		}
		cameras = append(cameras, CameraInfo{
			Index:       i,
			Name:        deviceName(ctx, node),
			Description: node,
			Available:   deviceReadable(node),
		})
	}

	d.log.Debug().Int("count", len(cameras)).Msg("enumerated video devices")
	return cameras, nil
}

// Open resolves the ordinal against a fresh enumeration and returns a
// handle bound to the matching device node.
func (d *FFmpegDriver) Open(ctx context.Context, index int) (Handle, error) {
	cameras, err := d.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cameras) {
		return nil, &NotFoundError{Index: index}
	}

	node := cameras[index].Description
	if !deviceReadable(node) {
		return nil, fmt.Errorf("webcam: open %s: device not readable", node)
	}

	d.log.Info().Str("device", node).Int("index", index).Msg("opened video device")
	return &ffmpegHandle{
		node:   node,
		width:  d.width,
		height: d.height,
	}, nil
}

// ffmpegHandle captures one frame per ReadFrame by running ffmpeg
// against the bound device node.
type ffmpegHandle struct {
	node   string
	width  int
	height int
}

func (h *ffmpegHandle) ReadFrame(ctx context.Context) (image.Image, error) {
	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", h.width, h.height),
		"-i", h.node,
		"-vframes", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, statErr := os.Stat(h.node); statErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrHandleLost, h.node, statErr)
		}
		return nil, fmt.Errorf("webcam: capture frame: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	img, err := jpeg.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("webcam: decode frame: %w", err)
	}
	return img, nil
}

func (h *ffmpegHandle) Close() error {
	// Nothing held between frames; the device is only busy while ffmpeg runs.
	return nil
}

// deviceName asks v4l2-ctl for the card type of a device node, falling
// back to the node path when the tool is unavailable.
func deviceName(ctx context.Context, node string) string {
	out, err := exec.CommandContext(ctx, "v4l2-ctl", "--device", node, "--info").Output()
	if err != nil {
		return fmt.Sprintf("Camera %d", deviceNumber(node))
	}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(key) == "Card type" {
			return strings.TrimSpace(value)
		}
	}
	return fmt.Sprintf("Camera %d", deviceNumber(node))
}

func deviceReadable(node string) bool {
	f, err := os.OpenFile(node, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func deviceNumber(node string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(node, "/dev/video"))
	if err != nil {
		return -1
	}
	return n
}
