package mcptools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/dusk-indust/camscope/internal/shodan"
	"github.com/dusk-indust/camscope/internal/webcam"
)

// CameraSession is the device-session contract the tool handlers need.
// *webcam.Session implements it.
type CameraSession interface {
	ListCameras(ctx context.Context) ([]webcam.CameraInfo, error)
	Capture(ctx context.Context, index *int) (*webcam.CaptureResult, error)
	Current() (int, bool)
}

// WebcamFinder is the remote-discovery contract. *shodan.Client
// implements it. A nil finder disables the remote tools.
type WebcamFinder interface {
	SearchWebcams(ctx context.Context, limit int) ([]shodan.RemoteWebcam, error)
	FetchImage(ctx context.Context, webcam *shodan.RemoteWebcam) ([]byte, error)
}

// WebcamService handles MCP tool calls. Domain failures are reported
// inside the tool result so the caller always gets a displayable
// envelope; a Go error is returned only for internal faults such as a
// cancelled lock acquisition.
type WebcamService struct {
	session CameraSession
	finder  WebcamFinder
	log     zerolog.Logger
}

// NewWebcamService creates a WebcamService. finder may be nil when no
// search-provider credential is configured; the remote tools are then
// left out of the registry entirely.
func NewWebcamService(session CameraSession, finder WebcamFinder, log zerolog.Logger) *WebcamService {
	return &WebcamService{
		session: session,
		finder:  finder,
		log:     log.With().Str("component", "mcptools").Logger(),
	}
}

// RemoteEnabled reports whether the remote discovery tools are available.
func (s *WebcamService) RemoteEnabled() bool {
	return s.finder != nil
}

// errorResult builds the uniform domain-error envelope: a successful
// result flagged IsError with a human-readable message.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// textResult builds a plain text success envelope.
func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

// internalFault reports whether an error came from the dispatch
// machinery itself rather than the domain, and must therefore abort the
// call instead of being rendered into an envelope.
func internalFault(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ListCameras enumerates the local capture devices.
func (s *WebcamService) ListCameras(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCamerasInput,
) (*mcp.CallToolResult, ListCamerasOutput, error) {
	cameras, err := s.session.ListCameras(ctx)
	if err != nil {
		if internalFault(err) {
			return nil, ListCamerasOutput{}, err
		}
		s.log.Error().Err(err).Msg("failed to list cameras")
		return errorResult(fmt.Sprintf("Error listing cameras: %v", err)),
			ListCamerasOutput{Cameras: []webcam.CameraInfo{}, Error: err.Error()}, nil
	}

	return textResult(fmt.Sprintf("Found %d camera(s)", len(cameras))),
		ListCamerasOutput{Cameras: cameras}, nil
}

// CaptureImage grabs one frame from a local camera, opening it first if
// needed. Concurrent captures serialize on the session lock.
func (s *WebcamService) CaptureImage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CaptureImageInput,
) (*mcp.CallToolResult, CaptureImageOutput, error) {
	index := input.CameraIndex
	result, err := s.session.Capture(ctx, &index)
	if err != nil {
		if internalFault(err) {
			return nil, CaptureImageOutput{}, err
		}
		s.log.Error().Err(err).Int("camera", index).Msg("failed to capture image")
		return errorResult(fmt.Sprintf("Error capturing image: %v", err)),
			CaptureImageOutput{Error: err.Error()}, nil
	}

	timestamp := result.Timestamp.Format(time.RFC3339)
	envelope := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: result.Data, MIMEType: result.MIMEType},
			&mcp.TextContent{Text: fmt.Sprintf(
				"Captured %dx%d image from camera %d at %s",
				result.Width, result.Height, result.CameraIndex, timestamp,
			)},
		},
	}
	return envelope, CaptureImageOutput{
		Width:       result.Width,
		Height:      result.Height,
		CameraIndex: result.CameraIndex,
		Timestamp:   timestamp,
		MIMEType:    result.MIMEType,
	}, nil
}

// GetCameraInfo reports the available cameras and which one is open.
func (s *WebcamService) GetCameraInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetCameraInfoInput,
) (*mcp.CallToolResult, GetCameraInfoOutput, error) {
	cameras, err := s.session.ListCameras(ctx)
	if err != nil {
		if internalFault(err) {
			return nil, GetCameraInfoOutput{}, err
		}
		s.log.Error().Err(err).Msg("failed to get camera info")
		return errorResult(fmt.Sprintf("Error getting camera info: %v", err)),
			GetCameraInfoOutput{AvailableCameras: []webcam.CameraInfo{}, Error: err.Error()}, nil
	}

	output := GetCameraInfoOutput{
		AvailableCameras: cameras,
		TotalCameras:     len(cameras),
	}
	current := "none"
	if idx, open := s.session.Current(); open {
		output.CurrentCamera = &idx
		current = fmt.Sprintf("%d", idx)
	}

	return textResult(fmt.Sprintf("Camera info: %d total cameras, current: %s", len(cameras), current)),
		output, nil
}

// SearchWebcams runs the discovery pipeline against the search provider.
func (s *WebcamService) SearchWebcams(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchWebcamsInput,
) (*mcp.CallToolResult, SearchWebcamsOutput, error) {
	if s.finder == nil {
		return s.remoteDisabledResult(), SearchWebcamsOutput{Error: "No Shodan API key"}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	webcams, err := s.finder.SearchWebcams(ctx, limit)
	if err != nil {
		if internalFault(err) {
			return nil, SearchWebcamsOutput{}, err
		}
		s.log.Error().Err(err).Msg("webcam search failed")
		return errorResult(fmt.Sprintf("Error searching webcams: %v", err)),
			SearchWebcamsOutput{Webcams: []shodan.RemoteWebcam{}, Error: err.Error()}, nil
	}

	return textResult(fmt.Sprintf("Found %d remote webcam(s)", len(webcams))),
		SearchWebcamsOutput{Webcams: webcams, Total: len(webcams)}, nil
}

// CaptureRemoteImage fetches a single payload from a remote webcam URL.
func (s *WebcamService) CaptureRemoteImage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CaptureRemoteImageInput,
) (*mcp.CallToolResult, CaptureRemoteImageOutput, error) {
	if s.finder == nil {
		return s.remoteDisabledResult(), CaptureRemoteImageOutput{Error: "No Shodan API key"}, nil
	}

	if input.URL == "" {
		return errorResult("Please provide 'url' parameter with the webcam URL"),
			CaptureRemoteImageOutput{Error: "Missing required parameters"}, nil
	}

	ip := input.IP
	if ip == "" {
		ip = "unknown"
	}
	port := input.Port
	if port == 0 {
		port = 80
	}

	target := &shodan.RemoteWebcam{
		IP:         ip,
		Port:       port,
		URL:        input.URL,
		LastSeen:   time.Now().UTC().Format(time.RFC3339),
		AccessType: shodan.AccessHTTP,
	}

	data, err := s.finder.FetchImage(ctx, target)
	if err != nil {
		if internalFault(err) {
			return nil, CaptureRemoteImageOutput{}, err
		}
		s.log.Error().Err(err).Str("url", input.URL).Msg("failed to capture remote image")
		return errorResult(fmt.Sprintf("Error capturing remote image from %s: %v", input.URL, err)),
			CaptureRemoteImageOutput{Error: err.Error()}, nil
	}

	envelope := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: data, MIMEType: "image/jpeg"},
			&mcp.TextContent{Text: fmt.Sprintf("Captured image from remote webcam: %s", input.URL)},
		},
	}
	return envelope, CaptureRemoteImageOutput{
		Source:    "remote_webcam",
		URL:       input.URL,
		SizeBytes: len(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *WebcamService) remoteDisabledResult() *mcp.CallToolResult {
	return errorResult("Shodan integration not available. Please set SHODAN_API_KEY environment variable.")
}
