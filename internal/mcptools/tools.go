package mcptools

import (
	"github.com/dusk-indust/camscope/internal/shodan"
	"github.com/dusk-indust/camscope/internal/webcam"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ListCamerasInput is the input for the list_cameras MCP tool.
type ListCamerasInput struct{}

// ListCamerasOutput is the result of the list_cameras MCP tool.
type ListCamerasOutput struct {
	Cameras []webcam.CameraInfo `json:"cameras"`
	Error   string              `json:"error,omitempty"`
}

// CaptureImageInput is the input for the capture_image MCP tool.
type CaptureImageInput struct {
	CameraIndex int `json:"camera_index,omitempty" jsonschema:"camera index to capture from (default: 0)"`
}

// CaptureImageOutput is the metadata of a successful capture.
type CaptureImageOutput struct {
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	CameraIndex int    `json:"camera_index,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	MIMEType    string `json:"mime_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// GetCameraInfoInput is the input for the get_camera_info MCP tool.
type GetCameraInfoInput struct{}

// GetCameraInfoOutput is the result of the get_camera_info MCP tool.
type GetCameraInfoOutput struct {
	AvailableCameras []webcam.CameraInfo `json:"available_cameras"`
	CurrentCamera    *int                `json:"current_camera,omitempty"`
	TotalCameras     int                 `json:"total_cameras"`
	Error            string              `json:"error,omitempty"`
}

// SearchWebcamsInput is the input for the search_webcams MCP tool.
type SearchWebcamsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of results across all search queries (default: 20)"`
}

// SearchWebcamsOutput is the result of the search_webcams MCP tool.
type SearchWebcamsOutput struct {
	Webcams []shodan.RemoteWebcam `json:"webcams"`
	Total   int                   `json:"total"`
	Error   string                `json:"error,omitempty"`
}

// CaptureRemoteImageInput is the input for the capture_remote_image MCP tool.
type CaptureRemoteImageInput struct {
	URL  string `json:"url" jsonschema:"the webcam URL to fetch an image from"`
	IP   string `json:"ip,omitempty" jsonschema:"the webcam IP address, recorded as metadata"`
	Port int    `json:"port,omitempty" jsonschema:"the webcam port (default: 80)"`
}

// CaptureRemoteImageOutput is the metadata of a successful remote capture.
type CaptureRemoteImageOutput struct {
	Source    string `json:"source,omitempty"`
	URL       string `json:"url,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}
