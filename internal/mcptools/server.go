package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewWebcamMCPServer creates an MCP server with the local camera tools
// registered. The remote discovery tools are added only when the
// service was built with a search-provider credential; without one they
// are absent from the tool list rather than registered-but-erroring.
func NewWebcamMCPServer(svc *WebcamService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "camscope",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_cameras",
		Description: "List all available local camera devices.",
	}, svc.ListCameras)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capture_image",
		Description: "Capture a single image from a local camera. Opens the requested camera (default 0) if it is not already open.",
	}, svc.CaptureImage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_camera_info",
		Description: "Report the available local cameras and which one is currently open.",
	}, svc.GetCameraInfo)

	if svc.RemoteEnabled() {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "search_webcams",
			Description: "Search for internet-exposed webcams via the Shodan API. Results are classified by likely access type (MJPEG, RTSP, HTTP) and deduplicated by address.",
		}, svc.SearchWebcams)

		mcp.AddTool(server, &mcp.Tool{
			Name:        "capture_remote_image",
			Description: "Fetch a single image payload from a remote webcam URL, bounded by a fixed timeout.",
		}, svc.CaptureRemoteImage)
	}

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin
// is closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the webcam MCP tools over the
// streamable HTTP transport.
func RunHTTP(ctx context.Context, svc *WebcamService, addr string) error {
	server := NewWebcamMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
