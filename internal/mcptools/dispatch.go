package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Dispatch routes a single raw tool call by name. It is the front door
// for one-shot CLI invocation and embedding without an MCP transport;
// the MCP transports route through the same handlers via the SDK's
// registry. The match is closed over the registered tool names, and an
// unknown name yields a displayable envelope, never a hard failure.
func (s *WebcamService) Dispatch(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	switch name {
	case "list_cameras":
		return dispatchTool(ctx, args, s.ListCameras)
	case "capture_image":
		return dispatchTool(ctx, args, s.CaptureImage)
	case "get_camera_info":
		return dispatchTool(ctx, args, s.GetCameraInfo)
	case "search_webcams":
		return dispatchTool(ctx, args, s.SearchWebcams)
	case "capture_remote_image":
		return dispatchTool(ctx, args, s.CaptureRemoteImage)
	default:
		s.log.Warn().Str("tool", name).Msg("unknown tool requested")
		result := errorResult(fmt.Sprintf("Unknown tool: %s", name))
		result.StructuredContent = map[string]any{"error": "Tool not found"}
		return result, nil
	}
}

// dispatchTool decodes raw arguments into the handler's typed input and
// invokes it, mirroring what the MCP SDK does for transport calls.
func dispatchTool[In, Out any](
	ctx context.Context,
	args map[string]any,
	handler func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error),
) (*mcp.CallToolResult, error) {
	var input In
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		result := errorResult(fmt.Sprintf("Invalid parameters: %v", err))
		result.StructuredContent = map[string]any{"error": "Invalid parameters"}
		return result, nil
	}

	result, output, err := handler(ctx, nil, input)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &mcp.CallToolResult{}
	}
	if result.StructuredContent == nil {
		result.StructuredContent = output
	}
	return result, nil
}
