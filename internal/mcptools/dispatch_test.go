package mcptools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/camscope/internal/webcam"
)

func TestDispatchRoutesKnownTools(t *testing.T) {
	session := &fakeSession{cameras: []webcam.CameraInfo{{Index: 0, Name: "Integrated Camera"}}}
	svc := newTestService(session, &fakeFinder{})
	ctx := context.Background()

	t.Run("list_cameras", func(t *testing.T) {
		result, err := svc.Dispatch(ctx, "list_cameras", nil)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "Found 1 camera(s)", textContent(t, result, 0))

		output, ok := result.StructuredContent.(ListCamerasOutput)
		require.True(t, ok)
		assert.Len(t, output.Cameras, 1)
	})

	t.Run("capture_image decodes typed parameters", func(t *testing.T) {
		result, err := svc.Dispatch(ctx, "capture_image", map[string]any{"camera_index": 0})
		require.NoError(t, err)
		assert.False(t, result.IsError)

		output, ok := result.StructuredContent.(CaptureImageOutput)
		require.True(t, ok)
		assert.Equal(t, 0, output.CameraIndex)
	})

	t.Run("capture_remote_image without url", func(t *testing.T) {
		result, err := svc.Dispatch(ctx, "capture_remote_image", map[string]any{})
		require.NoError(t, err)
		assert.True(t, result.IsError)

		output, ok := result.StructuredContent.(CaptureRemoteImageOutput)
		require.True(t, ok)
		assert.Equal(t, "Missing required parameters", output.Error)
	})
}

func TestDispatchUnknownTool(t *testing.T) {
	svc := newTestService(&fakeSession{}, nil)

	result, err := svc.Dispatch(context.Background(), "nonexistent_tool", map[string]any{})
	require.NoError(t, err, "unknown tools are reported, never a hard failure")

	assert.True(t, result.IsError)
	assert.Equal(t, "Unknown tool: nonexistent_tool", textContent(t, result, 0))

	structured, ok := result.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Tool not found", structured["error"])
}

func TestDispatchInvalidParameters(t *testing.T) {
	svc := newTestService(&fakeSession{}, nil)

	result, err := svc.Dispatch(context.Background(), "capture_image", map[string]any{
		"camera_index": "not a number",
	})
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result, 0), "Invalid parameters")
}
