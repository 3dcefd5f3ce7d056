package submit

import (
	"context"

	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/transport"
)

// CaptureResult is the completion value of one screenshot acquisition.
type CaptureResult struct {
	Ref *transport.ScreenshotResult
	Err error
}

// ScreenshotProvider acquires a screenshot reference for a submission. The
// returned channel delivers exactly one result; completion timing is owned
// by the host's frame capture, not by the orchestrator.
type ScreenshotProvider interface {
	Capture(ctx context.Context, serverID string) <-chan CaptureResult
}

// Screenshotter chains the host frame capture with the backend's
// upload-validation endpoint. The backend decides per destination tier
// whether the image is persisted (URL) or echoed back inline (base64).
type Screenshotter struct {
	frames host.FrameCapturer
	client transport.Client
}

var _ ScreenshotProvider = (*Screenshotter)(nil)

func NewScreenshotter(frames host.FrameCapturer, client transport.Client) *Screenshotter {
	return &Screenshotter{
		frames: frames,
		client: client,
	}
}

func (s *Screenshotter) Capture(ctx context.Context, serverID string) <-chan CaptureResult {
	out := make(chan CaptureResult, 1)
	go func() {
		defer close(out)

		frame := <-s.frames.CaptureFrame(ctx)
		if frame.Err != nil {
			out <- CaptureResult{Err: frame.Err}
			return
		}

		ref, err := s.client.UploadScreenshot(ctx, frame.Frame.PNG, serverID)
		out <- CaptureResult{Ref: ref, Err: err}
	}()
	return out
}
