package nimbus

import (
	"context"
	"iter"
)

// TextStream is a lazy, finite, non-restartable sequence of text fragments.
// A fragment paired with a non-nil error terminates the stream; no further
// fragments follow it.
type TextStream = iter.Seq2[string, error]

// TextRequest describes one streaming text generation call.
type TextRequest struct {
	// Prompt is the user's effective prompt text.
	Prompt string

	// Model is the backend model identifier.
	Model Model

	// SystemInstruction is an optional system-level instruction composed
	// from the active persona and user display name.
	SystemInstruction string

	// Attachment is an optional input image sent alongside the prompt.
	Attachment *InputImage
}

// ImageRequest describes one single-shot image generation call.
type ImageRequest struct {
	Prompt      string
	Model       Model
	AspectRatio AspectRatio
}

// TextStreamer produces streamed text responses.
// The returned stream may yield an error at any point before or during
// iteration; errors are not user-presentable and are logged, not shown.
type TextStreamer interface {
	StreamText(ctx context.Context, req TextRequest) TextStream
}

// ImageGenerator produces a single image from a prompt.
// Failure messages from this call are considered user-presentable.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageRef, error)
}

// Backend is the full generation capability consumed by a Session.
type Backend interface {
	TextStreamer
	ImageGenerator

	// Close releases any resources held by the backend.
	Close() error
}
