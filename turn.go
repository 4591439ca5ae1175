package nimbus

import "strings"

// ImageMarker is the lexical prefix that routes a submission to the image
// generation path. It is matched case-insensitively and must be followed by
// a space or end the prompt; the marker is stripped before forming the
// effective prompt.
const ImageMarker = "/imagine"

// GenerationTurn is the ephemeral unit of work for one user submission.
// It is created on submit, consumed by the session, and discarded after the
// placeholder entry resolves.
type GenerationTurn struct {
	// Prompt is the prompt as typed, trimmed.
	Prompt string

	// EffectivePrompt is the prompt after any routing marker has been
	// stripped and trimmed. Equal to Prompt for text turns.
	EffectivePrompt string

	// AttachedImage is the optional user-attached input image.
	AttachedImage *InputImage

	IsImageRequest bool

	// PendingMessageID is the ID of the placeholder assistant entry.
	PendingMessageID string
}

// parseSubmission validates and routes a submission. It returns false when
// the submission must be rejected: an empty trimmed prompt with no
// attachment, or an image-mode prompt that is empty after marker stripping.
func parseSubmission(prompt string, attachment *InputImage) (GenerationTurn, bool) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" && attachment == nil {
		return GenerationTurn{}, false
	}

	turn := GenerationTurn{
		Prompt:          trimmed,
		EffectivePrompt: trimmed,
		AttachedImage:   attachment,
	}

	lower := strings.ToLower(trimmed)
	if lower == ImageMarker || strings.HasPrefix(lower, ImageMarker+" ") {
		turn.IsImageRequest = true
		turn.EffectivePrompt = strings.TrimSpace(trimmed[len(ImageMarker):])
		if turn.EffectivePrompt == "" {
			return GenerationTurn{}, false
		}
	}

	return turn, true
}

// TurnPhase is the observable state of the session's turn state machine.
// A session is idle between turns; Resolved collapses back to Idle when the
// busy gate clears.
type TurnPhase int32

const (
	PhaseIdle TurnPhase = iota
	PhaseSubmitted
	PhaseStreaming
	PhaseAwaitingImage
)

func (p TurnPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitted:
		return "submitted"
	case PhaseStreaming:
		return "streaming"
	case PhaseAwaitingImage:
		return "awaiting_image"
	default:
		return "unknown"
	}
}
