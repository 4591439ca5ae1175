package nimbus

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind identifies how a message's content should be interpreted.
type Kind string

const (
	// KindText holds literal text content.
	KindText Kind = "text"

	// KindImage holds an image reference (URL or data URI) as content.
	KindImage Kind = "image"

	// KindPending is a placeholder awaiting exactly one terminal
	// resolution: to text via streaming, or to image or error.
	KindPending Kind = "pending"

	// KindError holds a user-presentable failure message as content.
	KindError Kind = "error"
)

// ImageRef is an opaque reference to an image, either a URL or a data URI.
type ImageRef string

// DataURI encodes raw image bytes as a data URI reference.
func DataURI(data []byte, mimeType string) ImageRef {
	return ImageRef(fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)))
}

// Message is a single entry in a Log.
//
// The ID is the reconciliation key: it is unique within a log and stable for
// the lifetime of the entry. Content is literal text for text, pending and
// error kinds, and an image reference for the image kind.
type Message struct {
	ID      string
	Role    Role
	Kind    Kind
	Content string

	// AttachedImage is an optional input image attached by the user.
	// Only set on user messages.
	AttachedImage ImageRef
}

// NewMessage creates a message with a fresh unique ID.
func NewMessage(role Role, kind Kind, content string) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Kind:    kind,
		Content: content,
	}
}

// terminal reports whether the message kind is a terminal resolution.
// Pending entries are awaiting resolution; text entries may still be
// accumulating streamed fragments.
func (m Message) terminal() bool {
	return m.Kind == KindImage || m.Kind == KindError
}

// InputImage is an image supplied by the user as part of a submission.
type InputImage struct {
	// Data is the raw image bytes.
	Data []byte

	// MIMEType of the image (e.g. "image/jpeg", "image/png").
	MIMEType string
}

// Ref returns the image as a data URI for display alongside the message.
func (i InputImage) Ref() ImageRef {
	return DataURI(i.Data, i.MIMEType)
}

// Image size limits for attached input images.
const (
	// MaxImageSize is the maximum allowed attachment size in bytes (20MB).
	MaxImageSize = 20 * 1024 * 1024
)

// ValidMIMETypes contains the supported attachment MIME types.
var ValidMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Validate checks an input image against size and MIME type constraints.
func (i InputImage) Validate() error {
	if len(i.Data) == 0 {
		return ErrEmptyImageData
	}
	if len(i.Data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(i.Data), MaxImageSize)
	}
	if i.MIMEType == "" {
		return fmt.Errorf("%w: MIME type is required", ErrInvalidMIMEType)
	}
	if !ValidMIMETypes[i.MIMEType] {
		return fmt.Errorf("%w: %s", ErrInvalidMIMEType, i.MIMEType)
	}
	return nil
}
