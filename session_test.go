package nimbus

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nimbuslabs/nimbus/locale"
	"github.com/nimbuslabs/nimbus/ratelimiter"
)

func TestSession_RejectsEmptySubmission(t *testing.T) {
	s := NewSession(&MockBackend{})
	ctx := context.Background()

	if s.Submit(ctx, "   ", nil) {
		t.Error("whitespace-only prompt should be rejected")
	}
	if s.Submit(ctx, "/imagine    ", nil) {
		t.Error("whitespace-only image prompt should be rejected")
	}
	if s.Log().Len() != 0 {
		t.Errorf("rejected submissions must not create messages, log has %d", s.Log().Len())
	}
	if s.Busy() {
		t.Error("busy flag set after rejected submission")
	}
}

func TestSession_StreamingTurnAccumulatesContent(t *testing.T) {
	var captured TextRequest
	backend := &MockBackend{
		StreamTextFunc: func(_ context.Context, req TextRequest) TextStream {
			captured = req
			return fragments("Hel", "lo, ", "world")
		},
	}
	s := NewSession(backend)

	if !s.Submit(context.Background(), "sunset over mountains", nil) {
		t.Fatal("submission rejected")
	}

	msgs := s.Log().Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "sunset over mountains" {
		t.Errorf("user message wrong: %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Kind != KindText {
		t.Errorf("assistant message wrong: %+v", msgs[1])
	}
	if msgs[1].Content != "Hello, world" {
		t.Errorf("expected concatenated fragments, got %q", msgs[1].Content)
	}
	if captured.Prompt != "sunset over mountains" {
		t.Errorf("text path got effective prompt %q", captured.Prompt)
	}
	if s.Busy() {
		t.Error("busy flag not cleared after turn")
	}
}

func TestSession_ImageMarkerRoutesToImagePath(t *testing.T) {
	var captured ImageRequest
	var textCalled bool
	backend := &MockBackend{
		StreamTextFunc: func(_ context.Context, _ TextRequest) TextStream {
			textCalled = true
			return fragments()
		},
		GenerateImageFunc: func(_ context.Context, req ImageRequest) (ImageRef, error) {
			captured = req
			return "data:image/jpeg;base64,abc", nil
		},
	}
	s := NewSession(backend, WithAspectRatio(AspectRatio16x9))

	if !s.Submit(context.Background(), "/imagine sunset over mountains", nil) {
		t.Fatal("submission rejected")
	}

	if textCalled {
		t.Error("image turn invoked the text backend")
	}
	if captured.Prompt != "sunset over mountains" {
		t.Errorf("marker not stripped, effective prompt %q", captured.Prompt)
	}
	if captured.AspectRatio != AspectRatio16x9 {
		t.Errorf("aspect ratio not forwarded, got %q", captured.AspectRatio)
	}

	msgs := s.Log().Messages()
	last := msgs[len(msgs)-1]
	if last.Kind != KindImage || last.Content != "data:image/jpeg;base64,abc" {
		t.Errorf("placeholder not resolved to image: %+v", last)
	}
}

func TestSession_StreamFailureUsesGenericMessage(t *testing.T) {
	cause := errors.New("quota exceeded: project 1234")
	backend := &MockBackend{
		StreamTextFunc: func(_ context.Context, _ TextRequest) TextStream {
			return failingStream(cause, "partial")
		},
	}
	s := NewSession(backend)

	if !s.Submit(context.Background(), "hello", nil) {
		t.Fatal("submission rejected")
	}

	msgs := s.Log().Messages()
	last := msgs[len(msgs)-1]
	if last.Kind != KindError {
		t.Fatalf("expected error kind, got %q", last.Kind)
	}
	if last.Content != locale.Default().T(locale.KeyTextFailure) {
		t.Errorf("expected generic localized message, got %q", last.Content)
	}
	if strings.Contains(last.Content, "quota") {
		t.Error("backend detail leaked into a text failure message")
	}
	if s.Busy() {
		t.Error("busy flag not cleared after failure")
	}
}

func TestSession_ImageFailureSurfacesBackendDetail(t *testing.T) {
	backend := &MockBackend{
		GenerateImageFunc: func(_ context.Context, _ ImageRequest) (ImageRef, error) {
			return "", errors.New("blocked by safety policy")
		},
	}
	s := NewSession(backend)

	if !s.Submit(context.Background(), "/imagine something forbidden", nil) {
		t.Fatal("submission rejected")
	}

	msgs := s.Log().Messages()
	last := msgs[len(msgs)-1]
	if last.Kind != KindError {
		t.Fatalf("expected error kind, got %q", last.Kind)
	}
	if !strings.Contains(last.Content, "blocked by safety policy") {
		t.Errorf("image failure should surface backend detail, got %q", last.Content)
	}
}

func TestSession_BusyGateRejectsReentrantSubmit(t *testing.T) {
	var s *Session
	var rejected bool
	backend := &MockBackend{
		StreamTextFunc: func(ctx context.Context, _ TextRequest) TextStream {
			return func(yield func(string, error) bool) {
				// A submit while this turn is unresolved must be a
				// no-op.
				rejected = !s.Submit(ctx, "second", nil)
				yield("ok", nil)
			}
		},
	}
	s = NewSession(backend)

	if !s.Submit(context.Background(), "first", nil) {
		t.Fatal("first submission rejected")
	}
	if !rejected {
		t.Error("re-entrant submission was accepted while busy")
	}
	if s.Log().Len() != 2 {
		t.Errorf("re-entrant submission created messages, log has %d", s.Log().Len())
	}
	if s.Busy() {
		t.Error("busy flag not cleared")
	}
}

func TestSession_PersonaInstructionInterpolatesUserName(t *testing.T) {
	var captured TextRequest
	backend := &MockBackend{
		StreamTextFunc: func(_ context.Context, req TextRequest) TextStream {
			captured = req
			return fragments("hi")
		},
	}
	s := NewSession(backend, WithUserName("Ada"))

	s.Submit(context.Background(), "hello", nil)

	if !strings.Contains(captured.SystemInstruction, "Ada") {
		t.Errorf("system instruction missing user name: %q", captured.SystemInstruction)
	}
}

func TestSession_AttachmentForwardedAndDisplayed(t *testing.T) {
	var captured TextRequest
	backend := &MockBackend{
		StreamTextFunc: func(_ context.Context, req TextRequest) TextStream {
			captured = req
			return fragments("nice photo")
		},
	}
	s := NewSession(backend)
	attachment := &InputImage{Data: []byte("fake-bytes"), MIMEType: "image/png"}

	if !s.Submit(context.Background(), "what is this?", attachment) {
		t.Fatal("submission rejected")
	}

	if captured.Attachment == nil || captured.Attachment.MIMEType != "image/png" {
		t.Error("attachment not forwarded to the backend")
	}
	user := s.Log().Messages()[0]
	if user.AttachedImage == "" || !strings.HasPrefix(string(user.AttachedImage), "data:image/png;base64,") {
		t.Errorf("user message missing attachment data URI: %q", user.AttachedImage)
	}
}

func TestSession_InvalidAttachmentRejected(t *testing.T) {
	s := NewSession(&MockBackend{})
	bad := &InputImage{Data: []byte("x"), MIMEType: "application/pdf"}

	if s.Submit(context.Background(), "look", bad) {
		t.Error("invalid attachment should reject the submission")
	}
	if s.Log().Len() != 0 {
		t.Error("rejected submission created messages")
	}
}

func TestSession_RateLimitedTurnResolvesToError(t *testing.T) {
	backend := &MockBackend{
		StreamTextFunc: func(_ context.Context, _ TextRequest) TextStream {
			t.Fatal("backend called despite rate limit")
			return nil
		},
	}

	reg := ratelimiter.NewRegistry()
	// Prompt estimate plus the 100 token buffer always exceeds 1.
	reg.Set(ModelDefault.String(), ratelimiter.New(1, 1))

	s := NewSession(backend, WithLimiters(reg))

	if !s.Submit(context.Background(), "hello", nil) {
		t.Fatal("submission rejected")
	}

	msgs := s.Log().Messages()
	last := msgs[len(msgs)-1]
	if last.Kind != KindError {
		t.Fatalf("expected error resolution, got %q", last.Kind)
	}
	if last.Content != locale.Default().T(locale.KeyTextFailure) {
		t.Errorf("rate limit detail leaked: %q", last.Content)
	}
	if s.Busy() {
		t.Error("busy flag not cleared")
	}
}

func TestSession_ConsumeLimitReturnsRateLimitError(t *testing.T) {
	reg := ratelimiter.NewRegistry()
	reg.Set(ModelDefault.String(), ratelimiter.New(1, 1))
	s := NewSession(&MockBackend{}, WithLimiters(reg))

	err := s.consumeLimit(ModelDefault, "hello")
	if !IsRateLimitError(err) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatal("errors.As failed on RateLimitError")
	}
	if rlErr.Model != ModelDefault.String() {
		t.Errorf("model = %q", rlErr.Model)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestSession_SetPersonaAnnouncesChange(t *testing.T) {
	s := NewSession(&MockBackend{})
	personas := DefaultPersonas()

	s.SetPersona(personas[1])
	if s.Log().Len() != 1 {
		t.Fatalf("expected persona notice, log has %d entries", s.Log().Len())
	}
	notice := s.Log().Messages()[0]
	if notice.Role != RoleAssistant || !strings.Contains(notice.Content, "Code Helper") {
		t.Errorf("unexpected notice: %+v", notice)
	}

	// Switching to the active persona is a no-op.
	s.SetPersona(personas[1])
	if s.Log().Len() != 1 {
		t.Error("re-selecting the active persona appended a notice")
	}
}

func TestSession_GreetSeedsLog(t *testing.T) {
	s := NewSession(&MockBackend{}, WithStrings(locale.Match("de")))
	s.Greet()

	if s.Log().Len() != 1 {
		t.Fatalf("expected greeting entry, log has %d", s.Log().Len())
	}
	greeting := s.Log().Messages()[0]
	if !strings.Contains(greeting.Content, "Nimbus") {
		t.Errorf("unexpected greeting: %q", greeting.Content)
	}
}
