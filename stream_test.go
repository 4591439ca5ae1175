package nimbus

import (
	"errors"
	"testing"
)

func TestStreamInto_AppliesFragmentsInOrder(t *testing.T) {
	log := NewLog()
	pending := NewMessage(RoleAssistant, KindPending, "Thinking...")
	log.Append(pending)

	err := StreamInto(log, pending.ID, fragments("Hel", "lo, ", "world"))
	if err != nil {
		t.Fatalf("StreamInto: %v", err)
	}

	got, _ := log.Get(pending.ID)
	if got.Content != "Hello, world" {
		t.Errorf("expected %q, got %q", "Hello, world", got.Content)
	}
	if got.Kind != KindText {
		t.Errorf("expected text kind, got %q", got.Kind)
	}
}

func TestStreamInto_SkipsEmptyFragments(t *testing.T) {
	log := NewLog()
	pending := NewMessage(RoleAssistant, KindPending, "Thinking...")
	log.Append(pending)

	if err := StreamInto(log, pending.ID, fragments("", "a", "", "b")); err != nil {
		t.Fatalf("StreamInto: %v", err)
	}

	got, _ := log.Get(pending.ID)
	if got.Content != "ab" {
		t.Errorf("expected %q, got %q", "ab", got.Content)
	}
}

func TestStreamInto_ReturnsStreamError(t *testing.T) {
	log := NewLog()
	pending := NewMessage(RoleAssistant, KindPending, "Thinking...")
	log.Append(pending)

	cause := errors.New("backend exploded")
	err := StreamInto(log, pending.ID, failingStream(cause, "partial "))
	if !errors.Is(err, cause) {
		t.Fatalf("expected stream error, got %v", err)
	}

	// Fragments delivered before the failure stay applied; the caller
	// decides the terminal transition.
	got, _ := log.Get(pending.ID)
	if got.Content != "partial " {
		t.Errorf("expected partial content preserved, got %q", got.Content)
	}
	if got.Kind != KindText {
		t.Errorf("expected non-terminal text kind, got %q", got.Kind)
	}
}
