package nimbus

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nimbuslabs/nimbus/locale"
	"github.com/nimbuslabs/nimbus/ratelimiter"
)

// tokenBuffer pads token estimates to cover instruction overhead.
const tokenBuffer = 100

// Session orchestrates generation turns against a single message log.
//
// One session processes turns serially. The busy flag is a cooperative gate,
// not a lock: Submit while a prior turn is unresolved is a silent no-op, and
// callers are expected to throttle submission on Busy. The gate is an atomic
// compare-and-swap so a caller that ignores the contract cannot corrupt the
// log, but concurrent turns remain disallowed by contract.
//
// Within one turn the user message always precedes the assistant placeholder
// in the log, and streamed fragments are applied in arrival order. There is
// no cancellation: a submitted turn runs to completion or failure.
type Session struct {
	log     *Log
	backend Backend
	strings *locale.Strings
	logger  *slog.Logger

	persona     Persona
	model       Model
	imageModel  Model
	aspectRatio AspectRatio
	userName    string

	limiters  *ratelimiter.Registry
	estimator TokenEstimator

	busy  atomic.Bool
	phase atomic.Int32
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets a structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStrings sets the localized string table used for placeholder and
// failure text.
func WithStrings(strings *locale.Strings) Option {
	return func(s *Session) {
		s.strings = strings
	}
}

// WithPersona sets the active persona.
func WithPersona(p Persona) Option {
	return func(s *Session) {
		s.persona = p
	}
}

// WithModel sets the text model identifier.
func WithModel(m Model) Option {
	return func(s *Session) {
		s.model = m
	}
}

// WithImageModel sets the image model identifier.
func WithImageModel(m Model) Option {
	return func(s *Session) {
		s.imageModel = m
	}
}

// WithAspectRatio sets the aspect ratio for image turns.
func WithAspectRatio(a AspectRatio) Option {
	return func(s *Session) {
		s.aspectRatio = a
	}
}

// WithUserName sets the user display name interpolated into persona
// instructions.
func WithUserName(name string) Option {
	return func(s *Session) {
		s.userName = name
	}
}

// WithLimiters sets a per-model rate limiter registry. Turns against a model
// with a registered limiter consume estimated tokens before the backend call
// and fail through the normal error path when the limit is hit.
func WithLimiters(reg *ratelimiter.Registry) Option {
	return func(s *Session) {
		s.limiters = reg
	}
}

// WithTokenEstimator overrides the estimator used for rate limiting.
func WithTokenEstimator(e TokenEstimator) Option {
	return func(s *Session) {
		s.estimator = e
	}
}

// NewSession creates a session over the given backend.
//
// Example:
//
//	backend, err := gemini.New(ctx, gemini.Config{APIKey: apiKey})
//	if err != nil {
//	    return err
//	}
//	session := nimbus.NewSession(backend,
//	    nimbus.WithStrings(locale.Match("es")),
//	    nimbus.WithUserName("Ada"),
//	)
func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		log:         NewLog(),
		backend:     backend,
		strings:     locale.Default(),
		logger:      slog.Default(),
		persona:     DefaultPersonas()[0],
		model:       ModelDefault,
		imageModel:  ModelDefaultImage,
		aspectRatio: AspectRatioDefault,
		estimator:   NewSimpleTokenEstimator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log returns the session's message log.
func (s *Session) Log() *Log {
	return s.log
}

// Busy reports whether a turn is currently in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Phase returns the observable turn phase.
func (s *Session) Phase() TurnPhase {
	return TurnPhase(s.phase.Load())
}

// Persona returns the active persona.
func (s *Session) Persona() Persona {
	return s.persona
}

// Model returns the active text model.
func (s *Session) Model() Model {
	return s.model
}

// Greet seeds the log with the localized greeting message.
func (s *Session) Greet() {
	s.log.Append(NewMessage(RoleAssistant, KindText, s.strings.T(locale.KeyGreeting)))
}

// SetModel switches the active text model.
func (s *Session) SetModel(m Model) {
	s.model = m
}

// SetUserName updates the display name used for instruction interpolation.
func (s *Session) SetUserName(name string) {
	s.userName = name
}

// SetAspectRatio updates the aspect ratio used for image turns.
func (s *Session) SetAspectRatio(a AspectRatio) {
	s.aspectRatio = a
}

// SetPersona switches the active persona and announces the change in the
// log. Switching to the already-active persona is a no-op.
func (s *Session) SetPersona(p Persona) {
	if p.ID == s.persona.ID {
		return
	}
	s.persona = p
	notice := s.strings.Tr(locale.KeyPersonaNotice, map[string]string{
		"name": s.strings.T(p.NameKey),
		"icon": p.Icon,
	})
	s.log.Append(NewMessage(RoleAssistant, KindText, notice))
}

// Submit processes one user turn and reports whether it was accepted.
//
// A submission is rejected without side effects when the trimmed prompt is
// empty and no image is attached, when an image-mode prompt is empty after
// marker stripping, when the attachment fails validation, or when a prior
// turn has not yet resolved.
//
// An accepted submission appends the user message and a pending assistant
// placeholder, then runs the turn to its single terminal resolution. Backend
// failures never propagate to the caller; they resolve the placeholder to an
// error entry. The busy flag is cleared on every path.
func (s *Session) Submit(ctx context.Context, prompt string, attachment *InputImage) bool {
	turn, ok := parseSubmission(prompt, attachment)
	if !ok {
		return false
	}
	if attachment != nil {
		if err := attachment.Validate(); err != nil {
			s.logger.Warn("rejecting submission with invalid attachment",
				"error", err.Error(),
			)
			return false
		}
	}

	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	defer func() {
		s.phase.Store(int32(PhaseIdle))
		s.busy.Store(false)
	}()
	s.phase.Store(int32(PhaseSubmitted))

	user := NewMessage(RoleUser, KindText, turn.Prompt)
	if attachment != nil {
		user.AttachedImage = attachment.Ref()
	}

	placeholderText := s.strings.T(locale.KeyThinking)
	if turn.IsImageRequest {
		placeholderText = s.strings.T(locale.KeyGeneratingImage)
	}
	placeholder := NewMessage(RoleAssistant, KindPending, placeholderText)
	turn.PendingMessageID = placeholder.ID

	s.log.Append(user, placeholder)

	if turn.IsImageRequest {
		s.phase.Store(int32(PhaseAwaitingImage))
		s.runImageTurn(ctx, turn)
	} else {
		s.phase.Store(int32(PhaseStreaming))
		s.runTextTurn(ctx, turn)
	}
	return true
}

// runTextTurn drives a streaming text generation into the placeholder entry.
// Failures resolve the placeholder with the generic localized message; the
// underlying cause is logged, not shown.
func (s *Session) runTextTurn(ctx context.Context, turn GenerationTurn) {
	fail := func(cause error) {
		s.logger.Error("text generation failed",
			"model", s.model.String(),
			"error", cause.Error(),
		)
		s.resolveError(turn.PendingMessageID, s.strings.T(locale.KeyTextFailure))
	}

	if err := s.consumeLimit(s.model, turn.EffectivePrompt); err != nil {
		fail(err)
		return
	}

	req := TextRequest{
		Prompt:            turn.EffectivePrompt,
		Model:             s.model,
		SystemInstruction: s.persona.Instruction(s.userName),
		Attachment:        turn.AttachedImage,
	}

	start := time.Now()
	s.logger.Debug("starting text turn",
		"model", s.model.String(),
		"prompt_length", len(turn.EffectivePrompt),
		"has_attachment", turn.AttachedImage != nil,
	)

	if err := StreamInto(s.log, turn.PendingMessageID, s.backend.StreamText(ctx, req)); err != nil {
		fail(err)
		return
	}

	s.logger.Info("text turn completed",
		"model", s.model.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// runImageTurn performs a one-shot image generation into the placeholder
// entry. Unlike text turns, image failure messages surface backend detail:
// they are often policy-related and actionable for the user.
func (s *Session) runImageTurn(ctx context.Context, turn GenerationTurn) {
	fail := func(cause error) {
		s.logger.Error("image generation failed",
			"model", s.imageModel.String(),
			"error", cause.Error(),
		)
		msg := cause.Error()
		if msg == "" {
			msg = s.strings.T(locale.KeyImageFailure)
		}
		s.resolveError(turn.PendingMessageID, msg)
	}

	if err := s.consumeLimit(s.imageModel, turn.EffectivePrompt); err != nil {
		fail(err)
		return
	}

	start := time.Now()
	s.logger.Debug("starting image turn",
		"model", s.imageModel.String(),
		"prompt_length", len(turn.EffectivePrompt),
		"aspect_ratio", s.aspectRatio.String(),
	)

	ref, err := s.backend.GenerateImage(ctx, ImageRequest{
		Prompt:      turn.EffectivePrompt,
		Model:       s.imageModel,
		AspectRatio: s.aspectRatio,
	})
	if err != nil {
		fail(err)
		return
	}

	if err := s.log.Resolve(turn.PendingMessageID, func(m Message) Message {
		m.Kind = KindImage
		m.Content = string(ref)
		return m
	}); err != nil {
		s.logger.Error("failed to resolve image placeholder", "error", err.Error())
		return
	}

	s.logger.Info("image turn completed",
		"model", s.imageModel.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// resolveError applies the terminal error transition to a placeholder.
func (s *Session) resolveError(id, message string) {
	if err := s.log.Resolve(id, func(m Message) Message {
		m.Kind = KindError
		m.Content = message
		return m
	}); err != nil {
		s.logger.Error("failed to resolve placeholder to error", "error", err.Error())
	}
}

// consumeLimit charges the model's rate limiter for the turn, if one is
// registered.
func (s *Session) consumeLimit(model Model, prompt string) error {
	if s.limiters == nil {
		return nil
	}
	limiter, ok := s.limiters.Get(model.String())
	if !ok {
		return nil
	}
	tokens := s.estimator.EstimateTokens(prompt) + tokenBuffer
	if !limiter.TryConsume(tokens) {
		wait := limiter.TimeUntilAvailable(tokens).Round(time.Second)
		s.logger.Warn("rate limit hit",
			"model", model.String(),
			"retry_after", wait.String(),
		)
		return &RateLimitError{Model: model.String(), RetryAfter: wait}
	}
	return nil
}
