// Package composer implements the image-only generation surface: a prompt
// workbench over a single-shot image backend with a bounded history of
// recent results that supports replay and remix.
package composer

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuslabs/nimbus"
	"github.com/nimbuslabs/nimbus/locale"
)

// HistoryLimit caps the recent-result history. Oldest entries are evicted
// strictly FIFO beyond this; identical prompts are not deduplicated.
const HistoryLimit = 10

// ErrNoResult is returned when saving is requested with no displayed image.
var ErrNoResult = errors.New("no image result to save")

// PromptEnhancers are modifiers appended by the enhance action.
var PromptEnhancers = []string{
	"cinematic lighting",
	"hyper-detailed",
	"dreamlike atmosphere",
	"golden hour glow",
	"volumetric fog",
	"intricate textures",
}

// RemixSuggestions are the built-in remix directions offered after a
// successful generation.
var RemixSuggestions = []string{
	"make it more dramatic",
	"add vibrant colors",
	"set it at night",
	"render it as a watercolor",
	"zoom out to reveal more",
}

// HistoryItem is one recorded generation. Items are immutable; they are
// removed only by eviction.
type HistoryItem struct {
	ID     string
	Prompt string
	Image  nimbus.ImageRef
}

// Result is the currently displayed outcome: an image reference on success
// or a user-presentable error message on failure.
type Result struct {
	Image nimbus.ImageRef
	Err   string
}

// Composer manages the image generation workbench state. Like a chat
// session it processes generations serially behind a cooperative busy gate
// and is otherwise not safe for concurrent use.
type Composer struct {
	backend nimbus.ImageGenerator
	model   nimbus.Model
	strings *locale.Strings
	logger  *slog.Logger
	storage nimbus.Storage

	prompt         string
	aspectRatio    nimbus.AspectRatio
	currentPrompt  string
	result         *Result
	loadingMessage string
	history        []HistoryItem

	busy atomic.Bool
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// WithStrings sets the localized string table for loading messages.
func WithStrings(strings *locale.Strings) Option {
	return func(c *Composer) {
		c.strings = strings
	}
}

// WithModel sets the image model identifier.
func WithModel(m nimbus.Model) Option {
	return func(c *Composer) {
		c.model = m
	}
}

// WithStorage enables SaveCurrent by providing an image storage backend.
func WithStorage(storage nimbus.Storage) Option {
	return func(c *Composer) {
		c.storage = storage
	}
}

// New creates a composer over an image generation backend.
func New(backend nimbus.ImageGenerator, opts ...Option) *Composer {
	c := &Composer{
		backend:     backend,
		model:       nimbus.ModelDefaultImage,
		strings:     locale.Default(),
		logger:      slog.Default(),
		aspectRatio: nimbus.AspectRatioDefault,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prompt returns the editable prompt text.
func (c *Composer) Prompt() string {
	return c.prompt
}

// SetPrompt replaces the editable prompt text.
func (c *Composer) SetPrompt(prompt string) {
	c.prompt = prompt
}

// AspectRatio returns the selected aspect ratio.
func (c *Composer) AspectRatio() nimbus.AspectRatio {
	return c.aspectRatio
}

// SetAspectRatio selects the aspect ratio for subsequent generations.
func (c *Composer) SetAspectRatio(a nimbus.AspectRatio) {
	c.aspectRatio = a
}

// AppendModifier appends a style modifier to the prompt with a comma
// separator, or makes it the whole prompt when the prompt is empty.
func (c *Composer) AppendModifier(modifier string) {
	trimmed := strings.TrimSpace(c.prompt)
	if trimmed == "" {
		c.prompt = modifier
		return
	}
	c.prompt = trimmed + ", " + modifier
}

// Enhance appends a randomly chosen prompt enhancer.
func (c *Composer) Enhance() {
	c.AppendModifier(PromptEnhancers[rand.IntN(len(PromptEnhancers))])
}

// Busy reports whether a generation is in flight.
func (c *Composer) Busy() bool {
	return c.busy.Load()
}

// Result returns the currently displayed result, or nil when none.
func (c *Composer) Result() *Result {
	return c.result
}

// CurrentPrompt returns the prompt of the displayed result.
func (c *Composer) CurrentPrompt() string {
	return c.currentPrompt
}

// LoadingMessage returns the loading line chosen for the last generation.
func (c *Composer) LoadingMessage() string {
	return c.loadingMessage
}

// History returns a copy of the recent results, most recent first.
func (c *Composer) History() []HistoryItem {
	out := make([]HistoryItem, len(c.history))
	copy(out, c.history)
	return out
}

// Generate runs a generation with the current prompt and reports whether it
// was accepted. Empty prompts and submissions while busy are no-ops.
func (c *Composer) Generate(ctx context.Context) bool {
	return c.generate(ctx, c.prompt)
}

// Remix derives a new prompt by appending the suggestion to the displayed
// result's prompt with a comma separator, then generates with it. Remix is
// only meaningful after a generation; with no current prompt it is a no-op.
func (c *Composer) Remix(ctx context.Context, suggestion string) bool {
	if c.currentPrompt == "" {
		return false
	}
	derived := c.currentPrompt + ", " + suggestion
	c.prompt = derived
	return c.generate(ctx, derived)
}

// Select restores a history item as the current prompt and displayed result
// without re-invoking the backend.
func (c *Composer) Select(item HistoryItem) {
	c.prompt = item.Prompt
	c.currentPrompt = item.Prompt
	c.result = &Result{Image: item.Image}
}

// SaveCurrent saves the displayed image to the configured storage under
// basePath. Requires WithStorage and a successful result.
func (c *Composer) SaveCurrent(ctx context.Context, basePath string) (nimbus.StorageResult, error) {
	if c.storage == nil {
		return nimbus.StorageResult{}, nimbus.ErrStorageNotConfigured
	}
	if c.result == nil || c.result.Image == "" {
		return nimbus.StorageResult{}, ErrNoResult
	}
	return nimbus.SaveImage(ctx, c.storage, c.result.Image, basePath)
}

func (c *Composer) generate(ctx context.Context, prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		return false
	}
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	defer c.busy.Store(false)

	c.currentPrompt = prompt
	c.result = nil
	loading := c.strings.LoadingMessages()
	c.loadingMessage = loading[rand.IntN(len(loading))]

	start := time.Now()
	c.logger.Debug("starting composer generation",
		"model", c.model.String(),
		"prompt_length", len(prompt),
		"aspect_ratio", c.aspectRatio.String(),
	)

	ref, err := c.backend.GenerateImage(ctx, nimbus.ImageRequest{
		Prompt:      prompt,
		Model:       c.model,
		AspectRatio: c.aspectRatio,
	})
	if err != nil {
		c.logger.Error("composer generation failed",
			"model", c.model.String(),
			"error", err.Error(),
		)
		c.result = &Result{Err: err.Error()}
		return true
	}

	c.result = &Result{Image: ref}
	c.record(prompt, ref)

	c.logger.Info("composer generation completed",
		"model", c.model.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return true
}

// record prepends a history item and truncates to the most recent
// HistoryLimit entries.
func (c *Composer) record(prompt string, ref nimbus.ImageRef) {
	item := HistoryItem{
		ID:     uuid.NewString(),
		Prompt: prompt,
		Image:  ref,
	}
	c.history = append([]HistoryItem{item}, c.history...)
	if len(c.history) > HistoryLimit {
		c.history = c.history[:HistoryLimit]
	}
}
