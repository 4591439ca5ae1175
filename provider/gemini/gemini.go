// Package gemini provides a Backend implementation using Google's Gemini
// API via the official Go SDK: https://github.com/googleapis/go-genai
//
// Streaming text turns use Models.GenerateContentStream; single-shot image
// turns use Models.GenerateImages (Imagen). Generated images are returned as
// JPEG data URIs, matching what the presentation layer renders directly.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/nimbuslabs/nimbus"
)

// Config configures the Gemini backend.
type Config struct {
	// APIKey for authentication. If empty, the SDK falls back to the
	// GOOGLE_API_KEY or GEMINI_API_KEY environment variables.
	APIKey string
}

// Client implements nimbus.Backend against the Gemini API.
type Client struct {
	client *genai.Client
}

var _ nimbus.Backend = (*Client)(nil)

// New creates a Gemini backend.
func New(ctx context.Context, config Config) (*Client, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}
	if config.APIKey != "" {
		clientCfg.APIKey = config.APIKey
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client}, nil
}

// StreamText issues a streaming text generation call. The returned stream
// yields text fragments in emission order; a backend failure before or
// during iteration terminates the stream with an error.
func (c *Client) StreamText(ctx context.Context, req nimbus.TextRequest) nimbus.TextStream {
	parts := make([]*genai.Part, 0, 2)
	if req.Attachment != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     req.Attachment.Data,
				MIMEType: req.Attachment.MIMEType,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: parts},
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	model := req.Model.String()
	if model == "" {
		model = nimbus.ModelDefault.String()
	}

	return func(yield func(string, error) bool) {
		for resp, err := range c.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				yield("", fmt.Errorf("text generation failed: %w", err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// GenerateImage issues a single-shot Imagen call and returns the first
// generated image as a JPEG data URI. Errors from this call are considered
// user-presentable.
func (c *Client) GenerateImage(ctx context.Context, req nimbus.ImageRequest) (nimbus.ImageRef, error) {
	model := req.Model.String()
	if model == "" {
		model = nimbus.ModelDefaultImage.String()
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
	}
	if req.AspectRatio != "" {
		config.AspectRatio = req.AspectRatio.String()
	}

	resp, err := c.client.Models.GenerateImages(ctx, model, req.Prompt, config)
	if err != nil {
		return "", fmt.Errorf("image generation failed, the model may have safety restrictions: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", nimbus.ErrNoImage
	}

	img := resp.GeneratedImages[0].Image
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return nimbus.DataURI(img.ImageBytes, mimeType), nil
}

// Close releases resources held by the backend.
// The genai client does not require explicit closing in the current SDK.
func (c *Client) Close() error {
	return nil
}
