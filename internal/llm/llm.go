package llm

import (
	"context"
	"fmt"
)

// Part is one piece of a prompt or a model reply: either text or an inline
// base64 image.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64 image bytes alongside a prompt.
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Content groups parts under an optional conversational role ("user"/"model").
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig tunes sampling on the remote model.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GenerateRequest is a single call to the generative model.
type GenerateRequest struct {
	Contents []Content        `json:"contents"`
	Config   GenerationConfig `json:"generationConfig"`
}

// TokenUsage contains token accounting reported by the model.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req GenerateRequest) (ContentResponse, error)
}

// StatusError reports a non-2xx reply from the upstream model API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini api error: status=%d message=%s", e.StatusCode, e.Message)
}

// TextRequest wraps a single text prompt.
func TextRequest(prompt string, cfg GenerationConfig) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
		Config:   cfg,
	}
}

// ImageRequest wraps a text prompt plus an inline JPEG.
func ImageRequest(prompt, base64JPEG string, cfg GenerationConfig) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{{Parts: []Part{
			{Text: prompt},
			{InlineData: &InlineData{MIMEType: "image/jpeg", Data: base64JPEG}},
		}}},
		Config: cfg,
	}
}
