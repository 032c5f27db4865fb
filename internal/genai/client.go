// Package genai talks to an OpenAI-compatible text generation endpoint
// (Ollama, LM Studio, vLLM, a cloud gateway, etc.).
package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyGeneration is returned when the backend answers successfully but
// with zero-length text. There is nothing to parse, so workflows treat this
// as fatal.
var ErrEmptyGeneration = errors.New("generation backend returned empty text")

// GenerateError is returned when the backend is unreachable or errors, so
// the caller can distinguish "the model wrote garbage" from "the model was
// unreachable."
type GenerateError struct {
	Reason  string
	Wrapped error
}

func (e *GenerateError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerateError) Unwrap() error {
	return e.Wrapped
}

// Generator produces text from a prompt. Implementations may call an LLM
// endpoint or return canned results (for tests).
type Generator interface {
	// Generate returns the full generated text for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream yields generated text fragments until the backend
	// closes the stream. The sequence is finite and not restartable.
	GenerateStream(ctx context.Context, prompt string) iter.Seq2[string, error]

	// Model names the backing model, recorded on generated records.
	Model() string
}

// Client calls a chat-completions endpoint.
type Client struct {
	url    string       // e.g. "http://localhost:1234"
	model  string       // e.g. "qwen3-8b"
	client *http.Client // reused across calls
}

// Compile-time check: *Client satisfies the Generator interface.
var _ Generator = (*Client)(nil)

// NewClient creates a client for the given endpoint and model.
func NewClient(url, model string) *Client {
	return &Client{
		url:   url,
		model: model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Generate sends a single prompt and returns the full response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.post(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", &GenerateError{Reason: "failed to decode response", Wrapped: err}
	}
	if len(chat.Choices) == 0 {
		return "", &GenerateError{Reason: "backend returned no choices"}
	}

	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyGeneration
	}
	return content, nil
}

// GenerateStream sends a prompt and yields text fragments as the backend
// produces them (server-sent "data:" lines). A transport failure is yielded
// once as an error and ends the sequence.
func (c *Client) GenerateStream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := c.post(ctx, prompt, true)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				// Skip keep-alives and partial frames.
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
			yield("", &GenerateError{Reason: "stream read failed", Wrapped: err})
		}
	}
}

func (c *Client) post(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		Stream:      stream,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &GenerateError{Reason: "failed to marshal request", Wrapped: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &GenerateError{Reason: "failed to create request", Wrapped: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &GenerateError{Reason: "backend request failed", Wrapped: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &GenerateError{Reason: fmt.Sprintf("backend returned status %d", resp.StatusCode)}
	}
	return resp, nil
}
