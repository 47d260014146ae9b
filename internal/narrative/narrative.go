package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diginoron/imdb/internal/common"
	"github.com/diginoron/imdb/internal/upstream"
	"github.com/diginoron/imdb/internal/weather"
)

// Options configures a Client.
type Options struct {
	Mode     ReplyMode
	Language string
	Policy   weather.HourPolicy
}

// Client turns a raw forecast into narrative text.
type Client struct {
	gen  Generator
	opts Options
	now  func() time.Time
}

// NewClient creates a Client backed by gen.
func NewClient(gen Generator, opts Options) *Client {
	return &Client{gen: gen, opts: opts, now: time.Now}
}

// Summarize builds the prompt, calls the generator and parses the reply
// according to the configured mode.
func (c *Client) Summarize(ctx context.Context, raw *weather.RawForecast) (string, error) {
	if c.gen == nil {
		return "", upstream.ErrMissingCredential
	}
	if raw == nil {
		return "", fmt.Errorf("narrative: no forecast to summarize")
	}

	data := NewPromptData(raw, c.now(), c.opts.Policy)
	data.Language = c.opts.Language
	data.Structured = c.opts.Mode == ReplyStructured

	prompt, err := BuildPrompt(data)
	if err != nil {
		return "", fmt.Errorf("narrative: build prompt: %w", err)
	}

	text, err := c.gen.Generate(ctx, Request{Prompt: prompt, Structured: data.Structured})
	if err != nil {
		return "", err
	}

	if c.opts.Mode != ReplyStructured {
		text = strings.TrimSpace(text)
		if text == "" {
			return "", ErrIncompleteReply
		}
		return text, nil
	}

	reply, err := ParseStructured(text)
	if err != nil {
		return "", err
	}
	return reply.String(), nil
}

// UserMessage converts a narrative failure into text shown in place of the narrative.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, upstream.ErrMissingCredential) || mentionsAPIKey(err) {
		return "The Gemini API key is not set or is invalid. Check the API_KEY environment variable."
	}
	if errors.Is(err, ErrMalformedReply) || errors.Is(err, ErrIncompleteReply) {
		return "The AI interpretation came back in an unexpected format."
	}
	return "Sorry, an error occurred while getting the AI interpretation."
}

func mentionsAPIKey(err error) bool {
	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return common.HasAnyFold(statusErr.Reason, "api key", "api_key")
}
