package narrative

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/diginoron/imdb/internal/upstream"
)

type fakeGenerator struct {
	reply string
	err   error
	last  Request
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func TestSummarize_Text(t *testing.T) {
	gen := &fakeGenerator{reply: "  A mild day in New York.  "}
	client := NewClient(gen, Options{Mode: ReplyText})

	text, err := client.Summarize(context.Background(), sampleRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A mild day in New York." {
		t.Errorf("unexpected text %q", text)
	}
	if gen.last.Structured {
		t.Error("text mode should not request structured output")
	}
	if !strings.Contains(gen.last.Prompt, "New York") {
		t.Errorf("prompt should name the location: %s", gen.last.Prompt)
	}
}

func TestSummarize_Structured(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"summary\":\"S\",\"suggestion\":\"T\"}\n```"}
	client := NewClient(gen, Options{Mode: ReplyStructured})

	text, err := client.Summarize(context.Background(), sampleRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "S") || !strings.Contains(text, "T") {
		t.Errorf("expected both fields in %q", text)
	}
	if !gen.last.Structured {
		t.Error("structured mode should request structured output")
	}
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mode    ReplyMode
		gen     *fakeGenerator
		wantErr error
	}{
		{"empty text", ReplyText, &fakeGenerator{reply: "   "}, ErrIncompleteReply},
		{"malformed", ReplyStructured, &fakeGenerator{reply: "Sunny all day"}, ErrMalformedReply},
		{"incomplete", ReplyStructured, &fakeGenerator{reply: `{"summary":"S"}`}, ErrIncompleteReply},
		{"generator error", ReplyText, &fakeGenerator{err: upstream.ErrMissingCredential}, upstream.ErrMissingCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.gen, Options{Mode: tt.mode})
			_, err := client.Summarize(context.Background(), sampleRaw())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSummarize_NoGenerator(t *testing.T) {
	client := NewClient(nil, Options{})
	_, err := client.Summarize(context.Background(), sampleRaw())
	if !errors.Is(err, upstream.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	keyMsg := UserMessage(upstream.ErrMissingCredential)
	if !strings.Contains(keyMsg, "API_KEY") {
		t.Errorf("expected credential hint, got %q", keyMsg)
	}

	invalidKey := &upstream.StatusError{Service: "gemini", Status: 400, Reason: "API key not valid."}
	if UserMessage(invalidKey) != keyMsg {
		t.Errorf("expected invalid key to map to the credential message")
	}

	generic := UserMessage(&upstream.StatusError{Service: "gemini", Status: 500})
	if generic == keyMsg || generic == "" {
		t.Errorf("expected generic message, got %q", generic)
	}

	if UserMessage(nil) != "" {
		t.Error("expected empty message for nil error")
	}
}

func TestUserMessage_DoesNotLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	UserMessage(upstream.ErrMissingCredential)
	UserMessage(ErrMalformedReply)

	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %q", buf.String())
	}
}
