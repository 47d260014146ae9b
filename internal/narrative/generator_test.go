package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diginoron/imdb/internal/upstream"
)

func TestGeminiGenerator_MissingKeySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(srv.Client(), srv.URL, "", "")
	_, err := gen.Generate(context.Background(), Request{Prompt: "hi"})

	if !errors.Is(err, upstream.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if called {
		t.Error("expected no request without a credential")
	}
}

func TestGeminiGenerator_Structured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Errorf("expected api key header")
		}

		var body geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(body.Contents) != 1 || body.Contents[0].Parts[0].Text != "prompt text" {
			t.Errorf("unexpected contents: %+v", body.Contents)
		}
		if body.GenerationConfig == nil || body.GenerationConfig.ResponseSchema == nil {
			t.Errorf("expected a response schema for structured requests")
		} else if len(body.GenerationConfig.ResponseSchema.Required) != 2 {
			t.Errorf("expected summary and suggestion to be required")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"summary\":"},{"text":"\"S\",\"suggestion\":\"T\"}"}]}}]}`))
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(srv.Client(), srv.URL, "secret", "")
	text, err := gen.Generate(context.Background(), Request{Prompt: "prompt text", Structured: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"summary":"S","suggestion":"T"}` {
		t.Errorf("expected joined parts, got %q", text)
	}
}

func TestGeminiGenerator_TextHasNoSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.GenerationConfig != nil {
			t.Errorf("expected no generation config for text requests")
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Sunny."}]}}]}`))
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(srv.Client(), srv.URL, "secret", "")
	text, err := gen.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil || text != "Sunny." {
		t.Fatalf("got %q, %v", text, err)
	}
}

func TestGeminiGenerator_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(srv.Client(), srv.URL, "bad", "")
	_, err := gen.Generate(context.Background(), Request{Prompt: "p"})

	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *upstream.StatusError, got %T (%v)", err, err)
	}
	if statusErr.Status != http.StatusBadRequest || statusErr.Reason == "" {
		t.Errorf("unexpected status error %+v", statusErr)
	}
}

func TestProxyGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Prompt == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Prompt is required"}`))
			return
		}
		if body.Prompt == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Failed to get AI response","details":"API_KEY environment variable not set"}`))
			return
		}
		w.Write([]byte(`{"text":"echo: ` + body.Prompt + `"}`))
	}))
	defer srv.Close()

	gen := NewProxyGenerator(srv.Client(), srv.URL)

	text, err := gen.Generate(context.Background(), Request{Prompt: "hello"})
	if err != nil || text != "echo: hello" {
		t.Fatalf("got %q, %v", text, err)
	}

	_, err = gen.Generate(context.Background(), Request{Prompt: "fail"})
	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *upstream.StatusError, got %T", err)
	}
	if statusErr.Reason != "API_KEY environment variable not set" {
		t.Errorf("expected details as reason, got %q", statusErr.Reason)
	}
	if UserMessage(err) != UserMessage(upstream.ErrMissingCredential) {
		t.Errorf("expected the api key message for %v", err)
	}
}
