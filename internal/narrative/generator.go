package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/diginoron/imdb/internal/upstream"
)

// Request is a single text-generation call.
// Structured asks the backend for a {summary, suggestion} JSON object.
type Request struct {
	Prompt     string
	Structured bool
}

// Generator abstracts a generative-text backend.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

const (
	geminiService = "gemini"
	proxyService  = "narrative-proxy"

	// DefaultGeminiBaseURL is the public Gemini REST endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultGeminiModel is the model used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
)

// GeminiGenerator calls the Gemini generateContent REST method.
type GeminiGenerator struct {
	client *resty.Client
	apiKey string
	model  string
}

// NewGeminiGenerator creates a generator. Empty baseURL or model select the defaults.
func NewGeminiGenerator(httpClient *http.Client, baseURL, apiKey, model string) *GeminiGenerator {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiGenerator{
		client: resty.NewWithClient(httpClient).
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		apiKey: apiKey,
		model:  model,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// replySchema requests exactly a summary and a suggestion string.
var replySchema = geminiSchema{
	Type: "OBJECT",
	Properties: map[string]geminiSchema{
		"summary":    {Type: "STRING"},
		"suggestion": {Type: "STRING"},
	},
	Required: []string{"summary", "suggestion"},
}

// Generate returns upstream.ErrMissingCredential without a network call when no key is set.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", upstream.ErrMissingCredential
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.Structured {
		schema := replySchema
		body.GenerationConfig = &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   &schema,
		}
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", g.apiKey).
		SetPathParam("model", g.model).
		SetBody(body).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", &upstream.TransportError{Service: geminiService, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &upstream.StatusError{
			Service: geminiService,
			Status:  resp.StatusCode(),
			Reason:  upstream.ReasonFromBody(resp.Body()),
		}
	}

	var payload geminiResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", &upstream.DecodeError{Service: geminiService, Err: err}
	}
	if len(payload.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range payload.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// ProxyGenerator forwards prompts to a server-side proxy that holds the credential.
// The proxy accepts {"prompt": ...} and replies {"text": ...}.
type ProxyGenerator struct {
	client *resty.Client
	url    string
}

// NewProxyGenerator creates a generator posting to url.
func NewProxyGenerator(httpClient *http.Client, url string) *ProxyGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProxyGenerator{
		client: resty.NewWithClient(httpClient).SetHeader("Content-Type", "application/json"),
		url:    url,
	}
}

// Generate ignores req.Structured; the proxy only forwards the prompt.
func (p *ProxyGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"prompt": req.Prompt}).
		Post(p.url)
	if err != nil {
		return "", &upstream.TransportError{Service: proxyService, Err: err}
	}
	if !resp.IsSuccess() {
		var failure struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		reason := upstream.ReasonFromBody(resp.Body())
		if json.Unmarshal(resp.Body(), &failure) == nil && failure.Details != "" {
			reason = failure.Details
		}
		return "", &upstream.StatusError{Service: proxyService, Status: resp.StatusCode(), Reason: reason}
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", &upstream.DecodeError{Service: proxyService, Err: err}
	}
	return payload.Text, nil
}
