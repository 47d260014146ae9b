package narrative

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMalformedReply means a structured reply was neither JSON nor a fenced JSON block.
	ErrMalformedReply = errors.New("narrative reply is not valid JSON")
	// ErrIncompleteReply means the reply parsed but required content is missing.
	ErrIncompleteReply = errors.New("narrative reply is missing required fields")
)

// SuggestionHeading separates the summary from the suggestion in display text.
const SuggestionHeading = "Creative suggestion:"

// ReplyMode selects how generated text is interpreted.
type ReplyMode int

const (
	// ReplyText treats the whole reply as narrative text.
	ReplyText ReplyMode = iota
	// ReplyStructured requires a {summary, suggestion} JSON object.
	ReplyStructured
)

// ParseReplyMode accepts "text" and "structured".
func ParseReplyMode(s string) (ReplyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return ReplyText, nil
	case "structured", "json":
		return ReplyStructured, nil
	default:
		return ReplyText, fmt.Errorf("unknown narrative mode %q", s)
	}
}

// Reply is a parsed structured reply.
type Reply struct {
	Summary    string `json:"summary"`
	Suggestion string `json:"suggestion"`
}

// String joins both fields under SuggestionHeading.
func (r Reply) String() string {
	return r.Summary + "\n\n" + SuggestionHeading + "\n" + r.Suggestion
}

var fencedBlock = regexp.MustCompile("(?s)^```[A-Za-z]*\\s*(.*?)\\s*```$")

// ParseStructured decodes a structured reply, stripping a surrounding code fence.
func ParseStructured(reply string) (Reply, error) {
	body := strings.TrimSpace(reply)
	if !json.Valid([]byte(body)) {
		m := fencedBlock.FindStringSubmatch(body)
		if m == nil || !json.Valid([]byte(m[1])) {
			return Reply{}, ErrMalformedReply
		}
		body = m[1]
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		// Valid JSON that is not an object.
		return Reply{}, ErrMalformedReply
	}

	summary, _ := fields["summary"].(string)
	suggestion, _ := fields["suggestion"].(string)
	summary = strings.TrimSpace(summary)
	suggestion = strings.TrimSpace(suggestion)

	var missing []string
	if summary == "" {
		missing = append(missing, "summary")
	}
	if suggestion == "" {
		missing = append(missing, "suggestion")
	}
	if len(missing) > 0 {
		return Reply{}, fmt.Errorf("%w: %s", ErrIncompleteReply, strings.Join(missing, ", "))
	}

	return Reply{Summary: summary, Suggestion: suggestion}, nil
}
