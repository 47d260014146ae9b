package movie

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/diginoron/imdb/internal/upstream"
)

// wireRecord is the upstream movie object. Numbers are accepted as JSON
// numbers or numeric strings.
type wireRecord struct {
	Title  string       `json:"title"`
	Year   flexNumber   `json:"year"`
	Length string       `json:"length"`
	Rating flexNumber   `json:"rating"`
	Poster string       `json:"poster"`
	Plot   string       `json:"plot"`
	Cast   []CastMember `json:"cast"`
}

func (w wireRecord) toRecord() *Record {
	return &Record{
		Title:  strings.TrimSpace(w.Title),
		Year:   int(w.Year),
		Length: w.Length,
		Rating: float64(w.Rating),
		Poster: w.Poster,
		Plot:   w.Plot,
		Cast:   w.Cast,
	}
}

type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// Non-numeric strings such as "N/A" count as absent.
			return nil
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

// matcher interprets one envelope shape. ok is false when the shape does not apply.
type matcher func(body []byte) (rec *Record, ok bool)

// envelopeMatchers are tried in order; the first record with a title wins.
var envelopeMatchers = []matcher{
	matchStatusEnvelope,
	matchBareObject,
	matchFirstElement,
}

// {"status": true, "data": {...}}
func matchStatusEnvelope(body []byte) (*Record, bool) {
	var env struct {
		Status *bool           `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &env) != nil || env.Status == nil || !*env.Status || len(env.Data) == 0 {
		return nil, false
	}
	var w wireRecord
	if json.Unmarshal(env.Data, &w) != nil {
		return nil, false
	}
	return w.toRecord(), true
}

// {"title": ...}
func matchBareObject(body []byte) (*Record, bool) {
	var probe map[string]json.RawMessage
	if json.Unmarshal(body, &probe) != nil {
		return nil, false
	}
	if _, ok := probe["title"]; !ok {
		return nil, false
	}
	var w wireRecord
	if json.Unmarshal(body, &w) != nil {
		return nil, false
	}
	return w.toRecord(), true
}

// [{"title": ...}, ...]
func matchFirstElement(body []byte) (*Record, bool) {
	var items []json.RawMessage
	if json.Unmarshal(body, &items) != nil || len(items) == 0 {
		return nil, false
	}
	return matchBareObject(items[0])
}

// decodeRecord runs the matchers and falls back to a NotFoundError that
// carries the upstream message, if any.
func decodeRecord(body []byte) (*Record, error) {
	for _, match := range envelopeMatchers {
		if rec, ok := match(body); ok && rec.Title != "" {
			return rec, nil
		}
	}
	return nil, &NotFoundError{Message: upstream.ReasonFromBody(body)}
}
