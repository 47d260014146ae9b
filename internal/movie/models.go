package movie

import (
	"errors"
)

var (
	// ErrInvalidIdentifier is returned before any request when the id lacks the "tt" prefix.
	ErrInvalidIdentifier = errors.New("movie id must start with \"tt\"")
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("movie not found")
)

// NotFoundError carries the upstream message when the service supplied one.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrNotFound.Error()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CastMember is one credited actor.
type CastMember struct {
	Actor     string `json:"actor"`
	Character string `json:"character"`
}

// Record is the normalized movie. Optional fields are zero when absent.
type Record struct {
	Title  string       `json:"title"`
	Year   int          `json:"year,omitempty"`
	Length string       `json:"length,omitempty"`
	Rating float64      `json:"rating,omitempty"`
	Poster string       `json:"poster,omitempty"`
	Plot   string       `json:"plot,omitempty"`
	Cast   []CastMember `json:"cast,omitempty"`
}
