package movie

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCastLines caps the cast shown on a card.
const MaxCastLines = 5

// Card is the display form of a Record. Absent fields are left empty.
type Card struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Rating    string   `json:"rating,omitempty"`
	Poster    string   `json:"poster,omitempty"`
	PosterAlt string   `json:"posterAlt,omitempty"`
	Plot      string   `json:"plot,omitempty"`
	Cast      []string `json:"cast,omitempty"`
	Record    *Record  `json:"record"`
}

// NewCard renders r for display.
func NewCard(r *Record) Card {
	c := Card{
		Title:  r.Title,
		Poster: r.Poster,
		Plot:   r.Plot,
		Record: r,
	}
	if r.Poster != "" {
		c.PosterAlt = "Poster of " + r.Title
	}

	var parts []string
	if r.Year > 0 {
		parts = append(parts, strconv.Itoa(r.Year))
	}
	if r.Length != "" {
		parts = append(parts, r.Length)
	}
	c.Subtitle = strings.Join(parts, " • ")

	if r.Rating > 0 {
		c.Rating = strconv.FormatFloat(r.Rating, 'f', -1, 64) + " / 10"
	}

	for i, m := range r.Cast {
		if i == MaxCastLines {
			break
		}
		switch {
		case m.Actor == "":
			continue
		case m.Character == "":
			c.Cast = append(c.Cast, m.Actor)
		default:
			c.Cast = append(c.Cast, fmt.Sprintf("%s as %s", m.Actor, m.Character))
		}
	}
	return c
}
