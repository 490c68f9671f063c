// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// UnknownParticipant is the display fallback when a detailed record carries
// neither name nor email.
const UnknownParticipant = "Unknown Participant"

// Participant is a tagged variant: the upstream service returns either a bare
// identifier (historically an email) or a record with optional name/email.
type Participant struct {
	bare   string
	isBare bool
	name   string
	email  string
}

// Bare constructs a participant from a plain identifier string.
func Bare(id string) Participant {
	return Participant{bare: id, isBare: true}
}

// Detailed constructs a participant from an optional name and email.
func Detailed(name, email string) Participant {
	return Participant{name: name, email: email}
}

// Display resolves the text shown for the participant:
// bare value, else name, else email, else a fixed fallback.
func (p Participant) Display() string {
	if p.isBare {
		return p.bare
	}
	if p.name != "" {
		return p.name
	}
	if p.email != "" {
		return p.email
	}
	return UnknownParticipant
}

// Identity resolves the value used to address the participant in mutations:
// bare value, else email, else name, else empty. An empty identity is passed
// through as-is; the server stays the authority on what it means.
func (p Participant) Identity() string {
	if p.isBare {
		return p.bare
	}
	if p.email != "" {
		return p.email
	}
	return p.name
}

// UnmarshalJSON accepts both wire shapes: a JSON string or an object with
// optional name/email fields.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Bare(s)
		return nil
	}
	var rec struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*p = Detailed(rec.Name, rec.Email)
	return nil
}

// MarshalJSON writes the participant back in its wire shape.
func (p Participant) MarshalJSON() ([]byte, error) {
	if p.isBare {
		return json.Marshal(p.bare)
	}
	rec := struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}{Name: p.name, Email: p.email}
	return json.Marshal(rec)
}

// Initials derives the badge text for a display name: the first rune of each
// of the first two whitespace-separated tokens, uppercased, or "?" when
// nothing usable remains.
func Initials(display string) string {
	tokens := strings.Fields(display)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	var b strings.Builder
	for _, tok := range tokens {
		r, _ := utf8.DecodeRuneInString(tok)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "?"
	}
	return strings.ToUpper(b.String())
}
