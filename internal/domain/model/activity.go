package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Activity describes one club activity and its roster.
// Fields mirror the upstream JSON for GET /activities.
type Activity struct {
	Description     string        `json:"description"`
	Schedule        string        `json:"schedule"`
	MaxParticipants int           `json:"max_participants"`
	Participants    []Participant `json:"participants"`
}

// SpotsLeft is capacity minus roster size, derived at render time and never
// stored. Malformed data (missing capacity, oversubscribed roster) can make
// it zero or negative; callers display whatever integer results.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// NamedActivity pairs an activity with its unique human-readable name key.
type NamedActivity struct {
	Name string
	Activity
}

// Activities is the wholesale snapshot received from the remote service.
// It preserves the upstream object's key order: iteration order is whatever
// order the service produced, not a separate sort.
type Activities []NamedActivity

// Participants returns the total roster size across the snapshot.
func (as Activities) Participants() int {
	n := 0
	for _, a := range as {
		n += len(a.Activity.Participants)
	}
	return n
}

// UnmarshalJSON decodes the upstream object while retaining key order, which
// a plain map would lose.
func (as *Activities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("activities: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("activities: expected JSON object, got %v", tok)
	}

	out := Activities{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("activities: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("activities: expected string key, got %v", keyTok)
		}
		var a Activity
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("activities: %q: %w", name, err)
		}
		out = append(out, NamedActivity{Name: name, Activity: a})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("activities: %w", err)
	}

	*as = out
	return nil
}

// MarshalJSON writes the snapshot back as an object in retained order.
func (as Activities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range as {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(a.Activity)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
