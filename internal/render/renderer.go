// Package render converts the activities snapshot into the page shown by the
// gateway. The card list and the picker are always derived from the same
// snapshot, so the page never mixes two fetches.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/mergington/signup/internal/domain/model"
	"github.com/mergington/signup/internal/domain/sanitize"
	"github.com/mergington/signup/internal/feedback"
)

//go:embed page.html
var pageHTML string

// FetchFailedText replaces the activity list when the snapshot could not be
// loaded.
const FetchFailedText = "Failed to load activities. Please try again later."

// NoParticipantsText is the placeholder item for an empty roster.
const NoParticipantsText = "No participants yet."

// View is everything one render needs. Activities and the derived picker
// options come from a single snapshot; FetchFailed swaps the list for a
// static failure message while the picker keeps the (possibly stale) options.
type View struct {
	Activities  model.Activities
	FetchFailed bool
	Message     feedback.Message
	ShowMessage bool
	CSRFField   template.HTML
}

// Renderer renders the full page from a View.
type Renderer struct {
	tpl *template.Template
}

// New parses the embedded page shell.
func New() (*Renderer, error) {
	tpl, err := template.New("page").Parse(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}
	return &Renderer{tpl: tpl}, nil
}

// pageData is the shell's template payload. List arrives pre-escaped via
// sanitize.Escape; the picker options are escaped by html/template in
// attribute context.
type pageData struct {
	Activities   model.Activities
	List         template.HTML
	MessageText  string
	MessageClass string
	CSRFField    template.HTML
}

// Render writes the whole page for one view.
func (r *Renderer) Render(w io.Writer, view View) error {
	data := pageData{
		Activities:   view.Activities,
		List:         template.HTML(buildList(view)), //nolint:gosec // fragment text is escaped field by field
		MessageText:  view.Message.Text,
		MessageClass: messageClass(view),
		CSRFField:    view.CSRFField,
	}
	if err := r.tpl.Execute(w, data); err != nil {
		return fmt.Errorf("%w: %w", ErrExecuteTemplate, err)
	}
	return nil
}

func messageClass(view View) string {
	cls := "message"
	if view.Message.Kind != "" {
		cls += " " + string(view.Message.Kind)
	}
	if !view.ShowMessage {
		cls += " hidden"
	}
	return cls
}

// buildList assembles the activity-card fragment. Untrusted text goes through
// sanitize.Escape; the availability count is a number and stays raw.
func buildList(view View) string {
	if view.FetchFailed {
		return "<p>" + FetchFailedText + "</p>"
	}

	var b strings.Builder
	for _, entry := range view.Activities {
		writeCard(&b, entry, view.CSRFField)
	}
	return b.String()
}

func writeCard(b *strings.Builder, entry model.NamedActivity, csrfField template.HTML) {
	b.WriteString(`<div class="activity-card">`)
	b.WriteString("<h4>" + sanitize.Escape(entry.Name) + "</h4>")
	b.WriteString("<p>" + sanitize.Escape(entry.Description) + "</p>")
	b.WriteString("<p><strong>Schedule:</strong> " + sanitize.Escape(entry.Schedule) + "</p>")
	b.WriteString("<p><strong>Availability:</strong> " + strconv.Itoa(entry.SpotsLeft()) + " spots left</p>")

	b.WriteString(`<div class="participants">`)
	b.WriteString(`<h5 class="participants-heading">Participants</h5>`)
	b.WriteString(`<ul class="participants-list">`)
	if len(entry.Participants) == 0 {
		b.WriteString(`<li class="no-participants">` + NoParticipantsText + "</li>")
	} else {
		for _, p := range entry.Participants {
			writeParticipant(b, entry.Name, p, csrfField)
		}
	}
	b.WriteString("</ul></div></div>")
}

func writeParticipant(b *strings.Builder, activity string, p model.Participant, csrfField template.HTML) {
	display := p.Display()

	b.WriteString(`<li class="participant-item">`)
	b.WriteString(`<span class="participant-badge">` + sanitize.Escape(model.Initials(display)) + "</span>")
	b.WriteString(`<span class="participant-name">` + sanitize.Escape(display) + "</span>")

	// The unregister control is a form post; the gateway maps it to the
	// upstream removal verb.
	b.WriteString(`<form class="unregister-form" method="POST" action="/unregister">`)
	b.WriteString(string(csrfField))
	b.WriteString(`<input type="hidden" name="activity" value="` + sanitize.Escape(activity) + `">`)
	b.WriteString(`<input type="hidden" name="email" value="` + sanitize.Escape(p.Identity()) + `">`)
	b.WriteString(`<button type="submit" class="participant-delete" title="Unregister participant" aria-label="Unregister participant">&#10006;</button>`)
	b.WriteString("</form></li>")
}
