// templates.go provides the built-in pane templates offered to callers.
package panes

import (
	"time"

	"github.com/hearsay-dev/hearsay/internal/parse"
)

// Template is a read-only pane preset. Callers instantiate one by assigning
// an id and passing the resulting Config to SetPanes.
type Template struct {
	ID              string
	Title           string
	Variant         string
	SystemPrompt    string
	PromptTemplate  string
	Throttle        time.Duration
	MaxSegments     int
	MaxOutputTokens int
	Schema          parse.Schema
}

// Config builds a pane Config from the template with the given pane id.
func (t Template) Config(id string) Config {
	return Config{
		ID:              id,
		Title:           t.Title,
		Variant:         t.Variant,
		SystemPrompt:    t.SystemPrompt,
		PromptTemplate:  t.PromptTemplate,
		Throttle:        t.Throttle,
		MaxSegments:     t.MaxSegments,
		MaxOutputTokens: t.MaxOutputTokens,
		Schema:          t.Schema,
		TemplateID:      t.ID,
		AllowPromptEdit: true,
	}
}

// Templates returns the built-in pane presets.
func Templates() []Template {
	return []Template{
		{
			ID:           "summary",
			Title:        "Summary",
			Variant:      VariantList,
			SystemPrompt: "You condense live meeting transcripts into crisp bullet notes.",
			PromptTemplate: "Summarize the key points of this conversation so far as short bullets.\n" +
				"Respond with JSON: {\"bullets\": [\"...\"]}.\n\nTranscript:\n" + PlaceholderToken,
			Throttle:        8 * time.Second,
			MaxSegments:     40,
			MaxOutputTokens: 512,
			Schema:          parse.JSONListSchema("bullets", "items", "points"),
		},
		{
			ID:           "questions",
			Title:        "Follow-up questions",
			Variant:      VariantList,
			SystemPrompt: "You surface sharp follow-up questions a listener should ask.",
			PromptTemplate: "List follow-up questions worth asking based on this conversation.\n" +
				"Respond with JSON: {\"questions\": [\"...\"]}.\n\nTranscript:\n" + PlaceholderToken,
			Throttle:        10 * time.Second,
			MaxSegments:     40,
			MaxOutputTokens: 512,
			Schema:          parse.JSONListSchema("questions", "items"),
		},
		{
			ID:           "actions",
			Title:        "Action items",
			Variant:      VariantList,
			SystemPrompt: "You extract concrete action items from meeting transcripts.",
			PromptTemplate: "Extract action items from this conversation.\n" +
				"Respond with JSON: {\"items\": [{\"summary\": \"...\", \"owner\": \"...\", \"due\": \"...\"}]}.\n\n" +
				"Transcript:\n" + PlaceholderToken,
			Throttle:        12 * time.Second,
			MaxSegments:     60,
			MaxOutputTokens: 768,
			Schema: parse.Schema{
				Kind:  parse.KindJSONObjects,
				Field: "items",
				Properties: map[string]parse.Property{
					"summary": {Type: "string", Description: "what needs doing"},
					"owner":   {Type: "string", Description: "who owns it"},
					"due":     {Type: "string", Description: "when it is due"},
				},
				RequiredFields: []string{"summary"},
				DisplayFields:  []string{"owner", "due"},
			},
		},
		{
			ID:              "notes",
			Title:           "Free notes",
			Variant:         VariantText,
			SystemPrompt:    "You keep running prose notes on a live conversation.",
			PromptTemplate:  "Write a short running note on where this conversation stands.\n\nTranscript:\n" + PlaceholderToken,
			Throttle:        15 * time.Second,
			MaxSegments:     60,
			MaxOutputTokens: 1024,
			Schema:          parse.TextSchema(),
		},
	}
}
