// Package parse normalizes raw LLM response envelopes into the shape a pane
// displays. Parsing never fails: malformed output degrades through a chain of
// fallbacks down to plain line-split text.
package parse

import (
	"encoding/json"
	"strings"

	"github.com/hearsay-dev/hearsay/internal/llm"
)

// Result is the normalized outcome of parsing one response.
type Result struct {
	// Items holds one display string per extracted entry.
	Items []string
	// Text holds the trimmed raw text for text-variant panes.
	Text string
	// Raw is the unmodified response text.
	Raw string
	// Structured holds normalized records for json_objects schemas.
	Structured []map[string]string
}

// Parse extracts the raw text from the envelope and dispatches on the schema
// kind. It never returns an error; any unparsable input falls back to
// line-splitting the raw text.
func Parse(resp *llm.Response, schema Schema) Result {
	raw := extractText(resp)

	switch schema.Kind {
	case KindTextList:
		return Result{Items: splitLines(raw), Raw: raw}
	case KindJSONList:
		return parseJSONList(raw, schema)
	case KindJSONObjects:
		return parseJSONObjects(raw, schema)
	default:
		return Result{Text: strings.TrimSpace(raw), Raw: raw}
	}
}

// extractText pulls the response text out of the envelope: the canonical
// Text field when present, otherwise the concatenation of all content-block
// text fragments in order.
func extractText(resp *llm.Response) string {
	if resp == nil {
		return ""
	}
	if resp.Text != "" {
		return resp.Text
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	return sb.String()
}

// splitLines implements the text_list algorithm: split on newlines, strip
// leading bullet/dash markers, drop blanks, preserve order.
func splitLines(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// parseJSONList expects a JSON object with an array of strings under the
// schema's primary field, then each fallback field in order. Anything else
// degrades to line-splitting.
func parseJSONList(raw string, schema Schema) Result {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err == nil {
		fields := append([]string{schema.Field}, schema.FallbackFields...)
		for _, field := range fields {
			entry, ok := payload[field]
			if !ok {
				continue
			}
			var values []any
			if err := json.Unmarshal(entry, &values); err != nil {
				continue
			}
			var items []string
			for _, v := range values {
				s, ok := v.(string)
				if !ok {
					continue
				}
				if s = strings.TrimSpace(s); s != "" {
					items = append(items, s)
				}
			}
			if len(items) > 0 {
				return Result{Items: items, Raw: raw}
			}
		}
	}
	return Result{Items: splitLines(raw), Raw: raw}
}

// parseJSONObjects expects a JSON object with an array of objects under the
// schema field. Each entry becomes a normalized string-valued record plus one
// synthesized display line. Zero valid records degrades to line-splitting.
func parseJSONObjects(raw string, schema Schema) Result {
	records := extractRecords(raw, schema)
	if len(records) == 0 {
		return Result{Items: splitLines(raw), Raw: raw}
	}

	var items []string
	for _, rec := range records {
		if line := renderRecord(rec, schema); line != "" {
			items = append(items, line)
		}
	}
	return Result{Items: items, Raw: raw, Structured: records}
}

// extractRecords unmarshals the array under the schema field and keeps, for
// each object, the declared properties plus any other string-valued keys.
func extractRecords(raw string, schema Schema) []map[string]string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil
	}
	entry, ok := payload[schema.Field]
	if !ok {
		return nil
	}
	var objects []map[string]any
	if err := json.Unmarshal(entry, &objects); err != nil {
		return nil
	}

	var records []map[string]string
	for _, obj := range objects {
		rec := make(map[string]string)
		for key, val := range obj {
			_, declared := schema.Properties[key]
			s, isString := val.(string)
			switch {
			case declared:
				if coerced := coerceString(val); coerced != "" {
					rec[key] = coerced
				}
			case isString:
				if s = strings.TrimSpace(s); s != "" {
					rec[key] = s
				}
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// coerceString renders a declared property value as a trimmed string.
// nil values are dropped.
func coerceString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}
}

// renderRecord synthesizes the human-readable line for one record:
// the primary value, then the remaining display fields as "label: value"
// pairs joined with a bullet separator.
func renderRecord(rec map[string]string, schema Schema) string {
	var primary string
	var primaryField string
	if len(schema.RequiredFields) > 0 {
		primaryField = schema.RequiredFields[0]
		primary = rec[primaryField]
	}
	if primary == "" && len(schema.DisplayFields) > 0 {
		primaryField = schema.DisplayFields[0]
		primary = rec[primaryField]
	}

	var details []string
	for _, field := range schema.DisplayFields {
		if field == primaryField {
			continue
		}
		val, ok := rec[field]
		if !ok || val == "" {
			continue
		}
		label := strings.ReplaceAll(field, "_", " ")
		details = append(details, label+": "+val)
	}
	detail := strings.Join(details, " • ")

	switch {
	case primary != "" && detail != "":
		return primary + " (" + detail + ")"
	case primary != "":
		return primary
	case detail != "":
		return detail
	default:
		return ""
	}
}
