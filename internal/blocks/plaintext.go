package blocks

import (
	"encoding/json"
	"strings"
)

func jsonUnmarshal(raw []byte, v interface{}) error {
	return json.Unmarshal(raw, v)
}

// PlainText flattens a serialized document to newline-joined text for
// AI prompts and previews. Each block contributes its text field;
// blocks without one (images, tables, delimiters) contribute an empty
// segment, matching the editor's own plain-text join. Legacy content
// is returned unchanged.
func PlainText(serialized string) string {
	doc, err := Parse(serialized)
	if err != nil {
		return serialized
	}

	segments := make([]string, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		var data struct {
			Text string `json:"text"`
		}
		if len(block.Data) > 0 {
			_ = json.Unmarshal(block.Data, &data)
		}
		segments = append(segments, data.Text)
	}
	return strings.Join(segments, "\n")
}

// ReadMinutes estimates reading time from raw content length, two
// thousand characters to the minute, rounded up.
func ReadMinutes(content string) int {
	if len(content) == 0 {
		return 0
	}
	return (len(content) + 1999) / 2000
}
