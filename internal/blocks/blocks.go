// Package blocks models the rich-text editor's block document format: an
// ordered sequence of typed content blocks serialized as a single JSON
// string on the article record. Older articles predate the editor and
// store plain text; rendering degrades to a newline-per-paragraph view
// for those.
package blocks

import (
	"encoding/json"
	"errors"
)

// Block kinds produced by the editor
const (
	TypeHeader    = "header"
	TypeParagraph = "paragraph"
	TypeList      = "list"
	TypeImage     = "image"
	TypeQuote     = "quote"
	TypeDelimiter = "delimiter"
	TypeCode      = "code"
	TypeTable     = "table"
)

// Document is the parsed editor output
type Document struct {
	Time    int64   `json:"time,omitempty"`
	Blocks  []Block `json:"blocks"`
	Version string  `json:"version,omitempty"`
}

// Block is one typed segment of a document. Data stays raw until the
// kind dispatch decodes it; an unknown Type is not an error.
type Block struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HeaderData is the payload of a header block
type HeaderData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// ParagraphData is the payload of a paragraph block
type ParagraphData struct {
	Text string `json:"text"`
}

// ListData is the payload of a list block
type ListData struct {
	Style string   `json:"style"` // "ordered" or "unordered"
	Items []string `json:"items"`
}

// ImageData is the payload of an image block
type ImageData struct {
	File    ImageFile `json:"file"`
	Caption string    `json:"caption,omitempty"`
}

// ImageFile references the uploaded image
type ImageFile struct {
	URL string `json:"url"`
}

// QuoteData is the payload of a quote block
type QuoteData struct {
	Text    string `json:"text"`
	Caption string `json:"caption,omitempty"`
}

// CodeData is the payload of a code block
type CodeData struct {
	Code string `json:"code"`
}

// TableData is the payload of a table block: rows of cell strings
type TableData struct {
	Content [][]string `json:"content"`
}

// ErrNotBlockDocument reports that a content string is not in the block
// document format and should be treated as legacy plain text.
var ErrNotBlockDocument = errors.New("content is not a block document")

// Parse decodes a serialized editor document. A string that is not valid
// JSON, or that lacks the blocks array, returns ErrNotBlockDocument.
func Parse(serialized string) (*Document, error) {
	var probe struct {
		Blocks *json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(serialized), &probe); err != nil {
		return nil, ErrNotBlockDocument
	}
	if probe.Blocks == nil {
		return nil, ErrNotBlockDocument
	}

	var doc Document
	if err := json.Unmarshal([]byte(serialized), &doc); err != nil {
		return nil, ErrNotBlockDocument
	}
	return &doc, nil
}
