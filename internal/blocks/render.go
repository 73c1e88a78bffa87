package blocks

import "strings"

// NodeKind identifies the display shape of a rendered node
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeList      NodeKind = "list"
	NodeImage     NodeKind = "image"
	NodeQuote     NodeKind = "quote"
	NodeDelimiter NodeKind = "delimiter"
	NodeCode      NodeKind = "code"
	NodeTable     NodeKind = "table"
)

// DisplayNode is one renderable unit of an article body. Only the
// fields relevant to Kind are populated.
type DisplayNode struct {
	Kind    NodeKind   `json:"kind"`
	Text    string     `json:"text,omitempty"`
	Level   int        `json:"level,omitempty"`
	Ordered bool       `json:"ordered,omitempty"`
	Items   []string   `json:"items,omitempty"`
	URL     string     `json:"url,omitempty"`
	Caption string     `json:"caption,omitempty"`
	Code    string     `json:"code,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Render maps a serialized document to display nodes in block order.
// It is pure and total: any input that fails to parse as a block
// document is treated as legacy plain text and rendered as one
// paragraph per line, empty lines included. Unknown block kinds and
// undecodable payloads produce no node and do not disturb siblings.
func Render(serialized string) []DisplayNode {
	doc, err := Parse(serialized)
	if err != nil {
		return renderLegacy(serialized)
	}

	nodes := make([]DisplayNode, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		if node, ok := renderBlock(block); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func renderBlock(block Block) (DisplayNode, bool) {
	switch block.Type {
	case TypeHeader:
		var data HeaderData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		level := data.Level
		if level < 1 || level > 3 {
			level = 2
		}
		return DisplayNode{Kind: NodeHeading, Text: data.Text, Level: level}, true

	case TypeParagraph:
		var data ParagraphData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		return DisplayNode{Kind: NodeParagraph, Text: data.Text}, true

	case TypeList:
		var data ListData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		return DisplayNode{Kind: NodeList, Ordered: data.Style == "ordered", Items: data.Items}, true

	case TypeImage:
		var data ImageData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		return DisplayNode{Kind: NodeImage, URL: data.File.URL, Caption: data.Caption}, true

	case TypeQuote:
		var data QuoteData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		return DisplayNode{Kind: NodeQuote, Text: data.Text, Caption: data.Caption}, true

	case TypeDelimiter:
		return DisplayNode{Kind: NodeDelimiter}, true

	case TypeCode:
		var data CodeData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		return DisplayNode{Kind: NodeCode, Code: data.Code}, true

	case TypeTable:
		var data TableData
		if !decode(block.Data, &data) {
			return DisplayNode{}, false
		}
		return DisplayNode{Kind: NodeTable, Rows: data.Content}, true

	default:
		// Unknown kinds are skipped, not errors: older readers must
		// survive documents written by newer editors.
		return DisplayNode{}, false
	}
}

// renderLegacy renders pre-editor plain text content. Segments are not
// filtered: an empty line still yields an (empty) paragraph node, which
// preserves the original spacing.
func renderLegacy(content string) []DisplayNode {
	lines := strings.Split(content, "\n")
	nodes := make([]DisplayNode, 0, len(lines))
	for _, line := range lines {
		nodes = append(nodes, DisplayNode{Kind: NodeParagraph, Text: line})
	}
	return nodes
}

func decode(raw []byte, v interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return jsonUnmarshal(raw, v) == nil
}
