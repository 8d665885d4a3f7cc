// Package markdown turns the small Markdown subset returned by the diet plan
// generator into display blocks. Every input line becomes exactly one block.
package markdown

import "strings"

// Kind tags a Block.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindListItem  Kind = "list_item"
	KindBreak     Kind = "break"
	KindParagraph Kind = "paragraph"
)

// Span is a run of paragraph text, optionally bold.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Block is one rendered line. Level is set for headings, Text for headings
// and list items, Spans for paragraphs.
type Block struct {
	Kind  Kind   `json:"kind"`
	Level int    `json:"level,omitempty"`
	Text  string `json:"text,omitempty"`
	Spans []Span `json:"spans,omitempty"`
}

var headingPrefixes = []struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

// Render converts text line by line. It never fails: unbalanced "**" simply
// alternates plain and bold starting from plain.
func Render(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, renderLine(strings.TrimSuffix(line, "\r")))
	}
	return blocks
}

func renderLine(line string) Block {
	for _, h := range headingPrefixes {
		if rest, ok := strings.CutPrefix(line, h.prefix); ok {
			return Block{Kind: KindHeading, Level: h.level, Text: rest}
		}
	}
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		return Block{Kind: KindListItem, Text: rest}
	}
	if strings.TrimSpace(line) == "" {
		return Block{Kind: KindBreak}
	}
	return Block{Kind: KindParagraph, Spans: splitBold(line)}
}

func splitBold(line string) []Span {
	parts := strings.Split(line, "**")
	spans := make([]Span, len(parts))
	for i, p := range parts {
		spans[i] = Span{Text: p, Bold: i%2 == 1}
	}
	return spans
}
