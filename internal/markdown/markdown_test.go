package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLineKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Block
	}{
		{"h3", "### Breakfast", Block{Kind: KindHeading, Level: 3, Text: "Breakfast"}},
		{"h2", "## Daily Plan", Block{Kind: KindHeading, Level: 2, Text: "Daily Plan"}},
		{"h1", "# Overview", Block{Kind: KindHeading, Level: 1, Text: "Overview"}},
		{"bullet", "- Oatmeal with berries", Block{Kind: KindListItem, Text: "Oatmeal with berries"}},
		{"empty", "", Block{Kind: KindBreak}},
		{"whitespace only", "  \t ", Block{Kind: KindBreak}},
		{"plain", "Drink water.", Block{Kind: KindParagraph, Spans: []Span{{Text: "Drink water."}}}},
		{"hash without space", "#hashtag", Block{Kind: KindParagraph, Spans: []Span{{Text: "#hashtag"}}}},
		{"four hashes", "#### Deep", Block{Kind: KindParagraph, Spans: []Span{{Text: "#### Deep"}}}},
		{"indented bullet", "  - nested", Block{Kind: KindParagraph, Spans: []Span{{Text: "  - nested"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Render(tt.line)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.want, blocks[0])
		})
	}
}

func TestRenderBoldSplitting(t *testing.T) {
	tests := []struct {
		line string
		want []Span
	}{
		{"A **B** C", []Span{{Text: "A "}, {Text: "B", Bold: true}, {Text: " C"}}},
		{"**only**", []Span{{Text: ""}, {Text: "only", Bold: true}, {Text: ""}}},
		{"open **bold", []Span{{Text: "open "}, {Text: "bold", Bold: true}}},
		{"**a** and **b**", []Span{{Text: ""}, {Text: "a", Bold: true}, {Text: " and "}, {Text: "b", Bold: true}, {Text: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			blocks := Render(tt.line)
			require.Len(t, blocks, 1)
			assert.Equal(t, KindParagraph, blocks[0].Kind)
			assert.Equal(t, tt.want, blocks[0].Spans)
		})
	}
}

func TestRenderKeepsLineOrder(t *testing.T) {
	text := "## Plan\r\n\r\n- Eggs\n**Tip:** eat slowly"

	blocks := Render(text)

	require.Len(t, blocks, 4)
	assert.Equal(t, Block{Kind: KindHeading, Level: 2, Text: "Plan"}, blocks[0])
	assert.Equal(t, Block{Kind: KindBreak}, blocks[1])
	assert.Equal(t, Block{Kind: KindListItem, Text: "Eggs"}, blocks[2])
	assert.Equal(t, []Span{{Text: ""}, {Text: "Tip:", Bold: true}, {Text: " eat slowly"}}, blocks[3].Spans)
}

func TestRenderEmptyInput(t *testing.T) {
	assert.Equal(t, []Block{{Kind: KindBreak}}, Render(""))
}
