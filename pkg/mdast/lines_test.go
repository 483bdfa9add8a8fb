package mdast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdview/pkg/mdast"
)

func TestBuildLines_LastLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 1},
		{"single line", "hello", 1},
		{"trailing newline", "hello\n", 2},
		{"two lines", "a\nb", 2},
		{"crlf", "a\r\nb\r\n", 3},
		{"blank lines", "\n\n", 3},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			end := mdast.BuildLines(testCase.content).Position(len(testCase.content))
			assert.Equal(t, testCase.want, end.Line)
		})
	}
}

func TestLines_Position(t *testing.T) {
	t.Parallel()

	const src = "# Title\n\nbody\r\nend"
	lines := mdast.BuildLines(src)

	tests := []struct {
		name   string
		offset int
		want   mdast.Position
	}{
		{"start", 0, mdast.Position{Line: 1, Column: 1}},
		{"inside first line", 2, mdast.Position{Line: 1, Column: 3}},
		{"newline byte", 7, mdast.Position{Line: 1, Column: 8}},
		{"blank line", 8, mdast.Position{Line: 2, Column: 1}},
		{"carriage return", 13, mdast.Position{Line: 3, Column: 5}},
		{"last line", 15, mdast.Position{Line: 4, Column: 1}},
		{"end of text", len(src), mdast.Position{Line: 4, Column: 4}},
		{"negative", -1, mdast.Position{}},
		{"past end", len(src) + 1, mdast.Position{}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := lines.Position(testCase.offset)
			assert.Equal(t, testCase.want, got)
			assert.Equal(t, testCase.want != mdast.Position{}, got.IsValid())
		})
	}
}
