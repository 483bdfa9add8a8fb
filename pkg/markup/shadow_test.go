package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/markup"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	in := "a\uE000b\uE003c"
	out := markup.Sanitize(in)

	assert.Equal(t, "a\uFFFDb\uFFFDc", out)
	assert.Len(t, out, len(in))
	assert.Equal(t, "plain", markup.Sanitize("plain"))
}

func TestPlaceholderRoundTrip(t *testing.T) {
	t.Parallel()

	text := "x" + markup.Placeholder(markup.AtomOpen, markup.AtomClose, 42) + "y"

	idx, end, ok := markup.ParsePlaceholder(text, 1, markup.AtomOpen, markup.AtomClose)
	require.True(t, ok)
	assert.Equal(t, 42, idx)
	assert.Equal(t, "y", text[end:])

	_, _, ok = markup.ParsePlaceholder(text, 0, markup.AtomOpen, markup.AtomClose)
	assert.False(t, ok)
	_, _, ok = markup.ParsePlaceholder(text, 1, markup.MarkupOpen, markup.MarkupClose)
	assert.False(t, ok)
}

func TestNewShadow(t *testing.T) {
	t.Parallel()

	src := "*a<b>*c*</b>* tail"
	shadow := markup.NewShadow(src)

	require.Len(t, shadow.Spans, 1)
	assert.Equal(t, "*a"+markup.Placeholder(markup.MarkupOpen, markup.MarkupClose, 0)+"* tail", shadow.Text)
	assert.NotContains(t, shadow.Text, "<b>")

	tailAt := strings.Index(shadow.Text, "tail")
	assert.Equal(t, strings.Index(src, "tail"), shadow.SourceOffset(tailAt))
	assert.Equal(t, len(src), shadow.SourceOffset(len(shadow.Text)))
	assert.Equal(t, 2, shadow.SourceOffset(2))

	assert.Equal(t, src, shadow.Restore(0, len(shadow.Text)))
	assert.Equal(t, "<b>*c*</b>", shadow.Expand(markup.Placeholder(markup.MarkupOpen, markup.MarkupClose, 0)))
}

func TestShadow_SoleSpan(t *testing.T) {
	t.Parallel()

	shadow := markup.NewShadow("<div>x</div>\ntext <b>y</b>")
	lines := strings.Split(shadow.Text, "\n")

	span, ok := shadow.SoleSpan("  " + lines[0] + " ")
	require.True(t, ok)
	assert.Equal(t, "div", span.Tag.Name)

	_, ok = shadow.SoleSpan(lines[1])
	assert.False(t, ok)
}

func TestRewrite(t *testing.T) {
	t.Parallel()

	out, offsets := markup.Rewrite("hello world", []markup.Replacement{{Start: 0, End: 5, With: "X"}})

	assert.Equal(t, "X world", out)
	assert.Equal(t, 0, offsets.Source(0))
	assert.Equal(t, 5, offsets.Source(1))
	assert.Equal(t, 7, offsets.Source(3))
	assert.Equal(t, 11, offsets.Source(7))
}
