// Package grammar builds document trees from markdown with embedded markup.
//
// Block constructs are recognized by two ordered tiers of parsers. The top
// tier (lists, fenced code, custom containers) runs first over the whole
// text; the sub tier (blockquotes, headings, rules, tables, asides, raw
// markup blocks, indented code) only sees text the top tier left unclaimed.
// Within a tier the match that starts earliest wins, ties going to the
// parser listed first. Text before a winning match is handed to the next
// tier, and text no tier claims becomes paragraphs.
package grammar

import (
	"github.com/yaklabco/mdview/pkg/inline"
	"github.com/yaklabco/mdview/pkg/markup"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// MaxBlockDepth bounds the nesting of container blocks (lists, quotes,
// containers). Deeper content is kept as paragraphs.
const MaxBlockDepth = 32

// Status holds the per-parse flags. It is passed by value and never
// modified during a parse.
type Status struct {
	// AlignmentDirectives enables "->text<-" centering and "->text->"
	// right alignment of paragraphs.
	AlignmentDirectives bool

	// MaxNestDepth bounds inline container nesting. Zero selects
	// inline.DefaultMaxNestDepth.
	MaxNestDepth int

	// ResourceRoot is joined with relative image and link targets to fill
	// in their resolved URI. Empty disables resolution.
	ResourceRoot string

	// DetectLanguage fills in the language of fenced code without an info
	// string by inspecting its content.
	DetectLanguage bool
}

// DefaultStatus returns the flags used when none are configured.
func DefaultStatus() Status {
	return Status{MaxNestDepth: inline.DefaultMaxNestDepth, DetectLanguage: true}
}

// blockMatch is a block construct recognized over lines[start:end].
type blockMatch struct {
	start int
	end   int
	nodes []*mdast.Node
}

// blockFinder returns the earliest match of one construct at or after from.
// A construct whose pattern matches but whose content fails validation
// reports no match at that position.
type blockFinder func(p *parser, lines []line, from, depth int) (blockMatch, bool)

const tierCount = 2

// tierFinders returns the parsers of a tier in priority order.
func tierFinders(tier int) []blockFinder {
	if tier == 0 {
		return []blockFinder{findList, findFencedCode, findContainer}
	}
	return []blockFinder{
		findRawBlock, findBlockquote, findATXHeading, findSetextHeading,
		findThematicBreak, findTable, findAside, findIndentedCode,
	}
}

type parser struct {
	shadow *markup.Shadow
	inline *inline.Parser
	status Status
}

// Parse builds the document tree for text. It never fails: constructs that
// do not validate fall through to lower-priority parsers and finally to
// paragraph text.
func Parse(text string, status Status) *mdast.Node {
	source := markup.Sanitize(text)
	shadow := markup.NewShadow(source)

	p := &parser{
		shadow: shadow,
		status: status,
		inline: inline.New(shadow, inline.Options{
			MaxNestDepth: status.MaxNestDepth,
			ResolveURI:   resolverFor(status.ResourceRoot),
		}),
	}

	doc := mdast.NewDocument()
	doc.Origin = mdast.Range(0, len(source))
	doc.Children = p.parseBlocks(splitLines(shadow.Text), 0)
	return doc
}

// parseBlocks parses a run of lines at the given container depth.
func (p *parser) parseBlocks(lines []line, depth int) []*mdast.Node {
	if depth >= MaxBlockDepth {
		return p.paragraphs(lines)
	}
	return p.parseTier(lines, 0, depth)
}

func (p *parser) parseTier(lines []line, tier, depth int) []*mdast.Node {
	if len(lines) == 0 {
		return nil
	}
	if tier >= tierCount {
		return p.paragraphs(lines)
	}

	finders := tierFinders(tier)
	cached := make([]blockMatch, len(finders))
	state := make([]int8, len(finders)) // 0 unknown, 1 cached, -1 exhausted

	var out []*mdast.Node
	cursor := 0

	for cursor < len(lines) {
		best := -1
		for i, find := range finders {
			if state[i] == -1 {
				continue
			}
			if state[i] == 0 || cached[i].start < cursor {
				match, ok := find(p, lines, cursor, depth)
				if !ok {
					state[i] = -1
					continue
				}
				cached[i], state[i] = match, 1
			}
			if best < 0 || cached[i].start < cached[best].start {
				best = i
			}
		}
		if best < 0 {
			break
		}

		match := cached[best]
		out = append(out, p.parseTier(lines[cursor:match.start], tier+1, depth)...)
		out = append(out, match.nodes...)
		cursor = max(match.end, match.start+1)
	}

	return append(out, p.parseTier(lines[cursor:], tier+1, depth)...)
}

type blockTry func(p *parser, lines []line, at, depth int) (blockMatch, bool)

// scanFrom tries a single-position matcher at every line from onward.
func scanFrom(p *parser, lines []line, from, depth int, try blockTry) (blockMatch, bool) {
	for at := from; at < len(lines); at++ {
		if match, ok := try(p, lines, at, depth); ok {
			return match, true
		}
	}
	return blockMatch{}, false
}

// inlines parses inline content of a block.
func (p *parser) inlines(text string) []*mdast.Node {
	return p.inline.Parse(text)
}
