// Package inline turns the text content of a block into inline nodes.
//
// Parsing runs in three passes over a block's shadow text, in which every
// embedded markup span has already been replaced by a placeholder:
//
//  1. Atoms (code spans, links, images, autolinks) are cut out and replaced
//     by placeholders of their own, so their contents cannot take part in
//     delimiter matching.
//  2. The delimiter resolver pairs emphasis and strikethrough runs, longest
//     symbol first and innermost pair first, recursing into each winner.
//  3. Text that no pair claims becomes Text and LineBreak nodes; placeholders
//     found there expand into their atom or markup nodes.
package inline

import (
	"github.com/yaklabco/mdview/pkg/markup"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// DefaultMaxNestDepth bounds the chain of nested inline containers.
const DefaultMaxNestDepth = 20

// Options configures a Parser.
type Options struct {
	// MaxNestDepth is the deepest chain of inline containers produced.
	// Ranges nested deeper are kept as literal text. Zero means
	// DefaultMaxNestDepth.
	MaxNestDepth int

	// ResolveURI maps a relative image or link target to an absolute one.
	// It returns false when the target should be left alone.
	ResolveURI func(uri string) (string, bool)
}

// Parser resolves inline content for one document.
type Parser struct {
	shadow   *markup.Shadow
	maxDepth int
	resolve  func(string) (string, bool)
}

// New returns a parser over the given shadow. A nil shadow is treated as a
// document without markup.
func New(shadow *markup.Shadow, opts Options) *Parser {
	if shadow == nil {
		shadow = &markup.Shadow{}
	}
	maxDepth := opts.MaxNestDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestDepth
	}
	return &Parser{shadow: shadow, maxDepth: maxDepth, resolve: opts.ResolveURI}
}

// MaxDepth returns the effective nesting bound.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// Parse converts a fragment of shadow text into inline nodes.
func (p *Parser) Parse(text string) []*mdast.Node {
	return p.parse(text, 0)
}

// parse handles a fragment whose containers start at the given depth.
func (p *Parser) parse(text string, depth int) []*mdast.Node {
	if text == "" {
		return nil
	}
	ctx := p.extractAtoms(text, depth)
	return mdast.MergeText(ctx.resolve(ctx.text, depth))
}

// resolveURI applies the configured resolver, if any.
func (p *Parser) resolveURI(uri string) string {
	if p.resolve == nil || uri == "" {
		return ""
	}
	resolved, ok := p.resolve(uri)
	if !ok {
		return ""
	}
	return resolved
}

// canNest reports whether a container may be opened at depth.
func (p *Parser) canNest(depth int) bool {
	return depth < p.maxDepth
}
