package inline

import (
	"slices"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdview/pkg/mdast"
)

type symbol struct {
	char   byte
	length int
	kind   mdast.NodeKind
}

// symbols are ordered longest first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var symbols = [...]symbol{
	{'*', 2, mdast.NodeBold},
	{'_', 2, mdast.NodeBold},
	{'~', 2, mdast.NodeStrikethrough},
	{'*', 1, mdast.NodeItalic},
	{'_', 1, mdast.NodeItalic},
}

func symbolIndex(char byte, length int) int {
	for i, sym := range symbols {
		if sym.char == char && sym.length == length {
			return i
		}
	}
	return -1
}

// occurrence is one usable delimiter position.
type occurrence struct {
	start    int
	sym      int
	canOpen  bool
	canClose bool
}

func (o occurrence) end() int {
	return o.start + symbols[o.sym].length
}

// delimPair is a candidate opener/closer match.
type delimPair struct {
	open  occurrence
	close occurrence
	inner int
}

// resolve converts s into inline nodes, pairing delimiters at the given
// depth. Occurrences and candidate pairs are computed once per level. The
// candidates are then accepted in preference order, skipping any that
// overlap an accepted pair, which is the same as taking the best pair and
// resolving the text on either side of it independently. Each accepted
// pair's interior is resolved one level deeper.
func (f *fragment) resolve(s string, depth int) []*mdast.Node {
	if s == "" {
		return nil
	}
	if !f.p.canNest(depth) {
		return f.residual(s, depth, true)
	}

	accepted := acceptPairs(candidatePairs(s))
	if len(accepted) == 0 {
		return f.residual(s, depth, false)
	}

	var out []*mdast.Node
	pos := 0
	for _, pair := range accepted {
		if pair.open.start > pos {
			out = append(out, f.residual(s[pos:pair.open.start], depth, false)...)
		}
		children := mdast.MergeText(f.resolve(s[pair.open.end():pair.close.start], depth+1))
		out = append(out, mdast.NewInline(symbols[pair.open.sym].kind, children...))
		pos = pair.close.end()
	}
	if pos < len(s) {
		out = append(out, f.residual(s[pos:], depth, false)...)
	}
	return out
}

// candidatePairs returns the stack-matched pairs of s with their inner
// delimiter counts, ordered best first: longest symbol, then the pair
// enclosing the fewest other delimiters, then the earliest end.
func candidatePairs(s string) []delimPair {
	occs := scanOccurrences(s)
	if len(occs) < 2 {
		return nil
	}

	starts := make([]int, len(occs))
	for i, occ := range occs {
		starts[i] = occ.start
	}

	pairs := pairOccurrences(occs)
	for i := range pairs {
		lo := sort.SearchInts(starts, pairs[i].open.end())
		hi := sort.SearchInts(starts, pairs[i].close.start)
		pairs[i].inner = hi - lo
	}

	sort.Slice(pairs, func(i, j int) bool {
		return better(pairs[i], pairs[j])
	})
	return pairs
}

// acceptPairs takes candidates in order and keeps those that do not overlap
// an already kept pair. The result is sorted by position.
func acceptPairs(candidates []delimPair) []delimPair {
	var kept []delimPair
	for _, cand := range candidates {
		lo, hi := cand.open.start, cand.close.end()
		// First kept pair starting at or after lo.
		i := sort.Search(len(kept), func(k int) bool {
			return kept[k].open.start >= lo
		})
		if i > 0 && kept[i-1].close.end() > lo {
			continue
		}
		if i < len(kept) && kept[i].open.start < hi {
			continue
		}
		kept = slices.Insert(kept, i, cand)
	}
	return kept
}

func better(a, b delimPair) bool {
	la, lb := symbols[a.open.sym].length, symbols[b.open.sym].length
	if la != lb {
		return la > lb
	}
	if a.inner != b.inner {
		return a.inner < b.inner
	}
	return a.close.start < b.close.start
}

// pairOccurrences matches openers and closers per symbol with a stack.
// A pair needs at least one byte between its delimiters.
func pairOccurrences(occs []occurrence) []delimPair {
	var pairs []delimPair
	stacks := make([][]occurrence, len(symbols))

	for _, occ := range occs {
		stack := stacks[occ.sym]
		if occ.canClose && len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.end() < occ.start {
				pairs = append(pairs, delimPair{open: top, close: occ})
				stacks[occ.sym] = stack[:len(stack)-1]
				continue
			}
		}
		if occ.canOpen {
			stacks[occ.sym] = append(stack, occ)
		}
	}

	return pairs
}

// scanOccurrences finds delimiter runs and records the positions usable as
// openers or closers, sorted by offset. Two-character positions are taken
// first and reserve their bytes; single-character positions inside a
// reserved range are skipped.
func scanOccurrences(s string) []occurrence {
	var occs []occurrence

	for pos := 0; pos < len(s); {
		c := s[pos]
		if c == '\\' && pos+1 < len(s) && util.IsPunct(s[pos+1]) {
			pos += 2
			continue
		}
		if c != '*' && c != '_' && c != '~' {
			pos++
			continue
		}

		runEnd := pos + countRun(s, pos, c)
		occs = appendRun(occs, s, c, pos, runEnd)
		pos = runEnd
	}

	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].start < occs[j].start
	})
	return occs
}

func appendRun(occs []occurrence, s string, c byte, start, end int) []occurrence {
	prev, _ := utf8.DecodeLastRuneInString(s[:start])
	if start == 0 {
		prev = ' '
	}
	next, _ := utf8.DecodeRuneInString(s[end:])
	if end == len(s) {
		next = ' '
	}

	canOpen := !unicode.IsSpace(next)
	canClose := !unicode.IsSpace(prev)
	length := end - start

	var reserved [2][2]int
	nReserved := 0

	if length >= 2 {
		sym := symbolIndex(c, 2)
		switch {
		case length == 2 && (canOpen || canClose):
			occs = append(occs, occurrence{start: start, sym: sym, canOpen: canOpen, canClose: canClose})
			reserved[0] = [2]int{start, end}
			nReserved = 1
		default:
			if canOpen {
				occs = append(occs, occurrence{start: start, sym: sym, canOpen: true})
				reserved[nReserved] = [2]int{start, start + 2}
				nReserved++
			}
			if canClose {
				occs = append(occs, occurrence{start: end - 2, sym: sym, canClose: true})
				reserved[nReserved] = [2]int{end - 2, end}
				nReserved++
			}
		}
	}

	sym := symbolIndex(c, 1)
	if sym < 0 {
		return occs
	}

	open1, close1 := canOpen, canClose
	if c == '_' {
		open1 = open1 && !isWordRune(prev)
		close1 = close1 && !isWordRune(next)
	}
	if !open1 && !close1 {
		return occs
	}

	for pos := start; pos < end; pos++ {
		taken := false
		for i := range nReserved {
			if pos >= reserved[i][0] && pos < reserved[i][1] {
				taken = true
				break
			}
		}
		if !taken {
			occs = append(occs, occurrence{start: pos, sym: sym, canOpen: open1, canClose: close1})
		}
	}
	return occs
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
