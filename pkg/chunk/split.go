package chunk

import "strings"

// SafeSplit returns the number of leading lines that may be parsed on their
// own. The result equals target whenever line target-1 lies outside a fenced
// code block. When target falls inside a fence, the scan continues to the
// closing marker and returns the line count just past it, which may exceed
// target. An unclosed fence yields len(lines).
//
// Targets outside [0, len(lines)] are clamped.
func SafeSplit(lines []string, target int) int {
	if target <= 0 {
		return 0
	}
	if target >= len(lines) {
		return len(lines)
	}

	var (
		open   Fence
		inside bool
	)

	for idx, line := range lines {
		if idx == target && !inside {
			return target
		}

		switch {
		case inside:
			if open.Closes(line) {
				inside = false
				if idx >= target {
					return idx + 1
				}
			}
		default:
			if fence, ok := DetectFence(line); ok {
				open = fence
				inside = true
			}
		}
	}

	return len(lines)
}

// SplitLines splits text into lines on "\n". A trailing newline does not
// produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Prefix returns the chunk-safe prefix of text covering at least target
// lines, together with the number of lines it holds.
func Prefix(text string, target int) (string, int) {
	lines := SplitLines(text)
	count := SafeSplit(lines, target)
	if count >= len(lines) {
		return text, len(lines)
	}

	end := 0
	for i := range count {
		end += len(lines[i]) + 1
	}
	return text[:end], count
}

// FenceSpans returns the [start, end) line ranges covered by fenced code
// blocks, including their marker lines. An unclosed fence extends to the end.
func FenceSpans(lines []string) [][2]int {
	var (
		spans  [][2]int
		open   Fence
		start  int
		inside bool
	)

	for idx, line := range lines {
		if inside {
			if open.Closes(line) {
				spans = append(spans, [2]int{start, idx + 1})
				inside = false
			}
			continue
		}
		if fence, ok := DetectFence(line); ok {
			open, start, inside = fence, idx, true
		}
	}

	if inside {
		spans = append(spans, [2]int{start, len(lines)})
	}
	return spans
}
