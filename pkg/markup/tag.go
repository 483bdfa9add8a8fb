package markup

import "strings"

//nolint:gochecknoglobals // Read-only lookup table.
var voidElements = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "meta": true,
	"link": true, "area": true, "base": true, "col": true, "embed": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"center": true, "details": true, "dialog": true, "dd": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "ul": true, "video": true, "audio": true, "iframe": true,
	"canvas": true, "picture": true, "svg": true, "script": true, "style": true,
}

// IsVoid reports whether name is a self-closing element.
func IsVoid(name string) bool {
	return voidElements[strings.ToLower(name)]
}

// IsBlockLevel reports whether name is a block-level element that may span
// blank lines and stand alone as a raw block.
func IsBlockLevel(name string) bool {
	return blockElements[strings.ToLower(name)]
}

// Attr is a single tag attribute. Value is raw: quotes are stripped but
// entities are left unresolved.
type Attr struct {
	Name  string
	Value string
}

// Tag is a scanned open, close or self-closing tag.
type Tag struct {
	// Name is lower-cased.
	Name        string
	Attrs       []Attr
	Closing     bool
	SelfClosing bool
}

// Attr returns the value of the named attribute, matched case-insensitively.
func (t Tag) Attr(name string) (string, bool) {
	for _, attr := range t.Attrs {
		if strings.EqualFold(attr.Name, name) {
			return attr.Value, true
		}
	}
	return "", false
}

// ScanTag tries to read a tag starting at text[pos], which must be '<'.
// It returns the tag and the offset just past its closing '>'. Tags never
// span a blank line.
func ScanTag(text string, pos int) (Tag, int, bool) {
	if pos >= len(text) || text[pos] != '<' {
		return Tag{}, pos, false
	}

	i := pos + 1
	var tag Tag
	if i < len(text) && text[i] == '/' {
		tag.Closing = true
		i++
	}

	if i >= len(text) || !isASCIILetter(text[i]) {
		return Tag{}, pos, false
	}
	nameStart := i
	for i < len(text) && isNameChar(text[i]) {
		i++
	}
	tag.Name = strings.ToLower(text[nameStart:i])

	if i >= len(text) {
		return Tag{}, pos, false
	}
	if !isSpace(text[i]) && text[i] != '>' && text[i] != '/' {
		return Tag{}, pos, false
	}

	for {
		var blank bool
		i, blank = skipSpace(text, i)
		if blank || i >= len(text) {
			return Tag{}, pos, false
		}

		switch {
		case text[i] == '>':
			if voidElements[tag.Name] {
				tag.SelfClosing = true
			}
			return tag, i + 1, true
		case text[i] == '/' && i+1 < len(text) && text[i+1] == '>':
			if tag.Closing {
				return Tag{}, pos, false
			}
			tag.SelfClosing = true
			return tag, i + 2, true
		case tag.Closing:
			return Tag{}, pos, false
		}

		attr, next, ok := scanAttr(text, i)
		if !ok {
			return Tag{}, pos, false
		}
		tag.Attrs = append(tag.Attrs, attr)
		i = next
	}
}

func scanAttr(text string, pos int) (Attr, int, bool) {
	i := pos
	for i < len(text) && !isSpace(text[i]) && !strings.ContainsRune("=>/<\"'`", rune(text[i])) {
		i++
	}
	if i == pos {
		return Attr{}, pos, false
	}
	attr := Attr{Name: strings.ToLower(text[pos:i])}

	afterName, blank := skipSpace(text, i)
	if blank || afterName >= len(text) || text[afterName] != '=' {
		return attr, i, true
	}

	i, blank = skipSpace(text, afterName+1)
	if blank || i >= len(text) {
		return Attr{}, pos, false
	}

	if quote := text[i]; quote == '"' || quote == '\'' {
		end := strings.IndexByte(text[i+1:], quote)
		if end < 0 {
			return Attr{}, pos, false
		}
		value := text[i+1 : i+1+end]
		if strings.Contains(value, "\n\n") {
			return Attr{}, pos, false
		}
		attr.Value = value
		return attr, i + end + 2, true
	}

	start := i
	for i < len(text) && !isSpace(text[i]) && text[i] != '>' {
		i++
	}
	if i == start {
		return Attr{}, pos, false
	}
	attr.Value = text[start:i]
	return attr, i, true
}

// skipSpace advances over whitespace and reports whether a blank line was crossed.
func skipSpace(text string, pos int) (int, bool) {
	newlines := 0
	for pos < len(text) && isSpace(text[pos]) {
		if text[pos] == '\n' {
			newlines++
			if newlines > 1 {
				return pos, true
			}
		}
		pos++
	}
	return pos, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isASCIILetter(c) || (c >= '0' && c <= '9') || c == '-'
}
