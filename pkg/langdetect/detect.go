// Package langdetect names the language of code blocks. Detection uses
// go-enry: shebangs first, then a few unambiguous content patterns, then the
// enry classifier restricted to common candidates.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const (
	langBash       = "bash"
	langDockerfile = "dockerfile"
	langGo         = "go"
	langHTML       = "html"
	langJavaScript = "javascript"
	langJSON       = "json"
	langPython     = "python"
	langRust       = "rust"
	langSQL        = "sql"
	langYAML       = "yaml"
)

// minYAMLKeys is how many "key: value" lines make a block look like YAML.
const minYAMLKeys = 2

//nolint:gochecknoglobals // Read-only classifier candidates.
var candidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Dockerfile",
}

// DetectBlock returns the language of a code block's content. It reports
// false when no language can be named with confidence.
func DetectBlock(content string) (string, bool) {
	raw := []byte(content)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}

	if lang, safe := enry.GetLanguageByShebang(raw); safe {
		return Canonical(lang), true
	}

	for _, detect := range patterns() {
		if lang := detect(content, trimmed); lang != "" {
			return lang, true
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(raw, candidates); safe && lang != "" {
		return Canonical(lang), true
	}

	return "", false
}

// Canonical maps a language name or alias, such as a fence info word, to
// the lower-case name used in code block attributes. Unknown names are
// lower-cased and returned unchanged.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	lang, ok := enry.GetLanguageByAlias(name)
	if !ok {
		return strings.ToLower(name)
	}
	if lang == "Shell" {
		return langBash
	}
	return strings.ToLower(lang)
}

type pattern func(content string, trimmed []byte) string

// patterns returns the content checks in order of specificity.
func patterns() []pattern {
	return []pattern{
		detectGo, detectPython, detectHTML, detectJSON, detectDockerfile,
		detectSQL, detectRust, detectJavaScript, detectYAML,
	}
}

func detectGo(_ string, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("package ")) {
		return langGo
	}
	return ""
}

func detectPython(content string, _ []byte) string {
	switch {
	case strings.Contains(content, "def ") && strings.Contains(content, "):"):
		return langPython
	case strings.Contains(content, "__name__"), strings.Contains(content, "__main__"):
		return langPython
	case strings.Contains(content, "import ") && !strings.Contains(content, "import ("):
		if strings.Contains(content, "from ") || strings.HasPrefix(strings.TrimSpace(content), "import ") {
			return langPython
		}
	}
	return ""
}

func detectHTML(_ string, trimmed []byte) string {
	lower := bytes.ToLower(trimmed)
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return langHTML
		}
	}
	return ""
}

func detectJSON(_ string, trimmed []byte) string {
	if (trimmed[0] == '{' || trimmed[0] == '[') && bytes.IndexByte(trimmed, '"') >= 0 {
		return langJSON
	}
	return ""
}

func detectDockerfile(content string, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("FROM ")) ||
		(strings.Contains(content, "\nFROM ") && strings.Contains(content, "\nRUN ")) ||
		(strings.Contains(content, "WORKDIR ") && strings.Contains(content, "COPY ")) {
		return langDockerfile
	}
	return ""
}

func detectSQL(content string, _ []byte) string {
	upper := strings.ToUpper(strings.TrimSpace(content))
	for _, keyword := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, keyword) {
			return langSQL
		}
	}
	return ""
}

func detectRust(content string, _ []byte) string {
	if strings.Contains(content, "fn main()") ||
		strings.Contains(content, "println!") ||
		strings.Contains(content, "let mut ") {
		return langRust
	}
	return ""
}

func detectJavaScript(content string, _ []byte) string {
	for _, marker := range []string{"=>", "const ", "let ", "console.log"} {
		if strings.Contains(content, marker) {
			return langJavaScript
		}
	}
	return ""
}

// detectYAML counts "key: value" lines and root-level list items.
func detectYAML(content string, _ []byte) string {
	keys := 0
	for _, ln := range strings.Split(content, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		if strings.Contains(ln, ": ") && !strings.ContainsAny(ln, "({") && !strings.HasPrefix(ln, `"`) {
			keys++
		}
		if strings.HasPrefix(ln, "- ") {
			keys++
		}
	}
	if keys >= minYAMLKeys {
		return langYAML
	}
	return ""
}
