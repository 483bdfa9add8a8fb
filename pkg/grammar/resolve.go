package grammar

import (
	"net/url"
	"path/filepath"
	"strings"
)

func resolverFor(root string) func(string) (string, bool) {
	if root == "" {
		return nil
	}
	return func(uri string) (string, bool) {
		return ResolveRelative(root, uri)
	}
}

// ResolveRelative joins a relative reference with root. URIs with a scheme,
// absolute paths and fragment-only references are not resolved. A root that
// is itself a URL is resolved as a base URL; otherwise the result is a file
// path with query and fragment removed.
func ResolveRelative(root, uri string) (string, bool) {
	if root == "" || uri == "" || strings.HasPrefix(uri, "#") || strings.HasPrefix(uri, "/") {
		return "", false
	}
	ref, err := url.Parse(uri)
	if err != nil || ref.Scheme != "" || ref.Host != "" {
		return "", false
	}

	if base, err := url.Parse(root); err == nil && base.Scheme != "" && base.Host != "" {
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		return base.ResolveReference(ref).String(), true
	}

	if ref.Path == "" {
		return "", false
	}
	return filepath.Join(root, filepath.FromSlash(ref.Path)), true
}
