package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
)

// ErrUnresolvable is returned for asset references a resolver refuses.
var ErrUnresolvable = errors.New("asset cannot be resolved")

// AssetResolver opens the byte stream behind an asset reference such as an
// image URI. The engine never interprets the content.
type AssetResolver interface {
	Resolve(ctx context.Context, uri string) (io.ReadCloser, error)
}

// ResolverFunc adapts a function to AssetResolver.
type ResolverFunc func(ctx context.Context, uri string) (io.ReadCloser, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, uri string) (io.ReadCloser, error) {
	return f(ctx, uri)
}

// FileResolver opens relative references below Root. References with a
// scheme, a host or an absolute path, and references that leave Root, are
// refused.
type FileResolver struct {
	Root string
}

// Resolve opens uri relative to Root.
func (r FileResolver) Resolve(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve %q: %w", uri, err)
	}
	if r.Root == "" {
		return nil, fmt.Errorf("resolve %q: no resource root: %w", uri, ErrUnresolvable)
	}

	ref, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", uri, ErrUnresolvable)
	}
	if ref.Scheme != "" || ref.Host != "" || ref.Path == "" || strings.HasPrefix(ref.Path, "/") {
		return nil, fmt.Errorf("resolve %q: not a relative reference: %w", uri, ErrUnresolvable)
	}

	root, err := os.OpenRoot(r.Root)
	if err != nil {
		return nil, fmt.Errorf("open resource root: %w", err)
	}
	defer root.Close()

	file, err := root.Open(path.Clean(ref.Path))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", uri, err)
	}
	return file, nil
}

// OpenAsset opens an asset through the configured resolver.
func (e *Engine) OpenAsset(ctx context.Context, uri string) (io.ReadCloser, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if e.opts.Resolver == nil {
		return nil, fmt.Errorf("resolve %q: no resolver: %w", uri, ErrUnresolvable)
	}
	return e.opts.Resolver.Resolve(ctx, uri)
}
