// Package engine is the parse entry point. An Engine owns a grammar
// configuration, an optional fingerprint cache and an asset resolver, and
// contains every parse failure inside the returned tree.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/config"
	"github.com/yaklabco/mdview/pkg/fpcache"
	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// ErrClosed is returned by every parse after Close.
var ErrClosed = errors.New("engine closed")

// ParserFunc builds a document tree from text.
type ParserFunc func(text string, status grammar.Status) *mdast.Node

// Options configures an Engine.
type Options struct {
	// Status holds the grammar flags applied to every parse.
	Status grammar.Status

	// Cache stores parsed trees by fingerprint. Nil disables caching.
	// The engine closes it on Close.
	Cache *fpcache.Cache

	// TTL overrides the cache TTL for trees stored by this engine.
	TTL time.Duration

	// Resolver loads assets referenced by documents. Nil means assets
	// cannot be opened.
	Resolver AssetResolver

	// Parser replaces grammar.Parse. Used by tests.
	Parser ParserFunc

	// Logger receives debug output. When nil, each call logs to the
	// logger carried by its context.
	Logger *log.Logger
}

// OptionsFromConfig builds engine options, including a fresh cache, from a
// resolved configuration. logger goes to the cache; the engine itself logs
// to the logger carried by each call's context.
func OptionsFromConfig(cfg *config.Config, logger *log.Logger) Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	status := grammar.Status{
		AlignmentDirectives: cfg.Alignment(),
		MaxNestDepth:        cfg.MaxNestDepth,
		ResourceRoot:        cfg.ResourceRoot,
		DetectLanguage:      cfg.Detection(),
	}

	opts := Options{
		Status: status,
		Cache: fpcache.New(fpcache.Options{
			MaxEntries:     cfg.MaxCacheEntries,
			MaxMemoryBytes: cfg.MaxCacheMemoryBytes,
			MemoryCeiling:  cfg.CacheMemoryCeilingBytes,
			TTL:            cfg.CacheEntryTTL,
			SweepInterval:  cfg.CacheSweepInterval,
			Logger:         logger,
		}),
	}
	if cfg.ResourceRoot != "" {
		opts.Resolver = FileResolver{Root: cfg.ResourceRoot}
	}
	return opts
}

// Engine parses documents. It is safe for concurrent use.
type Engine struct {
	opts Options

	flight     singleflight.Group
	generation atomic.Uint64
	closed     atomic.Bool
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Parser == nil {
		opts.Parser = grammar.Parse
	}
	return &Engine{opts: opts}
}

// Status returns the grammar flags of the engine.
func (e *Engine) Status() grammar.Status {
	return e.opts.Status
}

// Parse builds the tree for text without consulting the cache.
//
// A parse that panics yields a document holding a single error node,
// together with a *ParseFailure describing the panic. The document is
// usable either way.
func (e *Engine) Parse(ctx context.Context, text string) (*mdast.Node, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return e.parse(ctx, text)
}

// ParseCached returns the cached tree for text, parsing and storing it on
// a miss. Concurrent calls for the same text share one parse and receive
// the same tree. Failed parses are never cached.
func (e *Engine) ParseCached(ctx context.Context, text string) (*mdast.Node, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	cache := e.opts.Cache
	if cache == nil {
		return e.parse(ctx, text)
	}

	if tree, ok := cache.Lookup(text); ok {
		return tree, nil
	}

	key := fpcache.Fingerprint(text)
	ch := e.flight.DoChan(key.String(), func() (any, error) {
		gen := e.generation.Load()
		tree, err := e.parse(ctx, text)
		if err == nil && gen == e.generation.Load() {
			cache.Put(key, tree, text, e.opts.TTL)
			e.logger(ctx).Debug("cached document",
				logging.FieldKey, key.Short(),
				logging.FieldBytes, humanize.IBytes(uint64(fpcache.EstimateSize(text))))
		}
		return tree, err
	})

	select {
	case res := <-ch:
		tree, _ := res.Val.(*mdast.Node)
		return tree, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("parse: %w", ctx.Err())
	}
}

func (e *Engine) logger(ctx context.Context) *log.Logger {
	return logging.Resolve(ctx, e.opts.Logger)
}

func (e *Engine) parse(ctx context.Context, text string) (tree *mdast.Node, err error) {
	start := time.Now()
	logger := e.logger(ctx)

	defer func() {
		if r := recover(); r != nil {
			failure := &ParseFailure{Cause: r, Stack: debug.Stack()}
			logger.Error("document parse failed", logging.FieldError, failure)
			tree = failureDocument(text, failure)
			err = failure
		}
	}()

	tree = e.opts.Parser(text, e.opts.Status)
	if tree == nil {
		tree = mdast.NewDocument()
	}

	if logger.GetLevel() <= log.DebugLevel {
		logger.Debug("parsed document",
			logging.FieldBytes, humanize.IBytes(uint64(len(text))),
			logging.FieldBlocks, tree.ChildCount(),
			logging.FieldDepth, mdast.BlockDepth(tree),
			logging.FieldElapsed, time.Since(start))
	}
	return tree, nil
}

// Invalidate drops every cached tree. Parses in flight when Invalidate is
// called still complete but their trees are not stored.
func (e *Engine) Invalidate() {
	e.generation.Add(1)
	if e.opts.Cache != nil {
		e.opts.Cache.Clear()
	}
}

// Stats returns the cache statistics. The zero value is returned when
// caching is disabled.
func (e *Engine) Stats() fpcache.Stats {
	if e.opts.Cache == nil {
		return fpcache.Stats{}
	}
	return e.opts.Cache.Stats()
}

// Close releases the cache. Subsequent parses return ErrClosed.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	if e.opts.Cache != nil {
		e.opts.Cache.Close()
	}
	return nil
}
