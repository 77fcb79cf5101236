// Package pipeline drives a full service compilation: reading documents,
// consulting the snapshot cache, resolving, building and assembling the
// package, and reporting diagnostics and metrics.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shapec-dev/shapec/internal/compiler/assembler"
	"github.com/shapec-dev/shapec/internal/compiler/builder"
	"github.com/shapec-dev/shapec/internal/compiler/cache"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/overrides"
	"github.com/shapec-dev/shapec/internal/compiler/resolver"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
	"github.com/shapec-dev/shapec/internal/logging"
	"github.com/shapec-dev/shapec/internal/metrics"
)

// Options configures a Compiler. Zero values are usable.
type Options struct {
	// Overrides defaults to the built-in tables.
	Overrides *overrides.Registry
	// ReservedWords extends assembler.DefaultReservedWords.
	ReservedWords []string
	// Fallback supplies signatures for actions without an operation.
	// Compilations with a fallback source bypass the cache.
	Fallback builder.FallbackSource

	Cache    cache.Cache
	CacheTTL time.Duration

	Metrics *metrics.Collector
	Logger  *zap.Logger

	// SDKVersion is part of the cache key.
	SDKVersion string
	// Workers bounds CompileAll; values below one mean one.
	Workers int
}

// Result is the outcome of compiling one service.
type Result struct {
	Service string
	// Package is nil when the snapshot came from the cache or the
	// compilation failed.
	Package     *assembler.Package
	Snapshot    *snapshot.Snapshot
	Diagnostics errors.ErrorList
	Hash        string
	CacheHit    bool
	Duration    time.Duration
	Err         error
}

// Warnings counts the warnings of the result, whether compiled or cached.
func (r *Result) Warnings() int {
	if r.Snapshot != nil {
		n := 0
		for _, d := range r.Snapshot.Diagnostics {
			if d.Severity == string(errors.SeverityWarning) {
				n++
			}
		}
		return n
	}
	return len(r.Diagnostics.BySeverity(errors.SeverityWarning))
}

// Compiler compiles services with shared options. It is safe for concurrent
// use; every compilation gets its own resolver, registry and diagnostics.
type Compiler struct {
	opts Options
}

// New creates a compiler.
func New(opts Options) *Compiler {
	if opts.Overrides == nil {
		opts.Overrides = overrides.Defaults()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Compiler{opts: opts}
}

// Options returns the effective options.
func (c *Compiler) Options() Options { return c.opts }

// CompileModel compiles an already parsed model. Diagnostics are returned
// even when compilation fails.
func (c *Compiler) CompileModel(model *schema.ServiceModel) (*assembler.Package, *errors.Diagnostics, error) {
	diags := errors.NewDiagnostics(model.Name)

	res := resolver.New(model, c.opts.Overrides, diags,
		resolver.WithReservedWords(assembler.ReservedWords(c.opts.ReservedWords...)))

	var bopts []builder.Option
	if c.opts.Fallback != nil {
		bopts = append(bopts, builder.WithFallback(c.opts.Fallback))
	}
	b := builder.New(res, bopts...)

	pkg, err := assembler.New(diags, assembler.WithReservedWords(c.opts.ReservedWords)).Build(b)
	return pkg, diags, err
}

// Key returns the cache key of a service's documents under the compiler's
// options.
func (c *Compiler) Key(service string, docs *schema.Documents) string {
	fingerprint := c.opts.Overrides.Fingerprint()
	if len(c.opts.ReservedWords) > 0 {
		fingerprint += "|reserved:" + strings.Join(c.opts.ReservedWords, ",")
	}
	return cache.Key(service, docs, fingerprint, c.opts.SDKVersion)
}

// Compile compiles the service in dir. Failures are reported in the result.
func (c *Compiler) Compile(ctx context.Context, dir schema.ServiceDir) *Result {
	start := time.Now()
	result := &Result{Service: dir.Name}
	log := c.opts.Logger.With(zap.String("service", dir.Name))

	defer func() {
		result.Duration = time.Since(start)
		c.observe(result)
	}()

	docs, err := schema.ReadDocuments(dir.Path)
	if err != nil {
		result.Err = err
		log.Error("failed to read service documents", zap.Error(err))
		return result
	}
	result.Hash = c.Key(dir.Name, docs)

	if snap, ok := c.cached(ctx, result.Hash, log); ok {
		result.Snapshot = snap
		result.CacheHit = true
		log.Debug("snapshot served from cache", zap.String("hash", result.Hash))
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	model, err := schema.Parse(dir.Name, docs)
	if err != nil {
		result.Err = err
		log.Error("failed to parse service documents", zap.Error(err))
		return result
	}

	pkg, diags, err := c.CompileModel(model)
	result.Diagnostics = diags.Items()
	logging.Diagnostics(c.opts.Logger, result.Diagnostics)
	if err != nil {
		result.Err = err
		return result
	}

	result.Package = pkg
	result.Snapshot = snapshot.FromPackage(pkg, result.Diagnostics)
	result.Snapshot.SourceHash = result.Hash
	c.store(ctx, result.Hash, result.Snapshot, log)

	log.Info("service compiled",
		zap.Int("records", len(pkg.Records)),
		zap.Int("literals", len(pkg.Literals)),
		zap.Int("methods", pkg.MethodCount()),
		zap.Int("renames", pkg.Renames))
	return result
}

// CompileService finds name under dataDir and compiles it.
func (c *Compiler) CompileService(ctx context.Context, dataDir, name string) (*Result, error) {
	dir, err := schema.Find(dataDir, name)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, dir), nil
}

func (c *Compiler) cacheable() bool {
	return c.opts.Cache != nil && c.opts.Fallback == nil
}

func (c *Compiler) cached(ctx context.Context, key string, log *zap.Logger) (*snapshot.Snapshot, bool) {
	if !c.cacheable() {
		return nil, false
	}
	data, err := c.opts.Cache.Get(ctx, key)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			log.Warn("cache lookup failed", zap.Error(err))
		}
		return nil, false
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		log.Warn("discarding unreadable cached snapshot", zap.Error(err))
		_ = c.opts.Cache.Delete(ctx, key)
		return nil, false
	}
	return snap, true
}

func (c *Compiler) store(ctx context.Context, key string, snap *snapshot.Snapshot, log *zap.Logger) {
	if !c.cacheable() {
		return
	}
	data, err := snapshot.Serialize(snap)
	if err == nil {
		data, err = snapshot.Compress(data)
	}
	if err == nil {
		err = c.opts.Cache.Set(ctx, key, data, c.opts.CacheTTL)
	}
	if err != nil {
		log.Warn("failed to cache snapshot", zap.Error(err))
	}
}

func (c *Compiler) observe(r *Result) {
	if c.opts.Metrics == nil {
		return
	}
	switch {
	case r.Err != nil:
		c.opts.Metrics.ObserveCompile(metrics.ResultFailure, 0, 0, r.Duration)
	case r.CacheHit:
		c.opts.Metrics.ObserveCompile(metrics.ResultCached, len(r.Snapshot.Records), r.Snapshot.Renames, r.Duration)
	default:
		c.opts.Metrics.ObserveCompile(metrics.ResultSuccess, len(r.Snapshot.Records), r.Snapshot.Renames, r.Duration)
	}
}

// FatalDiagnostics returns the compiler errors carried by err, if any.
func FatalDiagnostics(err error) (errors.ErrorList, bool) {
	var list errors.ErrorList
	if stderrors.As(err, &list) {
		return list, true
	}
	return nil, false
}

// Summary describes a result in one line.
func (r *Result) Summary() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: failed: %v", r.Service, r.Err)
	case r.CacheHit:
		return fmt.Sprintf("%s: %d records, %d literals (cached)", r.Service, len(r.Snapshot.Records), len(r.Snapshot.Literals))
	default:
		return fmt.Sprintf("%s: %d records, %d literals, %d methods", r.Service, len(r.Snapshot.Records), len(r.Snapshot.Literals), r.Snapshot.MethodCount())
	}
}
