package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridtree/pkg/cache"
	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/geom"
	treeio "github.com/matzehuels/gridtree/pkg/io"
	"github.com/matzehuels/gridtree/pkg/observability"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → encode → write pipeline with caching.
// The output file, if configured, is replaced atomically and only after
// both stages succeed.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	markers, err := opts.LoadMarkers()
	if err != nil {
		return nil, err
	}
	result := &Result{Format: opts.Format, Output: opts.Output}
	result.Stats.MarkerCount = len(markers)

	// Stage 1: Build
	buildStart := time.Now()
	t, treeHit, err := r.BuildWithCacheInfo(ctx, markers, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Tree = t
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = t.Len()
	result.Stats.LeafCount = len(t.Leaves())
	result.Stats.Depth = t.Depth()
	result.CacheInfo.TreeHit = treeHit

	r.Logger.Info("built tree",
		"markers", len(markers),
		"nodes", result.Stats.NodeCount,
		"leaves", result.Stats.LeafCount,
		"depth", result.Stats.Depth,
		"cached", treeHit,
		"duration", result.Stats.BuildTime)

	if opts.Dump != nil {
		if err := t.WriteDump(opts.Dump); err != nil {
			return nil, fmt.Errorf("dump: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Encode
	encodeStart := time.Now()
	artifact, hash, artifactHit, err := r.encode(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Artifact = artifact
	result.TreeHash = hash
	result.Stats.Bytes = len(artifact)
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.CacheInfo.ArtifactHit = artifactHit

	r.Logger.Info("encoded tree",
		"format", opts.Format,
		"bytes", len(artifact),
		"cached", artifactHit,
		"duration", result.Stats.EncodeTime)

	// Stage 3: Write
	if opts.Output != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := chunk.WriteFileAtomic(opts.Output, artifact, 0o644); err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
		r.Logger.Debug("wrote output", "path", opts.Output)
	}

	return result, nil
}

// ExecuteAll runs independent pipelines concurrently, at most limit at a
// time (limit <= 0 means no limit). Results are returned in job order. The
// first failure cancels the remaining jobs and is returned.
func (r *Runner) ExecuteAll(ctx context.Context, jobs []Options, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, opts := range jobs {
		g.Go(func() error {
			res, err := r.Execute(ctx, opts)
			if err != nil {
				if name := jobName(opts); name != "" {
					return fmt.Errorf("%s: %w", name, err)
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func jobName(opts Options) string {
	if opts.MarkersFile != "" {
		return opts.MarkersFile
	}
	return opts.Output
}

// BuildWithCacheInfo builds the tree for markers with caching and returns
// cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, markers []geom.Vec3, opts Options) (*tree.Tree, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	if err := geom.CheckFinite(markers); err != nil {
		return nil, false, err
	}
	markersHash, err := cache.HashJSON(markers)
	if err != nil {
		return nil, false, fmt.Errorf("hash markers: %w", err)
	}
	cacheKey := r.Keyer.TreeKey(markersHash, opts.GridUnit)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if t, err := unmarshalTree(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "tree")
				return t, true, nil
			}
			// If decoding fails, fall through to rebuild
		}
		observability.Cache().OnCacheMiss(ctx, "tree")
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(markers), opts.GridUnit)
	start := time.Now()
	t, err := tree.Build(markers, opts.GridUnit, tree.WithLogger(opts.Logger))
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnBuildComplete(ctx, t.Len(), len(t.Leaves()), time.Since(start), nil)

	if data, err := marshalTree(t); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLTree); err == nil {
			observability.Cache().OnCacheSet(ctx, "tree", len(data))
		} else {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		}
	}

	return t, false, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, markers []geom.Vec3, opts Options) (*tree.Tree, error) {
	t, _, err := r.BuildWithCacheInfo(ctx, markers, opts)
	return t, err
}

// EncodeWithCacheInfo encodes t with the configured codec, with caching,
// and returns cache hit info. Flattening checks run before anything is
// encoded or cached.
func (r *Runner) EncodeWithCacheInfo(ctx context.Context, t *tree.Tree, opts Options) ([]byte, bool, error) {
	data, _, hit, err := r.encode(ctx, t, opts)
	return data, hit, err
}

// Encode is a convenience wrapper that calls EncodeWithCacheInfo and discards the cache hit info.
func (r *Runner) Encode(ctx context.Context, t *tree.Tree, opts Options) ([]byte, error) {
	data, _, err := r.EncodeWithCacheInfo(ctx, t, opts)
	return data, err
}

func (r *Runner) encode(ctx context.Context, t *tree.Tree, opts Options) ([]byte, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}
	codec, err := opts.Codec()
	if err != nil {
		return nil, "", false, err
	}

	// The tree hash doubles as the flattening check.
	treeData, err := marshalTree(t)
	if err != nil {
		return nil, "", false, err
	}
	treeHash := cache.Hash(treeData)
	cacheKey := r.Keyer.ArtifactKey(treeHash, codec.Name())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, treeHash, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnEncodeStart(ctx, codec.Name(), t.Len())
	start := time.Now()
	data, err := treeio.EncodeTree(t, codec)
	hooks.OnEncodeComplete(ctx, codec.Name(), len(data), time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	} else {
		r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
	}

	return data, treeHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// OpenDump creates the file named by opts.DumpPath and sets it as the dump
// sink. The caller closes the returned file. It returns nil when no dump
// path is configured or a sink is already set.
func OpenDump(opts *Options) (*os.File, error) {
	if opts.DumpPath == "" || opts.Dump != nil {
		return nil, nil
	}
	f, err := os.Create(opts.DumpPath)
	if err != nil {
		return nil, fmt.Errorf("open dump %s: %w", opts.DumpPath, err)
	}
	opts.Dump = f
	return f, nil
}
