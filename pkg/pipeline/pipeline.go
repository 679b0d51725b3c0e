// Package pipeline runs the marker -> tree -> chunk file workflow for the
// CLI and for batch jobs.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Build: partition the marker set into a grid-aligned tree
//  2. Encode: flatten the tree and encode it with a chunk codec
//
// Both stages are cached. A tree is cached as its flattened records and
// rebuilt with [tree.Unflatten] on a hit, so the cache never returns a tree
// that fails the encoding checks. Encoded artifacts are cached per format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    MarkersFile: "markers.json",
//	    GridUnit:    20,
//	    Format:      "p3d",
//	    Output:      "world.p3d",
//	})
//
// Batch several exports with [Runner.ExecuteAll]; they run concurrently and
// the first failure cancels the rest.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
	treeio "github.com/matzehuels/gridtree/pkg/io"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// DefaultFormat is the codec used when none is configured.
const DefaultFormat = "p3d"

// Options contains all configuration for one pipeline run. Fields with
// tags can come from a config file (see [LoadConfig]).
type Options struct {
	// Input
	MarkersFile string      `json:"markers_file,omitempty" toml:"markers_file" yaml:"markers_file,omitempty"`
	Markers     []geom.Vec3 `json:"markers,omitempty" toml:"markers" yaml:"markers,omitempty"`

	// Build
	GridUnit float64 `json:"grid_unit,omitempty" toml:"grid_unit" yaml:"grid_unit,omitempty"`

	// Output
	Format   string `json:"format,omitempty" toml:"format" yaml:"format,omitempty"`
	Output   string `json:"output,omitempty" toml:"output" yaml:"output,omitempty"`
	DumpPath string `json:"dump,omitempty" toml:"dump" yaml:"dump,omitempty"`
	Refresh  bool   `json:"refresh,omitempty" toml:"refresh" yaml:"refresh,omitempty"`

	// Runtime options (not serialized)

	// Dump receives the text listing of the built tree when non-nil.
	Dump   io.Writer   `json:"-" toml:"-" yaml:"-"`
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the built (or cache-restored) partition.
	Tree *tree.Tree

	// TreeHash is the content hash of the flattened tree.
	TreeHash string

	// Format is the codec name the artifact was encoded with.
	Format string

	// Artifact is the encoded chunk file.
	Artifact []byte

	// Output is the path the artifact was written to, if any.
	Output string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MarkerCount int
	NodeCount   int
	LeafCount   int
	Depth       int
	Bytes       int
	BuildTime   time.Duration
	EncodeTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit     bool // Whether the tree came from cache
	ArtifactHit bool // Whether the encoded artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
//
// A zero GridUnit means "unset" and becomes [tree.DefaultGridUnit]; a
// negative or non-finite one fails with INVALID_ARGUMENT.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.GridUnit == 0 {
		o.GridUnit = tree.DefaultGridUnit
	}
	if err := errors.ValidateGridUnit(o.GridUnit); err != nil {
		return err
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if _, err := chunk.Lookup(o.Format); err != nil {
		return err
	}
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Codec returns the codec named by Format.
func (o *Options) Codec() (chunk.Codec, error) {
	format := o.Format
	if format == "" {
		format = DefaultFormat
	}
	return chunk.Lookup(format)
}

// LoadMarkers returns the inline markers if any, otherwise the markers read
// from MarkersFile. It fails with EMPTY_INPUT when neither yields a marker.
func (o *Options) LoadMarkers() ([]geom.Vec3, error) {
	markers := o.Markers
	if len(markers) == 0 && o.MarkersFile != "" {
		var err error
		if markers, err = treeio.ImportMarkers(o.MarkersFile); err != nil {
			return nil, err
		}
	}
	if len(markers) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no markers given")
	}
	return markers, nil
}
