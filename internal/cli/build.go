package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/metrics"
	"github.com/matzehuels/gridtree/pkg/observability"
	"github.com/matzehuels/gridtree/pkg/pipeline"
)

// buildFlags holds the command-line flags for the build command.
type buildFlags struct {
	output      string
	gridUnit    float64
	format      string
	dump        string
	config      string
	refresh     bool
	jobs        int
	metricsFile string
	runnerOpts
}

// buildCommand creates the build command that exports marker files as chunk files.
func (c *CLI) buildCommand() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build [markers.json...]",
		Short: "Build a grid partition from markers and export it",
		Long: `Build a grid-aligned partition tree from a marker file and export it
as a chunk file.

Markers are read from a JSON array of [x, y, z] points or {"x":..,"y":..,"z":..}
objects, optionally wrapped as {"markers": [...]}. Without --output the result
is written next to the input with the codec's extension.

With several marker files the builds run concurrently and --output names a
directory that receives one file per input.

Trees and encoded files are cached locally; --cache-url switches to Redis.`,
		Example: `  # Build with defaults (grid unit 20, p3d)
  gridtree build markers.json

  # XML export with a coarser grid and a debug listing
  gridtree build markers.json --grid 40 --format xml --dump tree.txt

  # Batch build into a directory and record metrics
  gridtree build a.json b.json c.json -o out/ --metrics-file gridtree.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), args, opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (directory with several inputs)")
	cmd.Flags().Float64VarP(&f.gridUnit, "grid", "g", 0, "grid unit in world units (default 20)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: p3d (default), xml, json")
	cmd.Flags().StringVar(&f.dump, "dump", "", "write a text listing of the tree to this file")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "config file (.toml, .yaml, .json)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", defaultJobs, "builds to run at once")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.cacheURL, "cache-url", "", "Redis URL for a shared cache (redis://host:6379/0)")

	return cmd
}

// options loads the config file, if any, and overlays explicitly set flags.
func (f *buildFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		var err error
		if opts, err = pipeline.LoadConfig(f.config); err != nil {
			return opts, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		opts.Output = f.output
	}
	if flags.Changed("grid") {
		opts.GridUnit = f.gridUnit
	}
	if flags.Changed("format") {
		opts.Format = f.format
	}
	if flags.Changed("dump") {
		opts.DumpPath = f.dump
	}
	if flags.Changed("refresh") {
		opts.Refresh = f.refresh
	}
	return opts, nil
}

// runBuild expands opts into one job per input and runs them.
func (c *CLI) runBuild(ctx context.Context, inputs []string, opts pipeline.Options, f buildFlags) error {
	jobs, err := buildJobs(inputs, opts)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if f.metricsFile != "" {
		m = metrics.New()
		observability.SetPipelineHooks(m)
		observability.SetCacheHooks(m)
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, f.runnerOpts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	label := "Building tree..."
	if len(jobs) > 1 {
		label = fmt.Sprintf("Building %d trees...", len(jobs))
	}
	spinner := newSpinner(ctx, label)
	spinner.Start()

	var results []*pipeline.Result
	if len(jobs) == 1 {
		var res *pipeline.Result
		res, err = runSingle(ctx, runner, jobs[0])
		results = []*pipeline.Result{res}
	} else {
		results, err = runner.ExecuteAll(ctx, jobs, f.jobs)
	}

	if m != nil {
		// Failed runs are recorded too.
		if werr := m.WriteTextfile(f.metricsFile); werr != nil {
			printWarning("Could not write metrics to %s: %v", f.metricsFile, werr)
		}
	}

	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Exported %d %s", len(results), plural(len(results), "tree", "trees"))
	for _, res := range results {
		printFile(res.Output)
		printStats(res.Stats.NodeCount, res.Stats.LeafCount, res.Stats.Bytes,
			res.CacheInfo.TreeHit && res.CacheInfo.ArtifactHit)
	}
	if f.metricsFile != "" {
		printDetail("Metrics: %s", f.metricsFile)
	}
	if len(jobs) == 1 && jobs[0].MarkersFile != "" {
		printNewline()
		printNextStep("Inspect", "gridtree inspect "+jobs[0].MarkersFile)
	}
	return nil
}

// runSingle executes one job, opening its dump file for the duration.
func runSingle(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	dump, err := pipeline.OpenDump(&opts)
	if err != nil {
		return nil, err
	}
	if dump != nil {
		defer dump.Close()
	}
	return runner.Execute(ctx, opts)
}

// buildJobs returns the options for each input. With no inputs the config
// must name the markers itself.
func buildJobs(inputs []string, opts pipeline.Options) ([]pipeline.Options, error) {
	codec, err := opts.Codec()
	if err != nil {
		return nil, err
	}

	switch len(inputs) {
	case 0:
		if opts.MarkersFile == "" && len(opts.Markers) == 0 {
			return nil, errors.New(errors.ErrCodeEmptyInput, "no marker file given")
		}
		if opts.Output == "" {
			if opts.MarkersFile == "" {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "--output is required for inline markers")
			}
			opts.Output = replaceExt(opts.MarkersFile, codec.Extension())
		}
		return []pipeline.Options{opts}, nil
	case 1:
		opts.MarkersFile = inputs[0]
		opts.Markers = nil
		if opts.Output == "" {
			opts.Output = replaceExt(inputs[0], codec.Extension())
		}
		return []pipeline.Options{opts}, nil
	}

	if opts.DumpPath != "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "--dump needs a single marker file")
	}
	if opts.Output != "" {
		if err := os.MkdirAll(opts.Output, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	jobs := make([]pipeline.Options, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		job := opts
		job.MarkersFile = in
		job.Markers = nil
		job.Output = replaceExt(in, codec.Extension())
		if opts.Output != "" {
			job.Output = filepath.Join(opts.Output, filepath.Base(job.Output))
		}
		if prev, ok := seen[job.Output]; ok {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"%s and %s would both write %s", prev, in, job.Output)
		}
		seen[job.Output] = in
		jobs[i] = job
	}
	return jobs, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
