// Package cli implements the gridtree command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridtree/pkg/buildinfo"
	"github.com/matzehuels/gridtree/pkg/cache"
	"github.com/matzehuels/gridtree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gridtree"

	// defaultJobs is the default number of marker files built at once.
	defaultJobs = 4
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridtree",
		Short: "Gridtree partitions marker sets into grid-aligned trees",
		Long: `Gridtree builds a binary space partition over a set of world markers,
splitting every cell at grid-aligned midpoints until each leaf is at most
one grid unit wide, and exports the result as a chunk file.`,
		Version:      buildinfo.Resolved(),
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(stdout)

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects the cache backing a runner.
type runnerOpts struct {
	noCache  bool
	cacheURL string
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, ro runnerOpts) (*pipeline.Runner, error) {
	if ro.cacheURL != "" && !ro.noCache {
		rc, err := cache.NewRedisCache(ctx, ro.cacheURL)
		if err != nil {
			return nil, err
		}
		// A shared server may hold keys from other tools.
		return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, appName+":"), c.Logger), nil
	}
	fc, err := newCache(ro.noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(fc, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gridtree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// replaceExt swaps the extension of path for ext (which includes the dot).
func replaceExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ext
}
