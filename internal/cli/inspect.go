package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/errors"
	treeio "github.com/matzehuels/gridtree/pkg/io"
	"github.com/matzehuels/gridtree/pkg/pipeline"
)

// inspectFlags holds the command-line flags for the inspect command.
type inspectFlags struct {
	gridUnit    float64
	output      string
	dot         bool
	svg         bool
	interactive bool
	runnerOpts
}

// inspectCommand creates the inspect command for examining a built tree.
func (c *CLI) inspectCommand() *cobra.Command {
	var f inspectFlags

	cmd := &cobra.Command{
		Use:   "inspect [markers.json]",
		Short: "Show the flattened records of a marker file's tree",
		Long: `Build the partition tree for a marker file and show its flattened
records in the order they are exported: preorder index, split, descendant
count, parent offset, cell and number of markers in the cell.

--dot prints the tree as Graphviz DOT, --svg renders it with Graphviz.
-i opens an interactive browser.`,
		Example: `  # Record table
  gridtree inspect markers.json

  # Graphviz rendering
  gridtree inspect markers.json --svg -o tree.svg

  # Browse interactively
  gridtree inspect markers.json -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.dot && f.svg {
				return errors.New(errors.ErrCodeInvalidArgument, "--dot and --svg are mutually exclusive")
			}
			return c.runInspect(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().Float64VarP(&f.gridUnit, "grid", "g", 0, "grid unit in world units (default 20)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file for --dot/--svg (stdout if empty)")
	cmd.Flags().BoolVar(&f.dot, "dot", false, "print Graphviz DOT")
	cmd.Flags().BoolVar(&f.svg, "svg", false, "render the tree as SVG with Graphviz")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "browse records interactively")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.cacheURL, "cache-url", "", "Redis URL for a shared cache")

	return cmd
}

// runInspect builds the tree for input and shows it in the requested form.
func (c *CLI) runInspect(ctx context.Context, input string, f inspectFlags) error {
	markers, err := treeio.ImportMarkers(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.runnerOpts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	t, cached, err := runner.BuildWithCacheInfo(ctx, markers, pipeline.Options{GridUnit: f.gridUnit})
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	c.Logger.Debug("tree ready", "nodes", t.Len(), "cached", cached)

	switch {
	case f.dot:
		return writeOutput([]byte(t.ToDOT(markers)), f.output)
	case f.svg:
		svg, err := t.RenderSVG(ctx, markers)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if err := writeOutput(svg, f.output); err != nil {
			return err
		}
		if f.output != "" {
			printSuccess("Tree rendered")
			printFile(f.output)
		}
		return nil
	}

	records, err := t.Flatten()
	if err != nil {
		return err
	}

	if f.interactive {
		_, err := tea.NewProgram(NewRecordBrowserModel(t, records, markers), tea.WithContext(ctx)).Run()
		return err
	}

	rows := recordRows(t, records, markers)
	fmt.Fprintln(stdout, recordTable(records, rows, 0, len(rows), -1))
	printKeyValue("World", t.Node(t.Root()).Rect.String())
	printKeyValue("Grid unit", fmt.Sprintf("%g", t.GridUnit))
	printStats(t.Len(), len(t.Leaves()), 0, cached)
	return nil
}

// writeOutput writes data to path atomically, or to stdout when path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := chunk.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
