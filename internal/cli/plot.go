package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	treeio "github.com/matzehuels/gridtree/pkg/io"
	"github.com/matzehuels/gridtree/pkg/pipeline"
	"github.com/matzehuels/gridtree/pkg/render/partition"
)

// plotFlags holds the command-line flags for the plot command.
type plotFlags struct {
	output   string
	gridUnit float64
	width    float64
	height   float64
	title    string
	runnerOpts
}

// plotCommand creates the plot command that draws the partition over its markers.
func (c *CLI) plotCommand() *cobra.Command {
	var f plotFlags

	cmd := &cobra.Command{
		Use:   "plot [markers.json]",
		Short: "Draw the partition cells and markers",
		Long: `Draw the leaf cells of a marker file's partition with the markers on top.
Cells that contain a marker are shaded. The format follows the output
extension: .png, .svg or .pdf.`,
		Example: `  gridtree plot markers.json -o partition.png
  gridtree plot markers.json --grid 10 -o partition.svg --width 6 --height 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlot(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output image (default: <input>.png)")
	cmd.Flags().Float64VarP(&f.gridUnit, "grid", "g", 0, "grid unit in world units (default 20)")
	cmd.Flags().Float64Var(&f.width, "width", 8, "image width in inches")
	cmd.Flags().Float64Var(&f.height, "height", 8, "image height in inches")
	cmd.Flags().StringVar(&f.title, "title", "", "plot title (default: input file name)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.cacheURL, "cache-url", "", "Redis URL for a shared cache")

	return cmd
}

// runPlot builds the tree for input and saves the figure.
func (c *CLI) runPlot(ctx context.Context, input string, f plotFlags) error {
	output := f.output
	if output == "" {
		output = replaceExt(input, ".png")
	}
	if _, err := partition.FormatFromPath(output); err != nil {
		return err
	}

	markers, err := treeio.ImportMarkers(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.runnerOpts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	t, err := runner.Build(ctx, markers, pipeline.Options{GridUnit: f.gridUnit})
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	title := f.title
	if title == "" {
		title = input
	}
	opts := partition.Options{
		Width:  vg.Length(f.width) * vg.Inch,
		Height: vg.Length(f.height) * vg.Inch,
		Title:  title,
	}
	if err := partition.Save(t, markers, output, opts); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	prog.done("rendered partition", "path", output, "leaves", len(t.Leaves()))

	printSuccess("Partition plotted")
	printFile(output)
	return nil
}
