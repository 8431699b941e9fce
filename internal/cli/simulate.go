package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/pipeline"
)

// defaultOutput is the base path of rendered artifacts.
const defaultOutput = "collage"

// simulateCommand creates the simulate command: load a feed, run the collage
// until it settles and write the final frame.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		seed       uint64
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Render a settled collage from the configured feed",
		Long: `Render a settled collage from the configured feed.

The simulate command loads photos from the feed, scatters them around the
camera, runs the overlap simulation for a fixed number of frames and writes
the final scene as SVG, PDF, JSON or Graphviz DOT.

Runs are deterministic for a given feed, seed and option set, and results are
cached: a second run with the same inputs reads the snapshot and the rendered
files from the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			base := c.pipelineOptions()
			mergeOptions(&base, opts)
			if cmd.Flags().Changed("seed") {
				base.Engine.Seed = seed
			}
			return c.runSimulate(cmd.Context(), base, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute and overwrite cached results")

	// Load flags
	cmd.Flags().StringVarP(&opts.Tag, "tag", "t", "", "search the feed for a tag instead of listing it")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "number of photos to load (default from config)")

	// Simulate flags
	cmd.Flags().IntVar(&opts.Frames, "frames", pipeline.DefaultFrames, "simulation frames to run")
	cmd.Flags().StringVar(&opts.Select, "select", "", "photo id to select before simulating")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "scatter seed (default from config)")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "output width in pixels")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "hide captions and tags")
	cmd.Flags().BoolVar(&opts.Images, "images", false, "link photo sources as SVG images")
	cmd.Flags().BoolVar(&opts.FitViewport, "viewport", false, "frame the camera instead of the whole scene")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")

	return cmd
}

// mergeOptions copies the flag-controlled fields of flags over the
// config-derived base.
func mergeOptions(base *pipeline.Options, flags pipeline.Options) {
	base.Tag = flags.Tag
	base.Refresh = flags.Refresh
	if flags.Limit > 0 {
		base.Limit = flags.Limit
	}
	base.Frames = flags.Frames
	base.Select = flags.Select
	base.Formats = flags.Formats
	base.Scale = flags.Scale
	base.NoLabels = flags.NoLabels
	base.Images = flags.Images
	base.FitViewport = flags.FitViewport
	base.Title = flags.Title
}

// runSimulate executes the pipeline and writes the artifacts.
func (c *CLI) runSimulate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	src, err := c.newSource(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer src.Close(context.Background())

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Simulating collage...")
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Simulation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Settled %d photos", result.Stats.Items))

	if rejected := result.Report.Rejected; rejected > 0 {
		printWarning("%d of %d photos rejected", rejected, result.Stats.Records)
		for _, r := range result.Report.Results {
			if r.Err != nil {
				printDetail("%s: %v", r.Descriptor.ID, r.Err)
			}
		}
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		output:    output,
		items:     result.Stats.Items,
		overlaps:  result.Stats.Overlaps,
		cacheHit:  result.CacheInfo.SnapshotHit,
	})
}

// artifactWriteParams holds everything writeArtifacts needs.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	output    string
	items     int
	overlaps  int
	cacheHit  bool
}

// writeArtifacts writes one file per format and reports them.
func writeArtifacts(p artifactWriteParams) error {
	printSuccess("Collage rendered")
	printStats(p.items, p.overlaps, p.cacheHit)

	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s artifact", format)
		}
		path := outputPath(p.output, format, len(p.formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath derives the file for format. A single format writes to output
// verbatim when it carries an extension; otherwise the format is appended to
// the base path.
func outputPath(output, format string, single bool) string {
	if output == "" {
		return defaultOutput + "." + format
	}
	ext := filepath.Ext(output)
	if single && ext != "" {
		return output
	}
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + format
}
