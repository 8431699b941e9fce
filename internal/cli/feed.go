package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/config"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/feed/mongofeed"
)

// feedCommand creates the feed management command.
func (c *CLI) feedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Inspect and move feed records",
	}

	cmd.AddCommand(c.feedListCommand())
	cmd.AddCommand(c.feedSearchCommand())
	cmd.AddCommand(c.feedExportCommand())
	cmd.AddCommand(c.feedImportCommand())
	cmd.AddCommand(c.feedValidateCommand())
	cmd.AddCommand(c.feedSchemaCommand())

	return cmd
}

// feedListCommand creates the "feed list" subcommand.
func (c *CLI) feedListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the records the collage starts with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSource(cmd.Context(), func(ctx context.Context, src feed.Source) error {
				recs, err := src.List(ctx)
				if err != nil {
					return err
				}
				printRecords(recs)
				return nil
			})
		},
	}
}

// feedSearchCommand creates the "feed search" subcommand.
func (c *CLI) feedSearchCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <tag>",
		Short: "Search the feed for records carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSource(cmd.Context(), func(ctx context.Context, src feed.Source) error {
				recs, err := src.Search(ctx, args[0], limit)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					printInfo("No records tagged %s", StyleHighlight.Render(args[0]))
					return nil
				}
				printRecords(recs)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", feed.DefaultSearchLimit, "maximum records to return")
	return cmd
}

// feedExportCommand creates the "feed export" subcommand.
func (c *CLI) feedExportCommand() *cobra.Command {
	var tag string
	var limit int
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the feed to a JSON or YAML file",
		Long: `Write the feed to a JSON or YAML file.

The file uses the same layout as the get_list.json route, so it can be read
back with a "file" feed. Files ending in .yaml or .yml are written as YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSource(cmd.Context(), func(ctx context.Context, src feed.Source) error {
				var recs []feed.Record
				var err error
				if tag != "" {
					recs, err = src.Search(ctx, tag, limit)
				} else {
					recs, err = src.List(ctx)
				}
				if err != nil {
					return err
				}
				if err := feed.WriteFile(args[0], recs); err != nil {
					return fmt.Errorf("write %s: %w", args[0], err)
				}
				printSuccess("Exported %d records", len(recs))
				printFile(args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "export a tag search instead of the list")
	cmd.Flags().IntVarP(&limit, "limit", "n", feed.DefaultSearchLimit, "maximum records for --tag")
	return cmd
}

// feedImportCommand creates the "feed import" subcommand.
func (c *CLI) feedImportCommand() *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load records from a file into MongoDB",
		Long: `Load records from a file into MongoDB.

Records are upserted by id into the collection named in the [feed] section,
so importing the same file twice changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := c.Config.Feed
			if f.MongoURI == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "feed import needs mongo_uri in the [feed] section")
			}
			recs, err := feed.NewFileSource(args[0]).List(ctx)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Importing %d records...", len(recs)))
			spinner.Start()

			dst, err := mongofeed.Connect(ctx, f.MongoURI, f.Database, f.Collection)
			if err != nil {
				spinner.StopWithError("Connect failed")
				return err
			}
			defer dst.Close(context.Background())

			if drop {
				spinner.Update("Dropping collection...")
				if err := dst.Drop(ctx); err != nil {
					spinner.StopWithError("Drop failed")
					return err
				}
			}
			spinner.Update(fmt.Sprintf("Importing %d records...", len(recs)))
			n, err := dst.Upsert(ctx, recs)
			if err != nil {
				spinner.StopWithError("Import failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Imported %d records (%d changed)", len(recs), n))
			printKeyValue("Collection", f.Database+"."+f.Collection)
			if c.Config.Feed.Kind != config.FeedMongo {
				printNextStep("Read from MongoDB", "COLLAGE_FEED_KIND=mongo collage serve")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "drop the collection first")
	return cmd
}

// feedValidateCommand creates the "feed validate" subcommand.
func (c *CLI) feedValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a feed file against the response schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := feed.NewFileSource(args[0]).List(cmd.Context())
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			printSuccess("%s is valid", args[0])
			printDetail("%d records", len(recs))
			return nil
		},
	}
}

// feedSchemaCommand creates the "feed schema" subcommand.
func (c *CLI) feedSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema feed responses must match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(feed.Schema())
			return err
		},
	}
}

// withSource opens the configured feed for the duration of fn.
func (c *CLI) withSource(ctx context.Context, fn func(context.Context, feed.Source) error) error {
	src, err := c.newSource(ctx, false)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer src.Close(context.Background())
	loggerFromContext(ctx).Debug("feed opened", "kind", c.Config.Feed.Kind)
	return fn(ctx, src)
}

// printRecords prints records as a table.
func printRecords(recs []feed.Record) {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{r.ID, truncate(r.Title, 32), r.OwnerName, truncate(r.Tags, 40)}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Owner", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	fmt.Fprintln(out, t.Render())
	printDetail("%d records", len(recs))
}
