package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ShowtimesFeed/internal/app"
	"ShowtimesFeed/internal/config"
	"ShowtimesFeed/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd creates the showtimes command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "showtimes",
		Short: "Scrape theater showtimes into one normalized JSON feed",
		Long: `Fetches each configured venue's schedule page, extracts showtimes with the
venue's parser strategy and writes a single feed document. A failing venue
becomes a warning in the feed; only a failure to write the feed is fatal.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default: $SHOWTIMES_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(newScrapeCmd(opts), newVenuesCmd(opts), newParseCmd(opts))
	return cmd
}

func (o *rootOptions) load() config.Config {
	cfg := config.Load(o.configPath)
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg
}

func newScrapeCmd(root *rootOptions) *cobra.Command {
	var (
		out         string
		concurrency int
		interval    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run every venue and write the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.load()
			if out != "" {
				cfg.Output.Path = out
			}
			if concurrency > 0 {
				cfg.Fetch.Concurrency = concurrency
			}

			logger := logging.New(cfg.Logging.Level)
			application := app.New(cfg, logger)

			if interval > 0 {
				return application.RunEvery(cmd.Context(), interval)
			}
			if err := application.Run(cmd.Context()); err != nil {
				return err
			}
			logger.Info("feed written", "path", application.OutputPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output path (overrides config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Venues fetched at once (overrides config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Repeat the scrape at this interval until interrupted")
	return cmd
}

func newVenuesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "venues",
		Short: "List the configured venues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.load()
			application := app.New(cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPARSER\tSOURCE\tNAME")
			for _, v := range application.Venues() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Parser, v.SourceURL, v.DisplayName)
			}
			return w.Flush()
		},
	}
}

func newParseCmd(root *rootOptions) *cobra.Command {
	var venue, file string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a saved page for one venue and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read page: %w", err)
			}

			cfg := root.load()
			application := app.New(cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level))
			doc, err := application.ParsePage(cmd.Context(), venue, body)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}

	cmd.Flags().StringVar(&venue, "venue", "", "Venue id from the registry (required)")
	cmd.Flags().StringVar(&file, "file", "", "Saved HTML page (required)")
	_ = cmd.MarkFlagRequired("venue")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
