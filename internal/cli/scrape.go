package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/uaenergy/news/internal/config"
	"github.com/uaenergy/news/internal/engine"
	"github.com/uaenergy/news/internal/reqctx"
	"github.com/uaenergy/news/internal/storage"
	"github.com/uaenergy/news/internal/ui"
)

var (
	scrapeFrom            string
	scrapeTo              string
	scrapeOutput          string
	scrapeAppend          bool
	scrapeContinueOnError bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download the news published in a date range",
	Long: `Walks the daily news pages of ua-energy.org from --from to --to, downloads
every article and saves them as a dataset.

Days without news are skipped. Articles are deduplicated by URL and sorted
by publication date.`,
	Example: `  # Scrape one week into news.parquet
  uaenergy scrape --from 01-03-2024 --to 07-03-2024

  # Add today's news to an existing dataset
  uaenergy scrape --from 18-03-2024 --append

  # Export straight to a spreadsheet
  uaenergy scrape --from 01-03-2024 --to 31-03-2024 -o march.xlsx`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&scrapeFrom, "from", "", "First day to scrape, DD-MM-YYYY (required)")
	scrapeCmd.Flags().StringVar(&scrapeTo, "to", "", "Last day to scrape, DD-MM-YYYY (default today)")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "news.parquet", "Dataset file (.parquet, .json, .csv, .xlsx, .md)")
	scrapeCmd.Flags().BoolVar(&scrapeAppend, "append", false, "Merge into the existing dataset instead of replacing it")
	scrapeCmd.Flags().BoolVar(&scrapeContinueOnError, "continue-on-error", false, "Skip days that fail instead of aborting")
	scrapeCmd.MarkFlagRequired("from")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}

	from, err := engine.ParseQueryDate(scrapeFrom)
	if err != nil {
		return err
	}
	to := time.Now().In(engine.Kyiv)
	if scrapeTo != "" {
		if to, err = engine.ParseQueryDate(scrapeTo); err != nil {
			return err
		}
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", engine.FormatQueryDate(to), engine.FormatQueryDate(from))
	}
	if _, err := storage.FormatOf(scrapeOutput); err != nil {
		return err
	}

	ctx := reqctx.WithRun(cmd.Context(), "scrape")
	logger := reqctx.Logger(ctx)
	logger.Info().
		Str("from", engine.FormatQueryDate(from)).
		Str("to", engine.FormatQueryDate(to)).
		Str("output", scrapeOutput).
		Msg("Starting scrape")

	days := engine.Days(from, to)
	bar := newProgressBar(len(days), "Scraping", progressVisible(a.Config))

	articles, err := a.Scraper.ParseRange(ctx, from, to, engine.RangeOptions{
		ContinueOnError: scrapeContinueOnError,
		OnDay: func(day time.Time, n int, err error) {
			bar.Describe(engine.FormatQueryDate(day))
			_ = bar.Add(1)
		},
	})
	_ = bar.Finish()
	if err != nil {
		return reqctx.WrapError(ctx, err)
	}

	fresh := len(articles)
	if scrapeAppend && storage.Exists(scrapeOutput) {
		existing, err := storage.Load(scrapeOutput)
		if err != nil {
			return fmt.Errorf("append to %s: %w", scrapeOutput, err)
		}
		articles = engine.Dedup(existing, articles)
		logger.Debug().Int("existing", len(existing)).Int("merged", len(articles)).Msg("Merged with existing dataset")
	}

	if err := storage.Save(scrapeOutput, articles); err != nil {
		return reqctx.WrapError(ctx, err)
	}

	logger.Info().
		Int("articles", len(articles)).
		Dur("elapsed", reqctx.Elapsed(ctx)).
		Msg("Scrape complete")

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s scraped over %s, %s in %s\n\n",
		ui.Success("✓"),
		ui.Value(fmt.Sprint(fresh))+" articles",
		ui.Value(fmt.Sprint(len(days)))+" days",
		ui.Value(fmt.Sprint(len(articles))),
		ui.Bold(scrapeOutput))
	return nil
}

// progressVisible hides progress bars for --quiet and --json runs
func progressVisible(cfg *config.Config) bool {
	return !cfg.JSONLog && cfg.LogLevel != "error"
}

func newProgressBar(total int, description string, visible bool) *progressbar.ProgressBar {
	var w io.Writer = os.Stderr
	if !visible {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
