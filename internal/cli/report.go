package cli

import (
	"github.com/spf13/cobra"

	"github.com/uaenergy/news/internal/report"
	"github.com/uaenergy/news/internal/storage"
)

var (
	reportTop  int
	reportJSON bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <dataset>",
	Short: "Print the headline figures of a dataset",
	Long: `Summarises a dataset: article count, covered period, days with news,
articles without text, average length, articles per month, the most
frequent tags and, after "nlp topics", the topic distribution.`,
	Example: `  # Dashboard in the terminal
  uaenergy report news.parquet

  # Figures as JSON for another tool
  uaenergy report news.parquet --format-json --top 50 > figures.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportTop, "top", 20, "Number of tags to list")
	reportCmd.Flags().BoolVar(&reportJSON, "format-json", false, "Write the figures as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	articles, err := storage.Load(args[0])
	if err != nil {
		return err
	}

	summary := report.Summarize(articles, reportTop)
	if reportJSON {
		return summary.WriteJSON(cmd.OutOrStdout())
	}
	return summary.WriteText(cmd.OutOrStdout())
}
