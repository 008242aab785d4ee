package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uaenergy/news/internal/app"
	"github.com/uaenergy/news/internal/llm"
	"github.com/uaenergy/news/internal/nlp"
	"github.com/uaenergy/news/internal/reqctx"
	"github.com/uaenergy/news/internal/storage"
	"github.com/uaenergy/news/internal/ui"
	"github.com/uaenergy/news/pkg/models"
)

var (
	nlpPrompts string

	tagsOutput    string
	tagsTop       int
	tagsTranslate bool

	topicOutput    string
	topicKs        []int
	topicMinDF     int
	topicFeatures  int
	topicModelOut  string
	topicTranslate bool

	entityOutput          string
	entityContext         int
	entityLimit           int
	entityContinueOnError bool
)

// nlpCmd groups the enrichment commands
var nlpCmd = &cobra.Command{
	Use:   "nlp",
	Short: "Enrich a news dataset with tags, topics and entities",
	Long: `Runs the analysis steps over a scraped dataset.

Topic naming, translations and entity tagging call the OpenAI API. The key is
read from OPENAI_API_KEY or from the key saved with "uaenergy key set".`,
}

var nlpTagsCmd = &cobra.Command{
	Use:   "tags <dataset>",
	Short: "Count how many articles carry each tag",
	Example: `  # Tag frequencies as a spreadsheet
  uaenergy nlp tags news.parquet -o tags.xlsx

  # Top 50 tags with English translations
  uaenergy nlp tags news.parquet --top 50 --translate -o tags.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runNLPTags,
}

var nlpTopicsCmd = &cobra.Command{
	Use:   "topics <dataset>",
	Short: "Fit topic models and label every article with a topic",
	Long: `Fits one k-means topic model over TF-IDF vectors for each --k, lets the
language model pick the most coherent one and name its topics, then stores
the topic name on every article.`,
	Example: `  # Label articles in place
  uaenergy nlp topics news.parquet --k 5,8,12

  # Keep the candidate models for inspection
  uaenergy nlp topics news.parquet -o labelled.parquet --models-out topics.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNLPTopics,
}

var nlpEntitiesCmd = &cobra.Command{
	Use:   "entities <dataset>",
	Short: "Extract organisations, people and places with their context",
	Example: `  # Entities of the first 20 articles
  uaenergy nlp entities news.parquet --limit 20 -o entities.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runNLPEntities,
}

func init() {
	rootCmd.AddCommand(nlpCmd)
	nlpCmd.AddCommand(nlpTagsCmd)
	nlpCmd.AddCommand(nlpTopicsCmd)
	nlpCmd.AddCommand(nlpEntitiesCmd)

	nlpCmd.PersistentFlags().StringVar(&nlpPrompts, "prompts", "", "YAML file overriding the built-in prompts")

	nlpTagsCmd.Flags().StringVarP(&tagsOutput, "output", "o", "tags.parquet", "Output file (.parquet, .json, .csv, .xlsx)")
	nlpTagsCmd.Flags().IntVar(&tagsTop, "top", 0, "Keep only the N most frequent tags (0 keeps all)")
	nlpTagsCmd.Flags().BoolVar(&tagsTranslate, "translate", false, "Translate tags into English")

	nlpTopicsCmd.Flags().StringVarP(&topicOutput, "output", "o", "", "Labelled dataset (default overwrites the input)")
	nlpTopicsCmd.Flags().IntSliceVar(&topicKs, "k", []int{5, 10, 15}, "Topic counts to try")
	nlpTopicsCmd.Flags().IntVar(&topicMinDF, "min-df", 2, "Ignore terms found in fewer articles")
	nlpTopicsCmd.Flags().IntVar(&topicFeatures, "features", 10, "Terms kept per topic")
	nlpTopicsCmd.Flags().StringVar(&topicModelOut, "models-out", "", "Write the candidate topic models as JSON")
	nlpTopicsCmd.Flags().BoolVar(&topicTranslate, "translate", false, "Also translate the chosen topic names into English")

	nlpEntitiesCmd.Flags().StringVarP(&entityOutput, "output", "o", "entities.parquet", "Output file (.parquet, .json, .csv, .xlsx)")
	nlpEntitiesCmd.Flags().IntVar(&entityContext, "context", nlp.DefaultContextSize, "Sentences of context on each side of a mention")
	nlpEntitiesCmd.Flags().IntVar(&entityLimit, "limit", 0, "Process only the first N articles with text (0 processes all)")
	nlpEntitiesCmd.Flags().BoolVar(&entityContinueOnError, "continue-on-error", false, "Skip articles that fail instead of aborting")
}

// llmClient returns the application's OpenAI client with --prompts applied
func llmClient(a *app.Application) (*llm.Client, error) {
	client, err := a.LLM()
	if err != nil {
		return nil, err
	}
	if nlpPrompts != "" {
		prompts, err := llm.LoadPrompts(nlpPrompts)
		if err != nil {
			return nil, err
		}
		client.SetPrompts(prompts)
	}
	return client, nil
}

func runNLPTags(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}
	ctx := reqctx.WithRun(cmd.Context(), "tags")
	logger := reqctx.Logger(ctx)

	articles, err := storage.Load(args[0])
	if err != nil {
		return err
	}

	counts := nlp.CountTags(articles)
	if tagsTop > 0 {
		counts = nlp.TopTags(counts, tagsTop)
	}
	logger.Info().Int("articles", len(articles)).Int("tags", len(counts)).Msg("Counted tags")

	if tagsTranslate {
		client, err := llmClient(a)
		if err != nil {
			return err
		}
		if err := client.TranslateTagCounts(ctx, counts); err != nil {
			return reqctx.WrapError(ctx, err)
		}
	}

	if err := storage.SaveTags(tagsOutput, counts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s tags written to %s\n\n",
		ui.Success("✓"), ui.Value(fmt.Sprint(len(counts))), ui.Bold(tagsOutput))
	return nil
}

// topicReport is the --models-out document
type topicReport struct {
	Chosen  int                    `json:"chosen"`
	Names   []string               `json:"names"`
	NamesEN []string               `json:"names_en,omitempty"`
	Sizes   []int                  `json:"sizes"`
	Models  map[int][]models.Topic `json:"models"`
}

func runNLPTopics(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}
	ctx := reqctx.WithRun(cmd.Context(), "topics")
	logger := reqctx.Logger(ctx)

	input := args[0]
	output := topicOutput
	if output == "" {
		output = input
	}

	articles, err := storage.Load(input)
	if err != nil {
		return err
	}

	topicModels, err := nlp.TopicModels(articles, topicKs, nlp.TopicOptions{
		MinDF:     topicMinDF,
		NFeatures: topicFeatures,
	})
	if err != nil {
		return err
	}
	logger.Info().Ints("ks", nlp.ModelIDs(topicModels)).Int("articles", len(articles)).Msg("Fitted topic models")

	client, err := llmClient(a)
	if err != nil {
		return err
	}
	chosen, names, err := client.SelectTopic(ctx, nlp.TopicsOf(topicModels))
	if err != nil {
		return reqctx.WrapError(ctx, err)
	}
	model := topicModels[chosen]
	if err := model.Label(articles, names); err != nil {
		return err
	}
	logger.Info().Int("k", chosen).Strs("topics", names).Msg("Topic model selected")

	var translated []string
	if topicTranslate {
		if translated, err = client.TranslateTopics(ctx, names); err != nil {
			return reqctx.WrapError(ctx, err)
		}
	}

	if err := storage.Save(output, articles); err != nil {
		return err
	}
	if topicModelOut != "" {
		err := storage.WriteJSON(topicModelOut, topicReport{
			Chosen:  chosen,
			Names:   names,
			NamesEN: translated,
			Sizes:   model.Sizes,
			Models:  nlp.TopicsOf(topicModels),
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", ui.Heading(fmt.Sprintf("Topics (k=%d)", chosen)))
	for i, name := range names {
		label := name
		if i < len(translated) {
			label += " " + ui.Dim("("+translated[i]+")")
		}
		fmt.Fprintf(out, "  %-50s %s\n", label, ui.Value(fmt.Sprint(model.Sizes[i])))
	}
	fmt.Fprintf(out, "\n%s %s labelled in %s\n\n",
		ui.Success("✓"), ui.Value(fmt.Sprint(len(articles))), ui.Bold(output))
	return nil
}

func runNLPEntities(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}
	ctx := reqctx.WithRun(cmd.Context(), "entities")
	logger := reqctx.Logger(ctx)

	if _, err := storage.FormatOf(entityOutput); err != nil {
		return err
	}

	articles, err := storage.Load(args[0])
	if err != nil {
		return err
	}
	var todo []models.Article
	for _, article := range articles {
		if article.HasText() {
			todo = append(todo, article)
		}
	}
	if entityLimit > 0 && len(todo) > entityLimit {
		todo = todo[:entityLimit]
	}

	client, err := llmClient(a)
	if err != nil {
		return err
	}

	bar := newProgressBar(len(todo), "Tagging", progressVisible(a.Config))
	var entities []models.NamedEntity
	failed := 0
	for _, article := range todo {
		doc, err := client.EntityDoc(ctx, article)
		_ = bar.Add(1)
		if err != nil {
			if !entityContinueOnError || ctx.Err() != nil {
				_ = bar.Finish()
				return reqctx.WrapError(ctx, err)
			}
			failed++
			logger.Warn().Err(err).Str("url", article.URL).Msg("Skipping article")
			continue
		}
		entities = append(entities, nlp.ExtractEntities(doc, entityContext)...)
	}
	_ = bar.Finish()

	logger.Info().
		Int("articles", len(todo)).
		Int("failed", failed).
		Int("entities", len(entities)).
		Dur("elapsed", reqctx.Elapsed(ctx)).
		Msg("Entity extraction complete")

	if err := storage.SaveEntities(entityOutput, entities); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s entities from %s articles written to %s\n\n",
		ui.Success("✓"),
		ui.Value(fmt.Sprint(len(entities))),
		ui.Value(fmt.Sprint(len(todo)-failed)),
		ui.Bold(entityOutput))
	return nil
}
