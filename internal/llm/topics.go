package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/uaenergy/news/pkg/models"
)

// TagBatchSize is the number of tags sent per translation request
const TagBatchSize = 100

func stringArray(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": "string"},
	}
}

func object(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// TopicsMessage renders topic models as Markdown sections, one per model id
// in ascending order, each holding a JSON object of topic name to features.
func TopicsMessage(topicModels map[int][]models.Topic) (string, error) {
	ids := make([]int, 0, len(topicModels))
	for id := range topicModels {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "\n### Topic Model %d\n\n", id)
		obj, err := topicsObject(topicModels[id])
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "```json\n%s\n```\n", obj)
	}
	return b.String(), nil
}

// topicsObject keeps topic order, which a Go map would not
func topicsObject(topics []models.Topic) (string, error) {
	if len(topics) == 0 {
		return "{}", nil
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, t := range topics {
		name, err := marshalIndent(t.Name)
		if err != nil {
			return "", err
		}
		features, err := marshalIndent(t.Features)
		if err != nil {
			return "", err
		}
		features = strings.ReplaceAll(features, "\n", "\n  ")
		fmt.Fprintf(&b, "  %s: %s", name, features)
		if i < len(topics)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

type topicChoice struct {
	Model      int      `json:"model"`
	TopicNames []string `json:"topic_names"`
}

// SelectTopic asks the model to pick the most coherent topic model and to
// name its topics in Ukrainian. It returns the chosen model id and one name
// per topic of that model.
func (c *Client) SelectTopic(ctx context.Context, topicModels map[int][]models.Topic) (int, []string, error) {
	if len(topicModels) == 0 {
		return 0, nil, fmt.Errorf("no topic models to choose from")
	}

	message, err := TopicsMessage(topicModels)
	if err != nil {
		return 0, nil, err
	}

	format := StructuredOutput("TopicModel",
		"Topic model that represents the most coherent and relevant topics.",
		object(map[string]any{
			"model":       map[string]any{"type": "integer", "description": "Id of the chosen topic model"},
			"topic_names": stringArray("Short and descriptive topic names in Ukrainian"),
		}))

	var choice topicChoice
	if err := c.askJSON(ctx, message, c.prompts.SelectTopic, format, &choice); err != nil {
		return 0, nil, fmt.Errorf("select topic: %w", err)
	}

	topics, ok := topicModels[choice.Model]
	if !ok {
		return 0, nil, fmt.Errorf("select topic: model %d is not one of the candidates", choice.Model)
	}
	if len(choice.TopicNames) != len(topics) {
		return 0, nil, fmt.Errorf("select topic: got %d names for %d topics of model %d",
			len(choice.TopicNames), len(topics), choice.Model)
	}
	return choice.Model, trimAll(choice.TopicNames), nil
}

// TranslateTopics translates Ukrainian topic names into English
func (c *Client) TranslateTopics(ctx context.Context, topics []string) ([]string, error) {
	if len(topics) == 0 {
		return nil, nil
	}

	message, err := marshalIndent(topics)
	if err != nil {
		return nil, err
	}

	format := StructuredOutput("TopicModel",
		"Topic model contains topics translated from Ukrainian into English.",
		object(map[string]any{
			"topic_names": stringArray("Short and descriptive topic names in English"),
		}))

	var out struct {
		TopicNames []string `json:"topic_names"`
	}
	if err := c.askJSON(ctx, message, c.prompts.TranslateTopics, format, &out); err != nil {
		return nil, fmt.Errorf("translate topics: %w", err)
	}
	if len(out.TopicNames) != len(topics) {
		return nil, fmt.Errorf("translate topics: got %d translations for %d topics", len(out.TopicNames), len(topics))
	}
	return trimAll(out.TopicNames), nil
}

// TranslateTags translates Ukrainian tags into English, TagBatchSize tags
// per request.
func (c *Client) TranslateTags(ctx context.Context, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	format := StructuredOutput("Tags",
		"Tags object containing translated to English.",
		object(map[string]any{
			"translated": stringArray("Translated list of tags in English"),
		}))

	translated := make([]string, 0, len(tags))
	for start := 0; start < len(tags); start += TagBatchSize {
		batch := tags[start:min(start+TagBatchSize, len(tags))]

		message, err := marshalIndent(batch)
		if err != nil {
			return nil, err
		}

		var out struct {
			Translated []string `json:"translated"`
		}
		if err := c.askJSON(ctx, message, c.prompts.TranslateTags, format, &out); err != nil {
			return nil, fmt.Errorf("translate tags: %w", err)
		}
		if len(out.Translated) != len(batch) {
			return nil, fmt.Errorf("translate tags: got %d translations for %d tags", len(out.Translated), len(batch))
		}
		translated = append(translated, trimAll(out.Translated)...)
	}
	return translated, nil
}

// TranslateTagCounts fills the Translation field of every tag count
func (c *Client) TranslateTagCounts(ctx context.Context, counts []models.TagCount) error {
	tags := make([]string, len(counts))
	for i, tc := range counts {
		tags[i] = tc.Tag
	}
	translated, err := c.TranslateTags(ctx, tags)
	if err != nil {
		return err
	}
	for i := range counts {
		counts[i].Translation = translated[i]
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
