package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/uaenergy/news/internal/nlp"
	"github.com/uaenergy/news/pkg/models"
)

type indexedSentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type taggedSentence struct {
	Index    int `json:"index"`
	Entities []struct {
		Text  string `json:"text"`
		Lemma string `json:"lemma"`
		Label string `json:"label"`
	} `json:"entities"`
}

func entitiesFormat() *ResponseFormat {
	entity := object(map[string]any{
		"text":  map[string]any{"type": "string", "description": "Entity exactly as written in the sentence"},
		"lemma": map[string]any{"type": "string", "description": "Nominative form of the entity"},
		"label": map[string]any{"type": "string", "enum": []string{models.LabelOrganization, models.LabelPerson, models.LabelLocation}},
	})
	sentence := object(map[string]any{
		"index":    map[string]any{"type": "integer"},
		"entities": map[string]any{"type": "array", "items": entity},
	})
	return StructuredOutput("Entities",
		"Named entities found in each sentence.",
		object(map[string]any{
			"sentences": map[string]any{"type": "array", "items": sentence},
		}))
}

// TagEntities finds ORG, PER and LOC entities in each sentence. The result
// has one Sentence per input sentence. Spans whose text does not occur in
// their sentence or whose label is unknown are dropped.
func (c *Client) TagEntities(ctx context.Context, sentences []string) ([]nlp.Sentence, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	input := make([]indexedSentence, len(sentences))
	for i, s := range sentences {
		input[i] = indexedSentence{Index: i, Text: s}
	}
	message, err := marshalIndent(input)
	if err != nil {
		return nil, err
	}

	var out struct {
		Sentences []taggedSentence `json:"sentences"`
	}
	if err := c.askJSON(ctx, message, c.prompts.TagEntities, entitiesFormat(), &out); err != nil {
		return nil, fmt.Errorf("tag entities: %w", err)
	}

	result := make([]nlp.Sentence, len(sentences))
	for i, s := range sentences {
		result[i].Text = s
	}

	dropped := 0
	for _, tagged := range out.Sentences {
		if tagged.Index < 0 || tagged.Index >= len(sentences) {
			dropped += len(tagged.Entities)
			continue
		}
		text := sentences[tagged.Index]
		for _, e := range tagged.Entities {
			name := strings.TrimSpace(e.Text)
			if name == "" || !nlp.IsEntityLabel(e.Label) || !strings.Contains(text, name) {
				dropped++
				continue
			}
			result[tagged.Index].Entities = append(result[tagged.Index].Entities, nlp.EntitySpan{
				Text:  name,
				Lemma: strings.TrimSpace(e.Lemma),
				Label: e.Label,
			})
		}
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("Dropped entity spans not found in their sentence")
	}
	return result, nil
}

// EntityDoc splits an article into sentences and tags their entities
func (c *Client) EntityDoc(ctx context.Context, article models.Article) (nlp.Doc, error) {
	doc := nlp.Doc{Article: article.URL}
	sentences := nlp.SplitSentences(article.Text)
	if len(sentences) == 0 {
		return doc, nil
	}

	tagged, err := c.TagEntities(ctx, sentences)
	if err != nil {
		return doc, fmt.Errorf("%s: %w", article.URL, err)
	}
	doc.Sentences = tagged
	return doc, nil
}
