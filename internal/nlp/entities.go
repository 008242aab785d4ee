package nlp

import "github.com/uaenergy/news/pkg/models"

// DefaultContextSize is the number of sentences kept on each side of an entity
const DefaultContextSize = 2

// EntitySpan is an entity mention tagged inside a sentence
type EntitySpan struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	Label string `json:"label"`
}

// Sentence is a sentence with the entities found in it
type Sentence struct {
	Text     string       `json:"text"`
	Entities []EntitySpan `json:"entities"`
}

// Doc is an article split into tagged sentences
type Doc struct {
	Article   string
	Sentences []Sentence
}

// IsEntityLabel reports whether label is one of the kept entity labels
func IsEntityLabel(label string) bool {
	switch label {
	case models.LabelOrganization, models.LabelPerson, models.LabelLocation:
		return true
	}
	return false
}

// ExtractEntities lists the ORG, PER and LOC entities of doc. Each entity
// carries the sentences from contextSize before to contextSize after its
// own sentence, clipped to the document.
func ExtractEntities(doc Doc, contextSize int) []models.NamedEntity {
	if contextSize < 0 {
		contextSize = 0
	}

	n := len(doc.Sentences)
	var entities []models.NamedEntity
	for i, sentence := range doc.Sentences {
		for _, span := range sentence.Entities {
			if !IsEntityLabel(span.Label) {
				continue
			}

			from := max(i-contextSize, 0)
			to := min(i+contextSize, n-1)
			context := make([]string, 0, to-from+1)
			for _, s := range doc.Sentences[from : to+1] {
				context = append(context, s.Text)
			}

			lemma := span.Lemma
			if lemma == "" {
				lemma = span.Text
			}
			entities = append(entities, models.NamedEntity{
				Article: doc.Article,
				Name:    span.Text,
				Lemma:   lemma,
				Label:   span.Label,
				Context: context,
			})
		}
	}
	return entities
}
