package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaenergy/news/pkg/models"
)

func testDoc() Doc {
	return Doc{
		Article: "https://ua-energy.org/uk/posts/a",
		Sentences: []Sentence{
			{Text: "S0."},
			{Text: "S1.", Entities: []EntitySpan{{Text: "Нафтогазу", Lemma: "Нафтогаз", Label: "ORG"}}},
			{Text: "S2."},
			{Text: "S3.", Entities: []EntitySpan{
				{Text: "2024", Label: "DATE"},
				{Text: "Києві", Lemma: "Київ", Label: "LOC"},
			}},
			{Text: "S4.", Entities: []EntitySpan{{Text: "Галущенко", Label: "PER"}}},
		},
	}
}

func TestExtractEntities(t *testing.T) {
	entities := ExtractEntities(testDoc(), 2)
	require.Len(t, entities, 3, "DATE entities are skipped")

	assert.Equal(t, models.NamedEntity{
		Article: "https://ua-energy.org/uk/posts/a",
		Name:    "Нафтогазу",
		Lemma:   "Нафтогаз",
		Label:   "ORG",
		Context: []string{"S0.", "S1.", "S2.", "S3."},
	}, entities[0])

	assert.Equal(t, "Київ", entities[1].Lemma)
	assert.Equal(t, []string{"S1.", "S2.", "S3.", "S4."}, entities[1].Context)

	assert.Equal(t, "Галущенко", entities[2].Lemma, "missing lemma falls back to the text")
	assert.Equal(t, []string{"S2.", "S3.", "S4."}, entities[2].Context)
}

func TestExtractEntities_ContextSize(t *testing.T) {
	entities := ExtractEntities(testDoc(), 0)
	require.Len(t, entities, 3)
	assert.Equal(t, []string{"S1."}, entities[0].Context)

	entities = ExtractEntities(testDoc(), -1)
	assert.Equal(t, []string{"S1."}, entities[0].Context)

	entities = ExtractEntities(testDoc(), 10)
	assert.Len(t, entities[0].Context, 5)
}

func TestExtractEntities_Empty(t *testing.T) {
	assert.Empty(t, ExtractEntities(Doc{}, 2))
}

func TestCountTags(t *testing.T) {
	articles := []models.Article{
		{Tags: []string{"газ", "Нафтогаз", "газ"}},
		{Tags: []string{" газ ", "електроенергія"}},
		{Tags: []string{"Нафтогаз", ""}},
		{},
	}

	got := CountTags(articles)
	assert.Equal(t, []models.TagCount{
		{Tag: "Нафтогаз", Count: 2},
		{Tag: "газ", Count: 2},
		{Tag: "електроенергія", Count: 1},
	}, got)

	assert.Len(t, TopTags(got, 1), 1)
	assert.Len(t, TopTags(got, 0), 3)
}
