package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaenergy/news/pkg/models"
)

func TestTFIDF(t *testing.T) {
	docs := [][]string{
		{"газ", "газ", "ціна"},
		{"газ", "світло"},
		{"вугілля"},
	}

	m := TFIDF(docs, 1)
	assert.Equal(t, []string{"вугілля", "газ", "світло", "ціна"}, m.Terms)

	for i, row := range m.Rows {
		var sum float64
		for _, x := range row.Value {
			sum += x * x
		}
		assert.IsIncreasing(t, row.Index, "row %d indices are sorted", i)
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d is not unit length", i)
	}

	// "газ" appears in two documents so it weighs less per occurrence
	assert.Less(t, m.IDF[1], m.IDF[3])

	m = TFIDF(docs, 2)
	assert.Equal(t, []string{"газ"}, m.Terms)
	assert.Zero(t, m.Rows[2].Len())
}

func TestTopTerms(t *testing.T) {
	m := &Matrix{Terms: []string{"a", "b", "c", "d"}}
	assert.Equal(t, []string{"c", "a"}, m.TopTerms([]float64{0.5, 0, 0.9, 0.5}, 2))
	assert.Equal(t, []string{"c", "a", "d"}, m.TopTerms([]float64{0.5, 0, 0.9, 0.5}, 0))
}

func clusteredRows() []Vector {
	return []Vector{
		NewVector(map[int]float64{0: 1}),
		NewVector(map[int]float64{0: 0.8, 1: 0.6}),
		NewVector(map[int]float64{0: 0.6, 1: 0.8}),
		NewVector(map[int]float64{3: 1}),
		NewVector(map[int]float64{2: 0.6, 3: 0.8}),
		NewVector(map[int]float64{2: 0.8, 3: 0.6}),
	}
}

func TestKMeans(t *testing.T) {
	c, err := KMeans(clusteredRows(), 4, 2, 5)
	require.NoError(t, err)

	a := c.Assignments
	assert.Equal(t, a[0], a[1])
	assert.Equal(t, a[1], a[2])
	assert.Equal(t, a[3], a[4])
	assert.Equal(t, a[4], a[5])
	assert.NotEqual(t, a[0], a[3])
	assert.Len(t, c.Centroids, 2)
}

func TestKMeans_Deterministic(t *testing.T) {
	first, err := KMeans(clusteredRows(), 4, 3, 42)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := KMeans(clusteredRows(), 4, 3, 42)
		require.NoError(t, err)
		assert.Equal(t, first.Assignments, again.Assignments)
	}
}

func TestKMeans_Errors(t *testing.T) {
	_, err := KMeans(clusteredRows(), 4, 0, 1)
	assert.Error(t, err)
	_, err = KMeans(clusteredRows(), 4, 7, 1)
	assert.Error(t, err)
}

func TestKMeans_Duplicates(t *testing.T) {
	one := NewVector(map[int]float64{0: 1})
	rows := []Vector{one, one, one}
	c, err := KMeans(rows, 1, 2, 1)
	require.NoError(t, err)
	assert.Len(t, c.Assignments, 3)
}

func TestKMeans_StableOnIdenticalRows(t *testing.T) {
	weights := make(map[int]float64, 40)
	for i := 0; i < 40; i++ {
		weights[i] = float64(i%7+1) / 10
	}
	row := NewVector(weights)
	normalizeDense(row.Value)

	rows := make([]Vector, 6)
	for i := range rows {
		rows[i] = NewVector(weights)
		copy(rows[i].Value, row.Value)
	}

	first, err := KMeans(rows, 40, 3, TopicSeed)
	require.NoError(t, err)
	for run := 0; run < 300; run++ {
		again, err := KMeans(rows, 40, 3, TopicSeed)
		require.NoError(t, err)
		require.Equal(t, first.Assignments, again.Assignments, "run %d", run)
		require.Equal(t, first.Centroids, again.Centroids, "run %d", run)
	}
}

func TestNewVector_Dot(t *testing.T) {
	v := NewVector(map[int]float64{3: 2, 0: 1, 1: 0.5})
	assert.Equal(t, []int{0, 1, 3}, v.Index)
	assert.Equal(t, []float64{1, 0.5, 2}, v.Value)
	assert.InDelta(t, 1*1+0.5*2+2*3, v.Dot([]float64{1, 2, 0, 3}), 1e-12)
}

func topicArticles() []models.Article {
	return []models.Article{
		{Metadata: models.Metadata{Title: "Ціна газу"}, Text: "Газ подорожчав для населення, ціна газу зросла."},
		{Metadata: models.Metadata{Title: "Газові тарифи"}, Text: "Тарифи на газ і ціна газу переглянуті."},
		{Metadata: models.Metadata{Title: "Відключення світла"}, Text: "Графіки відключення світла діятимуть у Києві."},
		{Metadata: models.Metadata{Title: "Світло повернули"}, Text: "Енергетики повернули світло після відключення."},
	}
}

func TestTopicModels(t *testing.T) {
	articles := topicArticles()
	topics, err := TopicModels(articles, []int{2, 3, 2}, TopicOptions{NFeatures: 3})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, ModelIDs(topics))

	m := topics[2]
	require.Len(t, m.Topics, 2)
	require.Len(t, m.Assignments, 4)
	assert.Equal(t, m.Assignments[0], m.Assignments[1])
	assert.Equal(t, m.Assignments[2], m.Assignments[3])
	assert.NotEqual(t, m.Assignments[0], m.Assignments[2])
	assert.Equal(t, 4, m.Sizes[0]+m.Sizes[1])

	gas := m.Topics[m.Assignments[0]]
	assert.Contains(t, gas.Features, "газу")
	assert.LessOrEqual(t, len(gas.Features), 3)
	assert.Regexp(t, `^\d+_`, gas.Name)

	assert.Len(t, TopicsOf(topics)[3], 3)
}

func TestTopicModels_Errors(t *testing.T) {
	_, err := TopicModels(topicArticles(), nil, TopicOptions{})
	assert.Error(t, err)

	_, err = TopicModels(topicArticles(), []int{10}, TopicOptions{})
	assert.Error(t, err)

	_, err = TopicModels([]models.Article{{}}, []int{1}, TopicOptions{})
	assert.Error(t, err)
}

func TestTopicModel_Label(t *testing.T) {
	articles := topicArticles()
	topics, err := TopicModels(articles, []int{2}, TopicOptions{})
	require.NoError(t, err)

	m := topics[2]
	require.NoError(t, m.Label(articles, []string{"перша", "друга"}))
	assert.Equal(t, articles[0].Topic, articles[1].Topic)
	assert.NotEqual(t, articles[0].Topic, articles[2].Topic)

	assert.Error(t, m.Label(articles, []string{"одна"}))
	assert.Error(t, m.Label(articles[:1], []string{"перша", "друга"}))
}
