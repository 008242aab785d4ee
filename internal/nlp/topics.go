package nlp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/uaenergy/news/pkg/models"
)

// TopicSeed seeds every k-means run so topic models are reproducible
const TopicSeed = 5

// TopicModel is one k-means topic model over a set of articles
type TopicModel struct {
	K           int
	Topics      []models.Topic
	Assignments []int
	Sizes       []int
}

// TopicOptions tunes TopicModels
type TopicOptions struct {
	MinDF     int
	NFeatures int
}

// TopicModels fits one topic model per k in ks over the title and text
// of articles. Topic features are the top nFeatures centroid terms and
// topic names join the topic index with its first three features.
func TopicModels(articles []models.Article, ks []int, opts TopicOptions) (map[int]TopicModel, error) {
	if len(ks) == 0 {
		return nil, fmt.Errorf("no topic counts given")
	}
	if opts.NFeatures <= 0 {
		opts.NFeatures = 10
	}

	docs := make([][]string, len(articles))
	for i, a := range articles {
		docs[i] = Tokenize(a.Title + " " + a.Text)
	}
	matrix := TFIDF(docs, opts.MinDF)
	if len(matrix.Terms) == 0 {
		return nil, fmt.Errorf("empty vocabulary over %d articles", len(articles))
	}

	out := make(map[int]TopicModel, len(ks))
	for _, k := range ks {
		if _, ok := out[k]; ok {
			continue
		}
		clustering, err := KMeans(matrix.Rows, len(matrix.Terms), k, TopicSeed)
		if err != nil {
			return nil, fmt.Errorf("topic model k=%d: %w", k, err)
		}

		sizes := make([]int, k)
		for _, c := range clustering.Assignments {
			sizes[c]++
		}

		topics := make([]models.Topic, k)
		for c, centroid := range clustering.Centroids {
			features := matrix.TopTerms(centroid, opts.NFeatures)
			topics[c] = models.Topic{Name: topicName(c, features), Features: features}
		}

		out[k] = TopicModel{
			K:           k,
			Topics:      topics,
			Assignments: clustering.Assignments,
			Sizes:       sizes,
		}
	}
	return out, nil
}

func topicName(index int, features []string) string {
	parts := []string{strconv.Itoa(index)}
	parts = append(parts, features[:min(3, len(features))]...)
	return strings.Join(parts, "_")
}

// ModelIDs returns the keys of a topic model map in ascending order
func ModelIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TopicsOf extracts the topic lists of each model
func TopicsOf(m map[int]TopicModel) map[int][]models.Topic {
	out := make(map[int][]models.Topic, len(m))
	for k, model := range m {
		out[k] = model.Topics
	}
	return out
}

// Label sets each article's Topic from the model assignments and the
// chosen names, which must have one entry per topic.
func (m TopicModel) Label(articles []models.Article, names []string) error {
	if len(names) != len(m.Topics) {
		return fmt.Errorf("got %d topic names for %d topics", len(names), len(m.Topics))
	}
	if len(articles) != len(m.Assignments) {
		return fmt.Errorf("model covers %d articles, got %d", len(m.Assignments), len(articles))
	}
	for i := range articles {
		articles[i].Topic = names[m.Assignments[i]]
	}
	return nil
}
