package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaenergy/news/internal/auth"
	"github.com/uaenergy/news/internal/report"
	"github.com/uaenergy/news/internal/storage"
	"github.com/uaenergy/news/internal/ui"
	"github.com/uaenergy/news/pkg/models"
)

// execute runs the root command quietly and returns its stdout
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { SetApp(rootCmd, nil) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(append([]string{"-q"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return ui.Strip(out.String()), err
}

const newsPage = `<html><body>
<h1 class="title">Новини</h1>
<div class="news">
	<div class="article"><a href="/uk/posts/gas">Газ дорожчає</a><span>1 березня 2024,</span><span>10:15</span></div>
</div>
</body></html>`

const articlePage = `<html><body>
<div class="content-article-inner">
	<p>Ціни на газ для населення зросли.</p>
	<div class="tags"><a href="/uk/tags/1">газ</a><a href="/uk/tags/2">ціни</a></div>
</div>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch {
		case r.URL.Path == "/uk/news" && r.URL.Query().Get("date") == "01-03-2024":
			w.Write([]byte(newsPage))
		case r.URL.Path == "/uk/posts/gas":
			w.Write([]byte(articlePage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestScrape(t *testing.T) {
	site := newSite(t)
	t.Setenv("UAENERGY_SITE_URL", site.URL)
	output := filepath.Join(t.TempDir(), "news.json")

	out, err := execute(t, nil, "scrape", "--from", "01-03-2024", "--to", "02-03-2024", "-o", output, "--append=false")
	require.NoError(t, err)
	assert.Contains(t, out, "1 articles scraped over 2 days")

	articles, err := storage.Load(output)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, site.URL+"/uk/posts/gas", articles[0].URL)
	assert.Equal(t, "Ціни на газ для населення зросли.", articles[0].Text)
	assert.Equal(t, []string{"газ", "ціни"}, articles[0].Tags)

	// a second run merges into the dataset without duplicates
	_, err = execute(t, nil, "scrape", "--from", "01-03-2024", "--to", "01-03-2024", "-o", output, "--append")
	require.NoError(t, err)
	articles, err = storage.Load(output)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestScrape_InvalidDates(t *testing.T) {
	_, err := execute(t, nil, "scrape", "--from", "2024-03-01", "--to", "")
	assert.Error(t, err)

	_, err = execute(t, nil, "scrape", "--from", "05-03-2024", "--to", "01-03-2024", "-o", filepath.Join(t.TempDir(), "x.json"))
	assert.Error(t, err)
}

func dataset(t *testing.T) string {
	t.Helper()
	day := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	articles := []models.Article{
		{Metadata: models.Metadata{URL: "u1", Title: "Газ", Date: day}, Text: "Ціни на газ зросли. Газ дорожчає знову.", Tags: []string{"газ", "ціни"}},
		{Metadata: models.Metadata{URL: "u2", Title: "Газ", Date: day}, Text: "Запаси газу у сховищах газ ціни.", Tags: []string{"газ"}},
		{Metadata: models.Metadata{URL: "u3", Title: "Світло", Date: day.AddDate(0, 1, 0)}, Text: "Відключення світла енергосистема мережі.", Tags: []string{"світло"}},
		{Metadata: models.Metadata{URL: "u4", Title: "Світло", Date: day.AddDate(0, 1, 1)}, Text: "Енергосистема мережі відключення світла.", Tags: []string{"світло"}},
	}
	path := filepath.Join(t.TempDir(), "news.json")
	require.NoError(t, storage.Save(path, articles))
	return path
}

func TestReport(t *testing.T) {
	path := dataset(t)

	out, err := execute(t, nil, "report", path, "--top", "2", "--format-json")
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 4, s.Articles)
	assert.Equal(t, []models.TagCount{{Tag: "газ", Count: 2}, {Tag: "світло", Count: 2}}, s.TopTags)

	out, err = execute(t, nil, "report", path, "--format-json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Articles per month")
}

func TestNLPTags(t *testing.T) {
	output := filepath.Join(t.TempDir(), "tags.csv")

	_, err := execute(t, nil, "nlp", "tags", dataset(t), "-o", output, "--top", "0", "--translate=false")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "газ,"), lines[1])
}

// fakeOpenAI answers every chat completion with content
func fakeOpenAI(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNLPTopics(t *testing.T) {
	server := fakeOpenAI(t, `{"model": 2, "topic_names": ["Газ", "Електроенергія"]}`)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	input := dataset(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "labelled.json")
	modelsOut := filepath.Join(dir, "topics.json")

	out, err := execute(t, nil, "nlp", "topics", input,
		"--k", "2", "--min-df", "1", "-o", output, "--models-out", modelsOut, "--translate=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Topics (k=2)")

	articles, err := storage.Load(output)
	require.NoError(t, err)
	require.Len(t, articles, 4)
	assert.Equal(t, articles[0].Topic, articles[1].Topic)
	assert.Equal(t, articles[2].Topic, articles[3].Topic)
	assert.NotEqual(t, articles[0].Topic, articles[2].Topic)
	assert.ElementsMatch(t, []string{"Газ", "Електроенергія"}, []string{articles[0].Topic, articles[2].Topic})

	data, err := os.ReadFile(modelsOut)
	require.NoError(t, err)
	var doc topicReport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Chosen)
	assert.Equal(t, []int{2, 2}, doc.Sizes)
	assert.Len(t, doc.Models[2], 2)
}

func TestNLPTopics_NoAPIKey(t *testing.T) {
	// an empty home directory holds no stored key
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CI", "1")
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, nil, "nlp", "topics", dataset(t), "--k", "2", "--min-df", "1", "-o", filepath.Join(t.TempDir(), "x.json"))
	assert.Error(t, err)
}

// entityAPI tags the known names found in each sentence and rejects
// requests mentioning "Укренерго". Every tagged sentence is recorded.
func entityAPI(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	known := []struct{ name, label string }{
		{"Нафтогаз", "ORG"}, {"Київ", "LOC"}, {"Шмигаль", "PER"},
	}

	var (
		mu   sync.Mutex
		seen []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var sentences []struct {
			Index int    `json:"index"`
			Text  string `json:"text"`
		}
		for _, m := range req.Messages {
			if m.Role == "user" {
				assert.NoError(t, json.Unmarshal([]byte(m.Content), &sentences))
			}
		}

		type entity struct {
			Text  string `json:"text"`
			Lemma string `json:"lemma"`
			Label string `json:"label"`
		}
		type tagged struct {
			Index    int      `json:"index"`
			Entities []entity `json:"entities"`
		}
		var out struct {
			Sentences []tagged `json:"sentences"`
		}
		reject := false
		mu.Lock()
		for _, s := range sentences {
			seen = append(seen, s.Text)
			reject = reject || strings.Contains(s.Text, "Укренерго")
			tg := tagged{Index: s.Index, Entities: []entity{}}
			for _, k := range known {
				if strings.Contains(s.Text, k.name) {
					tg.Entities = append(tg.Entities, entity{Text: k.name, Lemma: k.name, Label: k.label})
				}
			}
			out.Sentences = append(out.Sentences, tg)
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if reject {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"rejected"}}`))
			return
		}
		content, _ := json.Marshal(out)
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": string(content)}}},
		})
		w.Write(body)
	}))
	t.Cleanup(server.Close)

	return server, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func TestNLPEntities(t *testing.T) {
	server, seen := entityAPI(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	day := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	articles := []models.Article{
		{Metadata: models.Metadata{URL: "e1", Date: day}, Text: "Нафтогаз підвищив ціни. Київ отримає газ."},
		{Metadata: models.Metadata{URL: "e2", Date: day}},
		{Metadata: models.Metadata{URL: "e3", Date: day}, Text: "Укренерго попереджає про відключення."},
		{Metadata: models.Metadata{URL: "e4", Date: day}, Text: "Шмигаль провів нараду."},
		{Metadata: models.Metadata{URL: "e5", Date: day}, Text: "Нафтогаз закупив газ."},
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "news.json")
	require.NoError(t, storage.Save(input, articles))
	output := filepath.Join(dir, "entities.json")

	// without --continue-on-error the rejected article aborts the run
	_, err := execute(t, nil, "nlp", "entities", input, "--limit", "3", "--continue-on-error=false", "-o", output)
	require.Error(t, err)
	assert.NoFileExists(t, output)

	out, err := execute(t, nil, "nlp", "entities", input, "--limit", "3", "--continue-on-error", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "3 entities from 2 articles")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var entities []models.NamedEntity
	require.NoError(t, json.Unmarshal(data, &entities))
	assert.Equal(t, []models.NamedEntity{
		{Article: "e1", Name: "Нафтогаз", Lemma: "Нафтогаз", Label: "ORG", Context: []string{"Нафтогаз підвищив ціни.", "Київ отримає газ."}},
		{Article: "e1", Name: "Київ", Lemma: "Київ", Label: "LOC", Context: []string{"Нафтогаз підвищив ціни.", "Київ отримає газ."}},
		{Article: "e4", Name: "Шмигаль", Lemma: "Шмигаль", Label: "PER", Context: []string{"Шмигаль провів нараду."}},
	}, entities)

	// the article without text is skipped and --limit stops before e5
	for _, s := range seen() {
		assert.NotContains(t, s, "закупив", "article past --limit was sent")
	}
}

func TestKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	store := auth.NewFileStore(t.TempDir())
	secretStore = func() (*auth.Store, error) { return store, nil }
	t.Cleanup(func() { secretStore = auth.DefaultStore })

	out, err := execute(t, strings.NewReader("sk-abcdefgh1234\n"), "key", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-a*******1234")

	key, err := store.Get(auth.OpenAIKeyName)
	require.NoError(t, err)
	assert.Equal(t, "sk-abcdefgh1234", key)

	out, err = execute(t, nil, "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-a*******1234")

	_, err = execute(t, nil, "key", "delete")
	require.NoError(t, err)
	out, err = execute(t, nil, "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No API key configured")
}

func TestKeySet_Empty(t *testing.T) {
	store := auth.NewFileStore(t.TempDir())
	secretStore = func() (*auth.Store, error) { return store, nil }
	t.Cleanup(func() { secretStore = auth.DefaultStore })

	_, err := execute(t, strings.NewReader("\n"), "key", "set")
	assert.Error(t, err)
}

func TestPrintHelp(t *testing.T) {
	parent := &cobra.Command{Use: "uaenergy"}
	cmd := &cobra.Command{
		Use:   "fetch <day>",
		Short: "Fetch one day",
		Long:  "Fetch one day of news.",
		Example: `  # Today
  uaenergy fetch today`,
		Run: func(*cobra.Command, []string) {},
	}
	cmd.Flags().StringP("output", "o", "news.parquet", "Dataset file")
	cmd.Flags().Bool("append", false, "Merge into the dataset")
	cmd.Flags().String("secret", "", "")
	cmd.Flags().MarkHidden("secret")
	parent.PersistentFlags().BoolP("quiet", "q", false, "Only print errors")
	parent.AddCommand(cmd)

	var out bytes.Buffer
	cmd.SetOut(&out)
	printHelp(cmd, nil)
	help := ui.Strip(out.String())

	assert.Contains(t, help, "FETCH\nFetch one day\n\nFetch one day of news.")
	assert.Contains(t, help, "Usage\n  uaenergy fetch <day>")
	assert.Contains(t, help, "  # Today\n  $ uaenergy fetch today")
	assert.Contains(t, help, "  -o, --output string  Dataset file (default news.parquet)")
	assert.Contains(t, help, "  --append             Merge into the dataset")
	assert.Contains(t, help, "Global Flags\n  -q, --quiet  Only print errors")
	assert.NotContains(t, help, "secret")
	assert.NotContains(t, help, "Commands")

	var usage bytes.Buffer
	parent.SetErr(&usage)
	require.NoError(t, printUsage(parent))
	assert.Contains(t, ui.Strip(usage.String()), "Commands\n  fetch  Fetch one day")
}
