package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

func hit(title, url string, score float64, date string) tavily.SearchResult {
	return tavily.SearchResult{
		Title:         title,
		URL:           url,
		Content:       "some content about " + title,
		Score:         score,
		PublishedDate: date,
	}
}

func TestNormalizeResultsDedupesByURL(t *testing.T) {
	items := NormalizeResults([]tavily.SearchResult{
		hit("first", "https://a.com/x", 0.9, "2026-08-01"),
		hit("duplicate", "https://a.com/x", 0.95, "2026-08-02"),
		hit("second", "https://b.com/y", 0.9, "2026-08-01"),
	}, 0.4)

	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Title)
	assert.Equal(t, "second", items[1].Title)
}

func TestNormalizeResultsFiltersByScore(t *testing.T) {
	items := NormalizeResults([]tavily.SearchResult{
		hit("relevant", "https://a.com/1", 0.8, "2026-08-01"),
		hit("borderline", "https://a.com/2", 0.4, "2026-08-01"),
		hit("noise", "https://a.com/3", 0.39, "2026-08-01"),
	}, 0.4)

	require.Len(t, items, 2)
	assert.Equal(t, "relevant", items[0].Title)
	assert.Equal(t, "borderline", items[1].Title)
}

func TestNormalizeResultsSortsNewestFirst(t *testing.T) {
	items := NormalizeResults([]tavily.SearchResult{
		hit("old", "https://a.com/1", 0.9, "2026-07-01"),
		hit("new", "https://a.com/2", 0.9, "2026-08-20"),
		hit("mid", "https://a.com/3", 0.9, "2026-08-01"),
	}, 0.4)

	require.Len(t, items, 3)
	assert.Equal(t, []string{"new", "mid", "old"},
		[]string{items[0].Title, items[1].Title, items[2].Title})
}

func TestNormalizeResultsUndatedKeepInputOrder(t *testing.T) {
	items := NormalizeResults([]tavily.SearchResult{
		hit("undated one", "https://a.com/1", 0.9, ""),
		hit("dated", "https://a.com/2", 0.9, "2026-08-20"),
		hit("undated two", "https://a.com/3", 0.9, "sometime last week"),
	}, 0.4)

	require.Len(t, items, 3)
	// Undated items never swap with anything, so the input order survives.
	assert.Equal(t, "undated one", items[0].Title)
	assert.Equal(t, "dated", items[1].Title)
	assert.Equal(t, "undated two", items[2].Title)
	assert.Equal(t, "unknown date", items[0].PublishedDate)
	assert.Equal(t, "sometime last week", items[2].PublishedDate)
}

func TestNormalizeResultsClipsSnippets(t *testing.T) {
	long := hit("long", "https://a.com/1", 0.9, "2026-08-01")
	long.Content = strings.Repeat("a", 500)
	short := hit("short", "https://a.com/2", 0.9, "2026-08-01")
	short.Content = "brief"

	items := NormalizeResults([]tavily.SearchResult{long, short}, 0.4)

	require.Len(t, items, 2)
	assert.Len(t, items[0].Snippet, 303)
	assert.True(t, strings.HasSuffix(items[0].Snippet, "..."))
	assert.Equal(t, "brief", items[1].Snippet)
}

func TestNormalizeResultsClipsSnippetsOnRunes(t *testing.T) {
	// A multibyte character straddling the cutoff must survive intact.
	boundary := hit("boundary", "https://a.com/1", 0.9, "2026-08-01")
	boundary.Content = strings.Repeat("a", 299) + "é" + strings.Repeat("b", 50)
	exact := hit("exact", "https://a.com/2", 0.9, "2026-08-01")
	exact.Content = strings.Repeat("a", 299) + "é"
	accented := hit("accented", "https://a.com/3", 0.9, "2026-08-01")
	accented.Content = strings.Repeat("ñ", 350)

	items := NormalizeResults([]tavily.SearchResult{boundary, exact, accented}, 0.4)
	require.Len(t, items, 3)

	for _, item := range items {
		assert.True(t, utf8.ValidString(item.Snippet), "snippet for %s is not valid UTF-8", item.Title)
	}

	assert.Equal(t, snippetMaxLen+3, utf8.RuneCountInString(items[0].Snippet))
	assert.True(t, strings.HasSuffix(items[0].Snippet, "é..."))

	// Exactly 300 runes is not truncated even though it is 301 bytes.
	assert.Equal(t, exact.Content, items[1].Snippet)

	assert.Equal(t, strings.Repeat("ñ", 300)+"...", items[2].Snippet)
}

func TestNormalizeResultsEmptyInput(t *testing.T) {
	assert.Empty(t, NormalizeResults(nil, 0.4))
	assert.Empty(t, NormalizeResults([]tavily.SearchResult{}, 0.4))
}

func TestNormalizeResultsIdempotent(t *testing.T) {
	input := []tavily.SearchResult{
		hit("b", "https://a.com/2", 0.9, "2026-08-10"),
		hit("a", "https://a.com/1", 0.9, "2026-08-20"),
		hit("c", "https://a.com/3", 0.9, ""),
	}

	once := NormalizeResults(input, 0.4)

	// Feed the normalized output back through as if it were a fresh batch.
	again := make([]tavily.SearchResult, 0, len(once))
	for _, item := range once {
		date := item.PublishedDate
		if date == "unknown date" {
			date = ""
		}
		again = append(again, tavily.SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Content:       item.Snippet,
			Score:         1.0,
			PublishedDate: date,
		})
	}

	twice := NormalizeResults(again, 0.4)
	assert.Equal(t, once, twice)
}
