package pipeline

import (
	"sort"
	"time"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

const (
	snippetMaxLen = 300

	// unknownDate stands in for results the search provider returned without
	// a publication date.
	unknownDate = "unknown date"
)

// dateLayouts covers the formats Tavily has been observed to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
}

// NormalizeResults turns raw search hits into the news items the analysis
// stage consumes: duplicates collapsed by URL (first occurrence wins), hits
// below minScore dropped, the remainder ordered newest first, snippets
// clipped for prompt budgets.
func NormalizeResults(results []tavily.SearchResult, minScore float64) []model.NewsItem {
	seen := make(map[string]struct{}, len(results))
	var kept []tavily.SearchResult
	for _, r := range results {
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		if r.Score < minScore {
			continue
		}
		kept = append(kept, r)
	}

	// Items whose dates are absent or unparsable compare equal, so the
	// stable sort leaves their relative order untouched.
	sort.SliceStable(kept, func(i, j int) bool {
		di, oki := parseDate(kept[i].PublishedDate)
		dj, okj := parseDate(kept[j].PublishedDate)
		if !oki || !okj {
			return false
		}
		return di.After(dj)
	})

	items := make([]model.NewsItem, 0, len(kept))
	for _, r := range kept {
		items = append(items, model.NewsItem{
			Title:         r.Title,
			Snippet:       clipSnippet(r.Content),
			URL:           r.URL,
			PublishedDate: displayDate(r.PublishedDate),
		})
	}
	return items
}

// clipSnippet truncates on runes, not bytes, so a multibyte character at the
// boundary is never split into invalid UTF-8.
func clipSnippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetMaxLen {
		return content
	}
	return string(runes[:snippetMaxLen]) + "..."
}

func displayDate(raw string) string {
	if raw == "" {
		return unknownDate
	}
	return raw
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
