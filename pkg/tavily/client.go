package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.tavily.com"

// Client performs web searches against the Tavily API.
type Client interface {
	Search(ctx context.Context, params SearchParams) (*SearchResponse, error)
	SearchCompetitor(ctx context.Context, competitorName string, opts CompetitorSearchOptions) ([]SearchResult, error)
}

// SearchParams is the request body for POST /search.
type SearchParams struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"` // "basic" or "advanced"
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	Days           int      `json:"days,omitempty"`
}

// SearchResult is a single raw result returned by Tavily.
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// SearchResponse is the response from POST /search.
type SearchResponse struct {
	Answer       string         `json:"answer,omitempty"`
	Results      []SearchResult `json:"results"`
	ResponseTime float64        `json:"response_time"`
}

// CompetitorSearchOptions tune the competitor news query.
type CompetitorSearchOptions struct {
	Days           int
	MaxResults     int
	IncludeDomains []string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing searches at perSec requests per second. The
// pipeline fans out one search per competitor; this keeps a large competitor
// list from hammering the API.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Tavily API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// searchBody carries the API key alongside the search parameters; Tavily
// authenticates in the request body, not a header.
type searchBody struct {
	APIKey string `json:"api_key"`
	SearchParams
}

func (c *httpClient) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "tavily: rate limit wait")
		}
	}

	body, err := json.Marshal(searchBody{APIKey: c.apiKey, SearchParams: params})
	if err != nil {
		return nil, eris.Wrap(err, "tavily: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "tavily: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("tavily: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "tavily: unmarshal response")
	}

	return &result, nil
}

// SearchCompetitor searches recent news about a competitor. The query shape
// excludes job postings, which otherwise dominate company-name searches.
func (c *httpClient) SearchCompetitor(ctx context.Context, competitorName string, opts CompetitorSearchOptions) ([]SearchResult, error) {
	days := opts.Days
	if days <= 0 {
		days = 30
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	params := SearchParams{
		Query:       fmt.Sprintf("%s news updates announcements -jobs -careers", competitorName),
		SearchDepth: "advanced",
		MaxResults:  maxResults,
		Days:        days,
	}
	if len(opts.IncludeDomains) > 0 {
		params.IncludeDomains = opts.IncludeDomains
	}

	resp, err := c.Search(ctx, params)
	if err != nil {
		return nil, eris.Wrapf(err, "tavily: search competitor %s", competitorName)
	}
	return resp.Results, nil
}
