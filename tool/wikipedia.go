package tool

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/hupe1980/tribunal/core"
)

// WikipediaOptions configure the wikipedia_lookup tool.
type WikipediaOptions struct {
	// BaseURL is the MediaWiki API endpoint.
	BaseURL string
	// HTTPClient performs the API requests.
	HTTPClient *http.Client
	// MaxChars truncates the returned extract. Zero means no truncation.
	MaxChars int
}

// wikipediaClient talks to the MediaWiki query API.
type wikipediaClient struct {
	baseURL    string
	httpClient *http.Client
}

// searchResponse is the subset of the MediaWiki search result we consume.
type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// extractResponse is the subset of the MediaWiki extracts result we consume.
type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// NewWikipediaTool returns a tool that looks up an encyclopedic summary for a
// query. It resolves the best matching article title first, then fetches the
// plain text introduction of that article.
func NewWikipediaTool(optFns ...func(o *WikipediaOptions)) *FunctionTool {
	opts := WikipediaOptions{
		BaseURL:    "https://en.wikipedia.org/w/api.php",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		MaxChars:   4000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := &wikipediaClient{baseURL: opts.BaseURL, httpClient: opts.HTTPClient}

	return NewFunctionTool(
		"wikipedia_lookup",
		"Look up an encyclopedic summary of a historical figure or topic. Returns the article title and its introduction.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The name or topic to look up",
				},
			},
			"required": []string{"query"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return nil, NewToolError("wikipedia_lookup", "query must not be empty", "VALIDATION_ERROR")
			}

			title, err := client.search(toolCtx, query)
			if err != nil {
				return nil, err
			}
			if title == "" {
				return map[string]any{
					"query":  query,
					"found":  false,
					"status": "no_article",
				}, nil
			}

			extract, err := client.extract(toolCtx, title)
			if err != nil {
				return nil, err
			}
			if opts.MaxChars > 0 && len(extract) > opts.MaxChars {
				extract = truncateRunes(extract, opts.MaxChars)
			}

			toolCtx.LogDebug("wikipedia.lookup", "query", query, "title", title, "chars", len(extract))

			return map[string]any{
				"query":   query,
				"found":   true,
				"title":   title,
				"extract": extract,
			}, nil
		},
	)
}

// truncateRunes cuts s to at most max bytes without splitting a UTF-8 rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// search resolves the best matching article title for a query.
func (c *wikipediaClient) search(toolCtx *core.ToolContext, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"format":   {"json"},
	}

	var result searchResponse
	if err := c.get(toolCtx, params, &result); err != nil {
		return "", err
	}
	if len(result.Query.Search) == 0 {
		return "", nil
	}

	return result.Query.Search[0].Title, nil
}

// extract fetches the plain text introduction of an article by title.
func (c *wikipediaClient) extract(toolCtx *core.ToolContext, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"titles":      {title},
		"format":      {"json"},
	}

	var result extractResponse
	if err := c.get(toolCtx, params, &result); err != nil {
		return "", err
	}
	for _, page := range result.Query.Pages {
		return page.Extract, nil
	}

	return "", nil
}

// get performs a MediaWiki API request and decodes the JSON body into out.
func (c *wikipediaClient) get(toolCtx *core.ToolContext, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(
		toolCtx.Context(),
		http.MethodGet,
		c.baseURL+"?"+params.Encode(),
		nil,
	)
	if err != nil {
		return fmt.Errorf("build wikipedia request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}

	return nil
}
