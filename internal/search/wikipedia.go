// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/storm-writer/internal/httputil"
	"github.com/pdiddy/storm-writer/pkg/types"
)

// wikipediaAPIBase is the MediaWiki API endpoint. Declared as a var so tests
// can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

// WikipediaBackend fetches one encyclopedic extract per query via the
// MediaWiki API. The perspective survey uses it as the background corpus
// provider for related reference topics.
type WikipediaBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *WikipediaBackend) Name() string { return "wikipedia" }

// wikiResponse is the subset of the MediaWiki query response we read.
type wikiResponse struct {
	Query struct {
		Pages map[string]wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	PageID  int     `json:"pageid"`
	Title   string  `json:"title"`
	Extract string  `json:"extract"`
	FullURL string  `json:"fullurl"`
	Missing *string `json:"missing"`
}

// Search resolves the query as a page title and returns at most one result
// carrying the page's plain-text introduction.
func (b *WikipediaBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]Result, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"prop":        {"extracts|info"},
		"inprop":      {"url"},
		"explaintext": {"1"},
		"exintro":     {"1"},
		"redirects":   {"1"},
		"titles":      {query},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikipediaAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Wikipedia API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Wikipedia API returned HTTP %d", resp.StatusCode)
	}

	var wr wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decoding Wikipedia response: %w", err)
	}

	for _, page := range wr.Query.Pages {
		if page.Missing != nil || page.PageID == 0 || page.Extract == "" {
			continue
		}
		sourceID := page.FullURL
		if sourceID == "" {
			sourceID = "https://en.wikipedia.org/wiki/" + url.PathEscape(page.Title)
		}
		return []Result{{
			SourceID: sourceID,
			Title:    page.Title,
			Content:  page.Extract,
		}}, nil
	}

	return nil, fmt.Errorf("no page found for %q", query)
}
