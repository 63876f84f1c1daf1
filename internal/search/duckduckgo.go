// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/storm-writer/internal/httputil"
	"github.com/pdiddy/storm-writer/pkg/types"
)

// duckduckgoBase is the DuckDuckGo HTML results endpoint. Declared as a var
// so tests can substitute an httptest server.
var duckduckgoBase = "https://html.duckduckgo.com/html/"

// DuckDuckGoBackend scrapes the DuckDuckGo HTML results page. It feeds the
// interview simulator's expert answers.
type DuckDuckGoBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *DuckDuckGoBackend) Name() string { return "duckduckgo" }

// Search fetches the results page for query and extracts snippet/URL pairs.
func (b *DuckDuckGoBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]Result, error) {
	reqURL := duckduckgoBase + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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
		return nil, fmt.Errorf("DuckDuckGo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DuckDuckGo returned HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	results := parseResults(doc)

	maxResults := cfg.MaxResults
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// parseResults walks the document tree pairing result links (result__a) with
// their snippets (result__snippet). Links resolve through DuckDuckGo's
// redirect wrapper; the target URL sits in the uddg query parameter.
func parseResults(doc *html.Node) []Result {
	var results []Result
	var current *Result

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if current != nil && current.SourceID != "" {
					results = append(results, *current)
				}
				current = &Result{
					SourceID: resolveRedirect(attr(n, "href")),
					Title:    nodeText(n),
				}
			case hasClass(n, "result__snippet"):
				if current != nil {
					current.Content = nodeText(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && current.SourceID != "" {
		results = append(results, *current)
	}

	// Drop entries with no snippet text: they carry nothing citable.
	kept := results[:0]
	for _, r := range results {
		if r.Content != "" {
			kept = append(kept, r)
		}
	}
	return kept
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=... redirect URLs. Direct
// URLs pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		u.Scheme = "https"
		return u.String()
	}
	return href
}

// hasClass reports whether the element's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates the text content beneath n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
