// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries web sources for reference snippets. Backends
// implement a common Strategy interface; fan-out helpers dispatch batches of
// queries concurrently and tolerate individual failures.
//
// See docs/ARCHITECTURE § Search Gateway.
package search

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// Result is one retrieved snippet with its source identifier.
type Result struct {
	// SourceID is the snippet's canonical source URL.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Title is the source title, when the backend provides one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Content is the snippet text.
	Content string `json:"content" yaml:"content"`
}

// Backend searches a single web source.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]Result, error)
}

// Gather dispatches queries to the backend concurrently and merges every
// successful result into a source-id to content mapping. A failed query
// contributes nothing and is reported as a warning on w; Gather itself never
// fails. Merging follows submission order, so on duplicate source-ids the
// last query's content wins deterministically.
func Gather(ctx context.Context, b Backend, queries []string, cfg types.SearchConfig, w io.Writer) map[string]string {
	perQuery := collect(ctx, b, queries, cfg, w)

	merged := make(map[string]string)
	for _, results := range perQuery {
		for _, r := range results {
			merged[r.SourceID] = r.Content
		}
	}
	return merged
}

// Collect dispatches queries concurrently and returns the successful results
// flattened in submission order. Failed queries are dropped with a warning
// on w.
func Collect(ctx context.Context, b Backend, queries []string, cfg types.SearchConfig, w io.Writer) []Result {
	var out []Result
	for _, results := range collect(ctx, b, queries, cfg, w) {
		out = append(out, results...)
	}
	return out
}

// collect runs the concurrent fan-out and returns per-query results indexed
// by submission position. Failed queries leave a nil slot.
func collect(ctx context.Context, b Backend, queries []string, cfg types.SearchConfig, w io.Writer) [][]Result {
	perQuery := make([][]Result, len(queries))

	var wg sync.WaitGroup
	type failure struct {
		query string
		err   error
	}
	failures := make(chan failure, len(queries))

	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results, err := b.Search(ctx, q, cfg)
			if err != nil {
				failures <- failure{query: q, err: err}
				return
			}
			perQuery[i] = results
		}(i, q)
	}

	wg.Wait()
	close(failures)

	for f := range failures {
		fmt.Fprintf(w, "warning: %s query %q failed: %v\n", b.Name(), f.query, f.err)
	}

	return perQuery
}
