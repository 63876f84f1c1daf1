// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refindex stores reference documents collected during interviews and
// retrieves the nearest ones by embedding similarity. An Index belongs to a
// single pipeline run: it is constructed fresh per run and discarded with it,
// so references from one topic can never surface in another run's retrieval.
//
// See docs/ARCHITECTURE § Reference Index.
package refindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoDocuments is returned when an empty batch reaches Add. Drafting
// against an empty index would retrieve nothing, so the failure surfaces at
// indexing time rather than during section composition.
var ErrNoDocuments = errors.New("no reference documents available")

// Embedder produces one embedding vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Document is one indexed reference fragment.
type Document struct {
	// SourceID is the document's source URL.
	SourceID string

	// Content is the document text.
	Content string
}

// Index is an in-memory nearest-document store. The pipeline writes to it
// exactly once, between the interview and drafting stages, and only reads
// afterwards; that ordering is the concurrency discipline, no lock is held.
type Index struct {
	embedder Embedder
	docs     []Document
	vectors  [][]float64
}

// New returns an empty index backed by the embedder.
func New(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Add embeds the batch and appends it to the index. Batches may be added
// incrementally. An empty batch returns ErrNoDocuments.
func (ix *Index) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d documents: %w", len(docs), err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	ix.docs = append(ix.docs, docs...)
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Retrieve returns up to min(k, Len) documents nearest to the query by
// cosine similarity, most similar first. A deficit of documents is not an
// error.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]Document, error) {
	if k <= 0 || len(ix.docs) == 0 {
		return nil, nil
	}

	qvec, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(qvec) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(qvec))
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(ix.docs))
	for i, v := range ix.vectors {
		ranked[i] = scored{idx: i, score: cosine(qvec[0], v)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Document, k)
	for i := 0; i < k; i++ {
		out[i] = ix.docs[ranked[i].idx]
	}
	return out, nil
}

// cosine returns the cosine similarity of two vectors. Mismatched lengths
// compare over the shorter prefix; zero vectors score zero.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
