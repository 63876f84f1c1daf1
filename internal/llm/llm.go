// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the language model API behind a Gateway interface so
// stages and tests can supply mocks. The concrete client speaks the OpenAI
// chat completions and embeddings APIs.
//
// See docs/ARCHITECTURE § Language Model Gateway.
package llm

import (
	"context"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// Request is one conversation handed to the gateway. Message roles must
// already be computed for the requesting participant (types.Viewpoint).
type Request struct {
	// System is the system prompt, if any.
	System string

	// Messages is the ordered conversation.
	Messages []types.DialogueMessage
}

// Schema describes the JSON shape a structured call must return.
type Schema struct {
	// Name labels the schema for the API.
	Name string

	// Description summarizes the expected value.
	Description string

	// Definition is the JSON schema document.
	Definition map[string]any
}

// Gateway generates model responses. Every generation stage depends on this
// interface rather than on a concrete client.
type Gateway interface {
	// Complete returns the model's free-text reply to the conversation.
	Complete(ctx context.Context, req Request) (string, error)

	// Structured constrains the reply to schema and decodes it into out.
	Structured(ctx context.Context, req Request, schema Schema, out any) error
}

// Embedder produces one embedding vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
