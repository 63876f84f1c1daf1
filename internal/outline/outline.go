// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline generates and refines the hierarchical article plan.
// Implements both outline generations: the initial plan from the topic alone
// and the refined plan grounded in interview transcripts.
//
// See docs/ARCHITECTURE § Outline Synthesizer.
package outline

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const initialPrompt = "You are a Wikipedia writer. Write an outline for a Wikipedia page about a user-provided topic. Be comprehensive and specific."

// refineSystemTmpl frames the refinement call: the old outline travels in the
// system prompt, the transcripts in the user turn.
var refineSystemTmpl = template.Must(template.New("refine-system").Parse(`You are a Wikipedia writer. You have gathered information from experts and search engines. Now, you are refining the outline of the Wikipedia page. You need to make sure that the outline is comprehensive and specific.
Topic you are writing about: {{.Topic}}

Old outline:

{{.OldOutline}}`))

var refineUserTmpl = template.Must(template.New("refine-user").Parse(`Refine the outline based on your conversations with subject-matter experts:

Conversations:

{{.Conversations}}

Write the refined Wikipedia outline:`))

// subsectionSchema is shared between the outline and section-draft schemas.
var subsectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"subsection_title": map[string]any{"type": "string", "description": "Title of the subsection."},
		"description":      map[string]any{"type": "string", "description": "Content of the subsection."},
	},
	"required":             []string{"subsection_title", "description"},
	"additionalProperties": false,
}

var outlineSchema = llm.Schema{
	Name:        "outline",
	Description: "Hierarchical outline for a Wikipedia page.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"page_title": map[string]any{"type": "string", "description": "Title of the Wikipedia page."},
			"sections": map[string]any{
				"type":        "array",
				"description": "Titles and descriptions for each section of the Wikipedia page.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"section_title": map[string]any{"type": "string", "description": "Title of the section."},
						"description":   map[string]any{"type": "string", "description": "Content of the section."},
						"subsections": map[string]any{
							"type":        "array",
							"description": "Titles and descriptions for each subsection.",
							"items":       subsectionSchema,
						},
					},
					"required":             []string{"section_title", "description", "subsections"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"page_title", "sections"},
		"additionalProperties": false,
	},
}

// SubsectionSchema exposes the shared subsection schema to the section composer.
func SubsectionSchema() map[string]any { return subsectionSchema }

// Initial asks for an outline from the topic alone.
func Initial(ctx context.Context, gw llm.Gateway, topic string) (types.Outline, error) {
	var o types.Outline
	err := gw.Structured(ctx, llm.Request{
		System: initialPrompt,
		Messages: []types.DialogueMessage{
			{Role: types.RoleUser, Content: topic},
		},
	}, outlineSchema, &o)
	if err != nil {
		return types.Outline{}, fmt.Errorf("generating initial outline: %w", err)
	}
	return o, nil
}

// Refine asks for an updated outline grounded in the rendered old outline
// and the concatenated interview transcripts. The result supersedes the
// initial outline.
func Refine(ctx context.Context, gw llm.Gateway, topic, oldOutline, conversations string) (types.Outline, error) {
	var system, user bytes.Buffer
	if err := refineSystemTmpl.Execute(&system, struct{ Topic, OldOutline string }{topic, oldOutline}); err != nil {
		return types.Outline{}, fmt.Errorf("rendering refine prompt: %w", err)
	}
	if err := refineUserTmpl.Execute(&user, struct{ Conversations string }{conversations}); err != nil {
		return types.Outline{}, fmt.Errorf("rendering refine prompt: %w", err)
	}

	var o types.Outline
	err := gw.Structured(ctx, llm.Request{
		System: system.String(),
		Messages: []types.DialogueMessage{
			{Role: types.RoleUser, Content: user.String()},
		},
	}, outlineSchema, &o)
	if err != nil {
		return types.Outline{}, fmt.Errorf("refining outline: %w", err)
	}
	return o, nil
}
