// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package survey derives the editor personas that drive the interviews.
// The surveyor expands the topic into related subjects, pulls one
// encyclopedic document per subject, and asks the model for a diverse
// group of editors grounded in those examples.
//
// See docs/ARCHITECTURE § Perspective Surveyor.
package survey

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const expandPrompt = `I'm writing a Wikipedia page for a topic mentioned below. Please identify and recommend some Wikipedia pages on closely related subjects. I'm looking for examples that provide insights into interesting aspects commonly associated with this topic, or examples that help me understand the typical content and structure included in Wikipedia pages for similar topics.

Please list the as many subjects and urls as you can.

Topic of interest: %s`

var perspectivesSystemTmpl = template.Must(template.New("perspectives-system").Parse(`You need to select a diverse (and distinct) group of Wikipedia editors who will work together to create a comprehensive article on the topic. Each of them represents a different perspective, role, or affiliation related to this topic. You can use other Wikipedia pages of related topics for inspiration. For each editor, add a description of what they will focus on.

Wiki page outlines of related topics for inspiration:
{{.Examples}}`))

var relatedSubjectsSchema = llm.Schema{
	Name:        "related_subjects",
	Description: "Closely related subjects to research as background.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"description": "Comprehensive list of related subjects as background research.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"topics"},
		"additionalProperties": false,
	},
}

var perspectivesSchema = llm.Schema{
	Name:        "perspectives",
	Description: "Editor personas for the article.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"editors": map[string]any{
				"type":        "array",
				"description": "Comprehensive list of editors with their roles and affiliations.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Name of the editor.",
							"pattern":     "^[a-zA-Z0-9_-]{1,64}$",
						},
						"affiliation": map[string]any{"type": "string", "description": "Primary affiliation of the editor."},
						"role":        map[string]any{"type": "string", "description": "Role of the editor in the context of the topic."},
						"description": map[string]any{"type": "string", "description": "Description of the editor's focus, concerns, and motives."},
					},
					"required":             []string{"name", "affiliation", "role", "description"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"editors"},
		"additionalProperties": false,
	},
}

// Surveyor expands a topic into editor personas. Backend supplies the
// encyclopedic lookups for related subjects.
type Surveyor struct {
	Gateway   llm.Gateway
	Backend   search.Backend
	SearchCfg types.SearchConfig
	Cfg       types.SurveyConfig

	// Progress receives a line per dropped lookup.
	Progress io.Writer
}

// Survey derives the editor personas for topic. Failed subject lookups are
// dropped; only the model calls themselves are fatal.
func (s *Surveyor) Survey(ctx context.Context, topic string) ([]types.Editor, error) {
	var related struct {
		Topics []string `json:"topics"`
	}
	err := s.Gateway.Structured(ctx, llm.Request{
		Messages: []types.DialogueMessage{
			{Role: types.RoleUser, Content: fmt.Sprintf(expandPrompt, topic)},
		},
	}, relatedSubjectsSchema, &related)
	if err != nil {
		return nil, fmt.Errorf("expanding related subjects: %w", err)
	}

	docs := search.Collect(ctx, s.Backend, related.Topics, s.SearchCfg, s.Progress)

	var examples strings.Builder
	for i, doc := range docs {
		if i > 0 {
			examples.WriteString("\n\n")
		}
		examples.WriteString(formatDoc(doc, s.Cfg.DocTruncate))
	}

	var system bytes.Buffer
	if err := perspectivesSystemTmpl.Execute(&system, struct{ Examples string }{examples.String()}); err != nil {
		return nil, fmt.Errorf("rendering perspectives prompt: %w", err)
	}

	var perspectives struct {
		Editors []types.Editor `json:"editors"`
	}
	err = s.Gateway.Structured(ctx, llm.Request{
		System: system.String(),
		Messages: []types.DialogueMessage{
			{Role: types.RoleUser, Content: "Topic of interest: " + topic},
		},
	}, perspectivesSchema, &perspectives)
	if err != nil {
		return nil, fmt.Errorf("generating perspectives: %w", err)
	}

	editors := perspectives.Editors
	if s.Cfg.MaxEditors > 0 && len(editors) > s.Cfg.MaxEditors {
		editors = editors[:s.Cfg.MaxEditors]
	}
	return editors, nil
}

// formatDoc renders one retrieved document as an example block, truncated
// to budget characters.
func formatDoc(doc search.Result, budget int) string {
	block := fmt.Sprintf("### %s\n\nSummary: %s", doc.Title, doc.Content)
	if budget > 0 && len(block) > budget {
		block = block[:budget]
	}
	return block
}
