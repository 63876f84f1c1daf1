// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose drafts individual article sections against the refined
// outline, grounded in references retrieved from the run's index.
//
// See docs/ARCHITECTURE § Section Composer.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/outline"
	"github.com/pdiddy/storm-writer/internal/refindex"
	"github.com/pdiddy/storm-writer/pkg/types"
)

var sectionSystemTmpl = template.Must(template.New("section-system").Parse(`You are an expert Wikipedia writer. Complete your assigned WikiSection from the following outline:

{{.Outline}}

Cite your sources, using the following references:

<Documents>
{{.Docs}}
<Documents>`))

var sectionSchema = llm.Schema{
	Name:        "wiki_section",
	Description: "One drafted section of the Wikipedia page.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"section_title": map[string]any{"type": "string", "description": "Title of the section."},
			"content": map[string]any{
				"type":        "string",
				"description": "Full content of the section. Include [#] citations to the cited sources where relevant.",
			},
			"subsections": map[string]any{
				"type":        "array",
				"description": "Titles and descriptions for each subsection of the Wikipedia page.",
				"items":       outline.SubsectionSchema(),
			},
			"citations": map[string]any{
				"type":        "array",
				"description": "Sources cited in the section.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"section_title", "content", "subsections", "citations"},
		"additionalProperties": false,
	},
}

// Composer drafts sections against one run's reference index.
type Composer struct {
	Gateway llm.Gateway
	Index   *refindex.Index

	// RetrieveK caps how many references ground each section.
	RetrieveK int
}

// Section drafts the named section. The retrieval query combines the topic
// and the section title so shared references still rank per section.
func (c *Composer) Section(ctx context.Context, topic, outlineText, sectionTitle string) (types.WikiSection, error) {
	docs, err := c.Index.Retrieve(ctx, topic+": "+sectionTitle, c.RetrieveK)
	if err != nil {
		return types.WikiSection{}, fmt.Errorf("retrieving references for %q: %w", sectionTitle, err)
	}

	var system bytes.Buffer
	err = sectionSystemTmpl.Execute(&system, struct{ Outline, Docs string }{outlineText, formatDocs(docs)})
	if err != nil {
		return types.WikiSection{}, fmt.Errorf("rendering section prompt: %w", err)
	}

	var section types.WikiSection
	err = c.Gateway.Structured(ctx, llm.Request{
		System: system.String(),
		Messages: []types.DialogueMessage{
			{Role: types.RoleUser, Content: fmt.Sprintf("Write the full WikiSection for the %s section.", sectionTitle)},
		},
	}, sectionSchema, &section)
	if err != nil {
		return types.WikiSection{}, fmt.Errorf("drafting section %q: %w", sectionTitle, err)
	}
	return section, nil
}

// formatDocs renders retrieved references as the document blocks the section
// prompt expects.
func formatDocs(docs []refindex.Document) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = fmt.Sprintf("<Document href=%q/>\n%s\n</Document>", d.SourceID, d.Content)
	}
	return strings.Join(blocks, "\n")
}
