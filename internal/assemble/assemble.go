// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble turns the drafted sections into the final article.
package assemble

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/pkg/types"
)

var writerSystemTmpl = template.Must(template.New("writer-system").Parse(`You are an expert Wikipedia author. Write the complete wiki article on {{.Topic}} using the following section drafts:

{{.Draft}}

Strictly follow Wikipedia format guidelines.`))

const writerUserPrompt = `Write the complete Wiki article using markdown format. Organize citations using footnotes like "[1]", avoiding duplicates in the footer. Include URLs in the footer.`

// Article merges the section drafts into one final markdown article. This is
// the only free-text model call in the pipeline.
func Article(ctx context.Context, gw llm.Gateway, topic string, sections []types.WikiSection) (string, error) {
	drafts := make([]string, len(sections))
	for i, s := range sections {
		drafts[i] = s.AsText()
	}

	var system bytes.Buffer
	err := writerSystemTmpl.Execute(&system, struct{ Topic, Draft string }{topic, strings.Join(drafts, "\n\n")})
	if err != nil {
		return "", fmt.Errorf("rendering article prompt: %w", err)
	}

	article, err := gw.Complete(ctx, llm.Request{
		System: system.String(),
		Messages: []types.DialogueMessage{
			{Role: types.RoleUser, Content: writerUserPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("writing final article: %w", err)
	}
	return article, nil
}
