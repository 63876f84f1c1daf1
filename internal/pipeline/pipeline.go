// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the storm-writer stages: concurrent initial
// outline and persona survey, parallel interviews, outline refinement,
// reference indexing, parallel section drafting, and final assembly. The
// orchestrator is stateless between runs; every run gets a fresh reference
// index.
//
// See docs/ARCHITECTURE § Pipeline Interface.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/storm-writer/internal/assemble"
	"github.com/pdiddy/storm-writer/internal/compose"
	"github.com/pdiddy/storm-writer/internal/interview"
	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/outline"
	"github.com/pdiddy/storm-writer/internal/refindex"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/internal/survey"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const snippetLen = 120

// Pipeline wires the stages together. SearchBackend answers interview
// queries; CorpusBackend supplies the survey's encyclopedic lookups.
type Pipeline struct {
	Gateway       llm.Gateway
	Embedder      refindex.Embedder
	SearchBackend search.Backend
	CorpusBackend search.Backend
	Cfg           types.PipelineConfig

	// Progress receives one line per completed stage plus warnings from the
	// tolerant search fan-outs.
	Progress io.Writer
}

// Run drafts a complete article on topic. Any stage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, topic string) (*types.ResearchState, error) {
	if p.Progress == nil {
		p.Progress = io.Discard
	}
	state := &types.ResearchState{Topic: topic}

	if err := p.initResearch(ctx, state); err != nil {
		return nil, fmt.Errorf("init_research: %w", err)
	}
	p.report("init_research", state.Outline.AsText())

	if err := p.conductInterviews(ctx, state); err != nil {
		return nil, fmt.Errorf("conduct_interviews: %w", err)
	}
	p.report("conduct_interviews", fmt.Sprintf("%d interviews completed", len(state.Interviews)))

	if err := p.refineOutline(ctx, state); err != nil {
		return nil, fmt.Errorf("refine_outline: %w", err)
	}
	p.report("refine_outline", state.Outline.AsText())

	index, err := p.indexReferences(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("index_references: %w", err)
	}
	p.report("index_references", fmt.Sprintf("%d references indexed", index.Len()))

	if err := p.writeSections(ctx, state, index); err != nil {
		return nil, fmt.Errorf("write_sections: %w", err)
	}
	p.report("write_sections", fmt.Sprintf("%d sections drafted", len(state.Sections)))

	if err := p.writeArticle(ctx, state); err != nil {
		return nil, fmt.Errorf("write_article: %w", err)
	}
	p.report("write_article", state.Article)

	return state, nil
}

// initResearch produces the initial outline and the editor personas
// concurrently; the two calls share nothing but the topic.
func (p *Pipeline) initResearch(ctx context.Context, state *types.ResearchState) error {
	surveyor := &survey.Surveyor{
		Gateway:   p.Gateway,
		Backend:   p.CorpusBackend,
		SearchCfg: p.Cfg.Search,
		Cfg:       p.Cfg.Survey,
		Progress:  p.Progress,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := outline.Initial(gctx, p.Gateway, state.Topic)
		if err != nil {
			return err
		}
		state.Outline = o
		return nil
	})
	g.Go(func() error {
		editors, err := surveyor.Survey(gctx, state.Topic)
		if err != nil {
			return err
		}
		state.Editors = editors
		return nil
	})
	return g.Wait()
}

// conductInterviews runs one session per editor concurrently. Results land
// at the editor's index so ordering is stable regardless of completion order.
func (p *Pipeline) conductInterviews(ctx context.Context, state *types.ResearchState) error {
	sim := &interview.Simulator{
		Gateway:   p.Gateway,
		Backend:   p.SearchBackend,
		SearchCfg: p.Cfg.Search,
		Cfg:       p.Cfg.Interview,
		Progress:  p.Progress,
	}

	sessions := make([]types.InterviewSession, len(state.Editors))
	g, gctx := errgroup.WithContext(ctx)
	for i, editor := range state.Editors {
		i, editor := i, editor
		g.Go(func() error {
			session, err := sim.Run(gctx, state.Topic, editor)
			if err != nil {
				return err
			}
			sessions[i] = session
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	state.Interviews = sessions
	return nil
}

func (p *Pipeline) refineOutline(ctx context.Context, state *types.ResearchState) error {
	convos := make([]string, len(state.Interviews))
	for i, session := range state.Interviews {
		convos[i] = formatConversation(session)
	}

	refined, err := outline.Refine(ctx, p.Gateway, state.Topic, state.Outline.AsText(), strings.Join(convos, "\n\n"))
	if err != nil {
		return err
	}
	state.Outline = refined
	return nil
}

// indexReferences builds this run's reference index from every citation
// collected across the interviews. An empty reference set is fatal: nothing
// could ground the sections.
func (p *Pipeline) indexReferences(ctx context.Context, state *types.ResearchState) (*refindex.Index, error) {
	merged := make(map[string]string)
	for _, session := range state.Interviews {
		for sourceID, content := range session.References {
			merged[sourceID] = content
		}
	}

	sourceIDs := make([]string, 0, len(merged))
	for sourceID := range merged {
		sourceIDs = append(sourceIDs, sourceID)
	}
	sort.Strings(sourceIDs)

	docs := make([]refindex.Document, len(sourceIDs))
	for i, sourceID := range sourceIDs {
		docs[i] = refindex.Document{SourceID: sourceID, Content: merged[sourceID]}
	}

	index := refindex.New(p.Embedder)
	if err := index.Add(ctx, docs); err != nil {
		return nil, err
	}
	return index, nil
}

// writeSections drafts every section of the refined outline concurrently,
// preserving outline order.
func (p *Pipeline) writeSections(ctx context.Context, state *types.ResearchState, index *refindex.Index) error {
	composer := &compose.Composer{
		Gateway:   p.Gateway,
		Index:     index,
		RetrieveK: p.Cfg.Compose.RetrieveK,
	}
	outlineText := state.Outline.AsText()

	sections := make([]types.WikiSection, len(state.Outline.Sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, section := range state.Outline.Sections {
		i, section := i, section
		g.Go(func() error {
			drafted, err := composer.Section(gctx, state.Topic, outlineText, section.SectionTitle)
			if err != nil {
				return err
			}
			sections[i] = drafted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	state.Sections = sections
	return nil
}

func (p *Pipeline) writeArticle(ctx context.Context, state *types.ResearchState) error {
	article, err := assemble.Article(ctx, p.Gateway, state.Topic, state.Sections)
	if err != nil {
		return err
	}
	state.Article = article
	return nil
}

// formatConversation renders one transcript for the refinement prompt.
func formatConversation(session types.InterviewSession) string {
	lines := make([]string, len(session.Messages))
	for i, m := range session.Messages {
		lines[i] = fmt.Sprintf("%s: %s", m.Name, m.Content)
	}
	return fmt.Sprintf("Conversation with %s\n\n%s", session.Editor.Name, strings.Join(lines, "\n"))
}

// report writes one progress line, truncating the snippet.
func (p *Pipeline) report(stage, snippet string) {
	if p.Progress == nil {
		return
	}
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen] + "..."
	}
	fmt.Fprintf(p.Progress, "%s: %s\n", stage, snippet)
}
