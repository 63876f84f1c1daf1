// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/pkg/types"
)

type cannedAnswer struct {
	Answer    string   `json:"answer"`
	CitedURLs []string `json:"cited_urls"`
}

// scriptedGateway replays questions in order from Complete and canned
// structured payloads per schema. Requests are recorded for inspection.
type scriptedGateway struct {
	questions []string
	answers   []cannedAnswer
	queries   []string

	questionCalls int
	answerCalls   int
	requests      []llm.Request
}

func (g *scriptedGateway) Complete(ctx context.Context, req llm.Request) (string, error) {
	g.requests = append(g.requests, req)
	if g.questionCalls >= len(g.questions) {
		return "", errors.New("ran out of scripted questions")
	}
	q := g.questions[g.questionCalls]
	g.questionCalls++
	return q, nil
}

func (g *scriptedGateway) Structured(ctx context.Context, req llm.Request, schema llm.Schema, out any) error {
	g.requests = append(g.requests, req)
	switch schema.Name {
	case "queries":
		body, _ := json.Marshal(map[string][]string{"queries": g.queries})
		return json.Unmarshal(body, out)
	case "answer_with_citations":
		if g.answerCalls >= len(g.answers) {
			return errors.New("ran out of scripted answers")
		}
		a := g.answers[g.answerCalls]
		g.answerCalls++
		body, _ := json.Marshal(a)
		return json.Unmarshal(body, out)
	default:
		return fmt.Errorf("unexpected schema %q", schema.Name)
	}
}

type mapBackend struct {
	results map[string][]search.Result
	errs    map[string]error
}

func (b *mapBackend) Name() string { return "map" }

func (b *mapBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]search.Result, error) {
	if err, ok := b.errs[query]; ok {
		return nil, err
	}
	return b.results[query], nil
}

var testEditor = types.Editor{
	Name:        "Historian_Ada",
	Affiliation: "University",
	Role:        "Historian",
	Description: "Focuses on origins.",
}

func newSimulator(gw llm.Gateway, b search.Backend, maxTurns int) *Simulator {
	return &Simulator{
		Gateway:   gw,
		Backend:   b,
		SearchCfg: types.SearchConfig{MaxResults: 3},
		Cfg:       types.InterviewConfig{MaxTurns: maxTurns, ContextBudget: 15000},
		Progress:  io.Discard,
	}
}

func repeatAnswers(n int, a cannedAnswer) []cannedAnswer {
	out := make([]cannedAnswer, n)
	for i := range out {
		out[i] = a
	}
	return out
}

func TestRunStopsAtTurnCap(t *testing.T) {
	gw := &scriptedGateway{
		questions: []string{"Q1?", "Q2?", "Q3?", "Q4?", "Q5?"},
		answers:   repeatAnswers(5, cannedAnswer{Answer: "A.", CitedURLs: nil}),
		queries:   []string{"q"},
	}
	sim := newSimulator(gw, &mapBackend{}, 3)

	session, err := sim.Run(context.Background(), "Quantum computing", testEditor)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	expert := 0
	for _, m := range session.Messages {
		if m.Name == ExpertName {
			expert++
		}
	}
	if expert != 3 {
		t.Errorf("expert spoke %d times, want 3 (cap)", expert)
	}
	// Opener + two question/answer rounds.
	if len(session.Messages) != 5 {
		t.Errorf("transcript has %d messages, want 5", len(session.Messages))
	}
}

func TestRunStopsOnSignOff(t *testing.T) {
	gw := &scriptedGateway{
		questions: []string{"Q1?", "That covers it. " + SignOff, "Q3?"},
		answers:   repeatAnswers(3, cannedAnswer{Answer: "A.", CitedURLs: nil}),
		queries:   []string{"q"},
	}
	sim := newSimulator(gw, &mapBackend{}, 10)

	session, err := sim.Run(context.Background(), "Quantum computing", testEditor)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Opener, Q1, A1, sign-off question, its answer.
	if len(session.Messages) != 5 {
		t.Fatalf("transcript has %d messages, want 5", len(session.Messages))
	}
	if !strings.HasSuffix(session.Messages[3].Content, SignOff) {
		t.Errorf("second-to-last message is not the sign-off: %q", session.Messages[3].Content)
	}
}

func TestRunKeepsOnlyCitedReferences(t *testing.T) {
	gw := &scriptedGateway{
		questions: []string{"Q1? " + SignOff},
		answers: []cannedAnswer{{
			Answer:    "Grounded answer.",
			CitedURLs: []string{"https://a.example", "https://missing.example"},
		}},
		queries: []string{"alpha", "beta"},
	}
	backend := &mapBackend{
		results: map[string][]search.Result{
			"alpha": {{SourceID: "https://a.example", Content: "Alpha content."}},
			"beta":  {{SourceID: "https://b.example", Content: "Beta content."}},
		},
	}
	sim := newSimulator(gw, backend, 10)

	session, err := sim.Run(context.Background(), "Quantum computing", testEditor)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(session.References) != 1 {
		t.Fatalf("got %d references, want 1: %v", len(session.References), session.References)
	}
	if session.References["https://a.example"] != "Alpha content." {
		t.Errorf("cited reference missing: %v", session.References)
	}
}

func TestRunToleratesFailedQueries(t *testing.T) {
	gw := &scriptedGateway{
		questions: []string{"Q1? " + SignOff},
		answers:   []cannedAnswer{{Answer: "A.", CitedURLs: []string{"https://a.example"}}},
		queries:   []string{"alpha", "broken"},
	}
	backend := &mapBackend{
		results: map[string][]search.Result{
			"alpha": {{SourceID: "https://a.example", Content: "Alpha content."}},
		},
		errs: map[string]error{"broken": errors.New("boom")},
	}
	var progress strings.Builder
	sim := newSimulator(gw, backend, 10)
	sim.Progress = &progress

	session, err := sim.Run(context.Background(), "Quantum computing", testEditor)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := session.References["https://a.example"]; !ok {
		t.Errorf("surviving query's reference missing: %v", session.References)
	}
	if !strings.Contains(progress.String(), "broken") {
		t.Errorf("dropped query not reported: %q", progress.String())
	}
}

func TestTranscriptHasNoScaffolding(t *testing.T) {
	gw := &scriptedGateway{
		questions: []string{"Q1? " + SignOff},
		answers:   []cannedAnswer{{Answer: "A.", CitedURLs: []string{"https://a.example"}}},
		queries:   []string{"alpha"},
	}
	backend := &mapBackend{results: map[string][]search.Result{
		"alpha": {{SourceID: "https://a.example", Content: "Alpha content."}},
	}}
	sim := newSimulator(gw, backend, 10)

	session, err := sim.Run(context.Background(), "Quantum computing", testEditor)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, m := range session.Messages {
		if m.ToolCall != nil || m.ToolOutputFor != "" {
			t.Errorf("message %d carries tool scaffolding: %+v", i, m)
		}
		if strings.Contains(m.Content, "search_engine(") {
			t.Errorf("message %d leaks the serialized tool call: %q", i, m.Content)
		}
	}
}

func TestAnswerFormatting(t *testing.T) {
	got := formatAnswer("Body.", []string{"https://a.example", "https://b.example"})
	want := "Body.\n\nCitations:\n\n[1]: https://a.example\n[2]: https://b.example"
	if got != want {
		t.Errorf("formatAnswer = %q, want %q", got, want)
	}
}

func TestQuestionUsesEditorViewpoint(t *testing.T) {
	gw := &scriptedGateway{
		questions: []string{"Q1? " + SignOff},
		answers:   []cannedAnswer{{Answer: "A.", CitedURLs: nil}},
		queries:   []string{"q"},
	}
	sim := newSimulator(gw, &mapBackend{}, 10)

	if _, err := sim.Run(context.Background(), "Quantum computing", testEditor); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// First recorded request is the question step over the seeded opener.
	first := gw.requests[0]
	if len(first.Messages) != 1 {
		t.Fatalf("question request has %d messages, want 1", len(first.Messages))
	}
	if first.Messages[0].Role != types.RoleUser {
		t.Errorf("expert opener should read as user-side from the editor's viewpoint, got %q", first.Messages[0].Role)
	}
	if !strings.Contains(first.System, testEditor.Persona()) {
		t.Errorf("persona missing from question prompt:\n%s", first.System)
	}
}

func TestDone(t *testing.T) {
	msg := func(name, content string) types.DialogueMessage {
		return types.DialogueMessage{Name: name, Content: content}
	}
	tests := []struct {
		name     string
		messages []types.DialogueMessage
		maxTurns int
		want     bool
	}{
		{
			name:     "below cap, no sign-off",
			messages: []types.DialogueMessage{msg(ExpertName, "Opener?"), msg("Editor", "Q?"), msg(ExpertName, "A.")},
			maxTurns: 5,
			want:     false,
		},
		{
			name:     "cap reached",
			messages: []types.DialogueMessage{msg(ExpertName, "Opener?"), msg("Editor", "Q?"), msg(ExpertName, "A.")},
			maxTurns: 2,
			want:     true,
		},
		{
			name:     "sign-off on latest question",
			messages: []types.DialogueMessage{msg(ExpertName, "Opener?"), msg("Editor", "Done. "+SignOff), msg(ExpertName, "A.")},
			maxTurns: 5,
			want:     true,
		},
		{
			name:     "sign-off mid-question does not terminate",
			messages: []types.DialogueMessage{msg(ExpertName, "Opener?"), msg("Editor", SignOff+" But one more thing?"), msg(ExpertName, "A.")},
			maxTurns: 5,
			want:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := done(tt.messages, tt.maxTurns); got != tt.want {
				t.Errorf("done() = %v, want %v", got, tt.want)
			}
		})
	}
}
