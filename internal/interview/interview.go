// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package interview runs the simulated editor/expert dialogues. Each session
// alternates a persona-voiced question with a search-grounded expert answer
// until the expert-side turn cap or the editor's sign-off phrase.
//
// See docs/ARCHITECTURE § Interview Simulator.
package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const (
	// ExpertName tags every expert-side message in a transcript.
	ExpertName = "Subject_Matter_Expert"

	// SignOff ends an interview when a question closes with it.
	SignOff = "Thank you so much for your help!"

	searchToolName = "search_engine"
)

var questionSystemTmpl = template.Must(template.New("question-system").Parse(`You are an experienced Wikipedia writer and want to edit a specific page. Besides your identity as a Wikipedia writer, you have a specific focus when researching the topic. Now, you are chatting with an expert to get information. Ask good questions to get more useful information.

When you have no more questions to ask, say "Thank you so much for your help!" to end the conversation. Please only ask one question at a time and don't ask what you have asked before. Your questions should be related to the topic you want to write. Be comprehensive and curious, gaining as much unique insight from the expert as possible.

Stay true to your specific perspective:

{{.Persona}}`))

const queriesPrompt = "You are a helpful research assistant. Query the search engine to answer the user's questions."

const answerPrompt = `You are an expert who can use information effectively. You are chatting with a Wikipedia writer who wants to write a Wikipedia page on the topic you know. You have gathered the related information and will now use the information to form a response.

Make your response as informative as possible and make sure every sentence is supported by the gathered information. Each response must be backed up by a citation from a reliable source, formatted as a footnote, reproducing the URLS after your response.`

var queriesSchema = llm.Schema{
	Name:        "queries",
	Description: "Search engine queries answering the user's questions.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"queries": map[string]any{
				"type":        "array",
				"description": "Comprehensive list of search engine queries to answer the user's questions.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"queries"},
		"additionalProperties": false,
	},
}

var answerSchema = llm.Schema{
	Name:        "answer_with_citations",
	Description: "Cited answer to the user's question.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "Comprehensive answer to the user's question with citations.",
			},
			"cited_urls": map[string]any{
				"type":        "array",
				"description": "List of urls cited in the answer.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"answer", "cited_urls"},
		"additionalProperties": false,
	},
}

// Simulator runs interviews. One Simulator serves all sessions of a run; the
// sessions themselves share no state.
type Simulator struct {
	Gateway   llm.Gateway
	Backend   search.Backend
	SearchCfg types.SearchConfig
	Cfg       types.InterviewConfig

	// Progress receives a line per dropped search query.
	Progress io.Writer
}

// Opener builds the expert-authored message every session is seeded with.
func Opener(topic string) types.DialogueMessage {
	return types.DialogueMessage{
		Name:    ExpertName,
		Content: fmt.Sprintf("So you said you were writing an article on %s?", topic),
	}
}

// Run conducts one complete interview for editor about topic. Any model-call
// failure aborts the session.
func (s *Simulator) Run(ctx context.Context, topic string, editor types.Editor) (types.InterviewSession, error) {
	session := types.InterviewSession{
		Editor:     editor,
		Messages:   []types.DialogueMessage{Opener(topic)},
		References: make(map[string]string),
	}

	for {
		question, err := s.question(ctx, editor, session.Messages)
		if err != nil {
			return types.InterviewSession{}, fmt.Errorf("interview with %s: %w", editor.Name, err)
		}
		session.Messages = append(session.Messages, question)

		answer, refs, err := s.answer(ctx, session.Messages)
		if err != nil {
			return types.InterviewSession{}, fmt.Errorf("interview with %s: %w", editor.Name, err)
		}
		session.Messages = append(session.Messages, answer)
		for k, v := range refs {
			session.References[k] = v
		}

		if done(session.Messages, s.Cfg.MaxTurns) {
			return session, nil
		}
	}
}

// done reports whether the transcript has terminated: the expert has spoken
// maxTurns times, or the latest question (second-to-last message) closes with
// the sign-off phrase.
func done(messages []types.DialogueMessage, maxTurns int) bool {
	responses := 0
	for _, m := range messages {
		if m.Name == ExpertName {
			responses++
		}
	}
	if responses >= maxTurns {
		return true
	}
	if len(messages) < 2 {
		return false
	}
	lastQuestion := messages[len(messages)-2]
	return strings.HasSuffix(lastQuestion.Content, SignOff)
}

// question asks the editor's next question, voiced from the editor's side of
// the transcript.
func (s *Simulator) question(ctx context.Context, editor types.Editor, messages []types.DialogueMessage) (types.DialogueMessage, error) {
	var system bytes.Buffer
	if err := questionSystemTmpl.Execute(&system, struct{ Persona string }{editor.Persona()}); err != nil {
		return types.DialogueMessage{}, fmt.Errorf("rendering question prompt: %w", err)
	}

	content, err := s.Gateway.Complete(ctx, llm.Request{
		System:   system.String(),
		Messages: types.Viewpoint(messages, editor.Name),
	})
	if err != nil {
		return types.DialogueMessage{}, fmt.Errorf("generating question: %w", err)
	}
	return types.DialogueMessage{Role: types.RoleAssistant, Name: editor.Name, Content: content}, nil
}

// answer produces the expert's cited reply to the latest question, plus the
// references that reply actually cited. The intermediate search scaffolding
// stays local to this call; only the formatted answer enters the transcript.
func (s *Simulator) answer(ctx context.Context, messages []types.DialogueMessage) (types.DialogueMessage, map[string]string, error) {
	swapped := types.Viewpoint(messages, ExpertName)

	var queries struct {
		Queries []string `json:"queries"`
	}
	err := s.Gateway.Structured(ctx, llm.Request{
		System:   queriesPrompt,
		Messages: swapped,
	}, queriesSchema, &queries)
	if err != nil {
		return types.DialogueMessage{}, nil, fmt.Errorf("generating queries: %w", err)
	}

	gathered := search.Gather(ctx, s.Backend, queries.Queries, s.SearchCfg, s.Progress)

	dumped, err := json.Marshal(gathered)
	if err != nil {
		return types.DialogueMessage{}, nil, fmt.Errorf("serializing search results: %w", err)
	}
	gatheredDump := string(dumped)
	if s.Cfg.ContextBudget > 0 && len(gatheredDump) > s.Cfg.ContextBudget {
		gatheredDump = gatheredDump[:s.Cfg.ContextBudget]
	}

	args, err := json.Marshal(map[string][]string{"queries": queries.Queries})
	if err != nil {
		return types.DialogueMessage{}, nil, fmt.Errorf("serializing query arguments: %w", err)
	}
	call := &types.ToolCall{ID: searchToolName + "_call", Name: searchToolName, Arguments: string(args)}
	scaffolded := append(swapped,
		types.DialogueMessage{
			Role:     types.RoleAssistant,
			Name:     ExpertName,
			Content:  fmt.Sprintf("%s(%s)", searchToolName, call.Arguments),
			ToolCall: call,
		},
		types.DialogueMessage{
			Role:          types.RoleUser,
			Name:          searchToolName,
			Content:       gatheredDump,
			ToolOutputFor: call.ID,
		},
	)

	var answer struct {
		Answer    string   `json:"answer"`
		CitedURLs []string `json:"cited_urls"`
	}
	err = s.Gateway.Structured(ctx, llm.Request{
		System:   answerPrompt,
		Messages: scaffolded,
	}, answerSchema, &answer)
	if err != nil {
		return types.DialogueMessage{}, nil, fmt.Errorf("generating answer: %w", err)
	}

	cited := make(map[string]string)
	for _, url := range answer.CitedURLs {
		if content, ok := gathered[url]; ok {
			cited[url] = content
		}
	}

	return types.DialogueMessage{
		Role:    types.RoleAssistant,
		Name:    ExpertName,
		Content: formatAnswer(answer.Answer, answer.CitedURLs),
	}, cited, nil
}

// formatAnswer appends the numbered citation footer to the answer body.
func formatAnswer(answer string, urls []string) string {
	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\nCitations:\n\n")
	for i, url := range urls {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d]: %s", i+1, url)
	}
	return b.String()
}
