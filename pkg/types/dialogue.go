// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// DialogueRole is a relative speaker tag. Roles are never part of a stored
// message's identity: they are recomputed by Viewpoint each time a prompt is
// built, so that whichever participant the prompt is for always appears as
// the assistant-side voice.
type DialogueRole string

const (
	RoleAssistant DialogueRole = "assistant"
	RoleUser      DialogueRole = "user"
)

// ToolCall records a search dispatch attached to a scaffolding message
// during an interview answer turn.
type ToolCall struct {
	// ID identifies the call within one answer turn.
	ID string `json:"id" yaml:"id"`

	// Name is the invoked capability (e.g. "search_engine").
	Name string `json:"name" yaml:"name"`

	// Arguments is the serialized argument payload.
	Arguments string `json:"arguments" yaml:"arguments"`
}

// DialogueMessage is one turn in an interview conversation. Stored transcripts
// carry only Name and Content; Role and the tool payloads appear on ephemeral
// copies built for prompt construction.
type DialogueMessage struct {
	// Role is the relative speaker tag, set by Viewpoint. Not serialized.
	Role DialogueRole `json:"-" yaml:"-"`

	// Name is the canonical author identity (an editor name or the expert tag).
	Name string `json:"name" yaml:"name"`

	// Content is the message text.
	Content string `json:"content" yaml:"content"`

	// ToolCall is the search dispatch this message carries, if any. Not serialized.
	ToolCall *ToolCall `json:"-" yaml:"-"`

	// ToolOutputFor names the ToolCall ID this message answers, if any. Not serialized.
	ToolOutputFor string `json:"-" yaml:"-"`
}

// Viewpoint re-tags a transcript from the perspective of the named
// participant: messages authored by name become assistant-side, all others
// user-side. The input is not modified. Applying Viewpoint twice with the
// same name yields the same result as applying it once.
func Viewpoint(messages []DialogueMessage, name string) []DialogueMessage {
	out := make([]DialogueMessage, len(messages))
	for i, m := range messages {
		if m.Name == name {
			m.Role = RoleAssistant
		} else {
			m.Role = RoleUser
		}
		out[i] = m
	}
	return out
}

// Editor is one synthesized viewpoint driving a simulated interview. Editors
// are derived once per run and immutable thereafter; names are unique within
// a run because they double as dialogue identities.
type Editor struct {
	// Name is the editor's unique, identifier-safe name.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the editor's primary affiliation.
	Affiliation string `json:"affiliation" yaml:"affiliation"`

	// Role is the editor's role in the context of the topic.
	Role string `json:"role" yaml:"role"`

	// Description covers the editor's focus, concerns, and motives.
	Description string `json:"description" yaml:"description"`
}

// Persona renders the editor as a prompt-ready block.
func (e Editor) Persona() string {
	return fmt.Sprintf("Name: %s\nRole: %s\nAffiliation: %s\nDescription: %s\n",
		e.Name, e.Role, e.Affiliation, e.Description)
}

// InterviewSession holds one editor's completed interview: the visible
// transcript and every reference cited by the expert's answers. Sessions are
// immutable once the interview terminates.
type InterviewSession struct {
	// Editor is the persona that conducted the interview.
	Editor Editor `json:"editor" yaml:"editor"`

	// Messages is the ordered transcript, seeded with the expert's opener.
	Messages []DialogueMessage `json:"messages" yaml:"messages"`

	// References maps cited source identifiers (URLs) to their text.
	References map[string]string `json:"references" yaml:"references"`
}
