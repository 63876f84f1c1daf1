// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResearchState is the aggregate threaded through the pipeline. Each stage
// receives the current state by value and returns a new state with only its
// own fields replaced; nothing mutates a state shared with another stage.
type ResearchState struct {
	// Topic is the immutable input subject.
	Topic string `json:"topic" yaml:"topic"`

	// Outline is the current article plan. Holds the initial outline until
	// refinement replaces it.
	Outline Outline `json:"outline" yaml:"outline"`

	// Editors lists the synthesized interview personas.
	Editors []Editor `json:"editors" yaml:"editors"`

	// Interviews holds one completed session per editor.
	Interviews []InterviewSession `json:"interview_results" yaml:"interview_results"`

	// Sections holds the drafted sections, one per refined-outline section,
	// in outline order.
	Sections []WikiSection `json:"sections" yaml:"sections"`

	// Article is the final assembled markdown.
	Article string `json:"article" yaml:"article"`
}
