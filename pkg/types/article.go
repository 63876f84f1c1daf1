// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the storm-writer pipeline.
// The markdown renderings produced by the AsText methods are the canonical
// serialization handed between pipeline stages.
//
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

import (
	"fmt"
	"strings"
)

// Subsection describes one subsection of a planned article section.
type Subsection struct {
	// SubsectionTitle is the subsection heading.
	SubsectionTitle string `json:"subsection_title" yaml:"subsection_title"`

	// Description explains what the subsection covers.
	Description string `json:"description" yaml:"description"`
}

// AsText renders the subsection as a level-3 markdown heading with its body.
func (s Subsection) AsText() string {
	return strings.TrimSpace(fmt.Sprintf("### %s\n\n%s", s.SubsectionTitle, s.Description))
}

// Section describes one section in an article outline.
type Section struct {
	// SectionTitle is the section heading.
	SectionTitle string `json:"section_title" yaml:"section_title"`

	// Description explains what the section covers.
	Description string `json:"description" yaml:"description"`

	// Subsections lists planned subsections, if any.
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`
}

// AsText renders the section as a level-2 markdown heading followed by its
// description and any subsections.
func (s Section) AsText() string {
	subs := make([]string, 0, len(s.Subsections))
	for _, sub := range s.Subsections {
		subs = append(subs, sub.AsText())
	}
	return strings.TrimSpace(fmt.Sprintf("## %s\n\n%s\n\n%s",
		s.SectionTitle, s.Description, strings.Join(subs, "\n\n")))
}

// Outline holds the hierarchical plan for one article. It exists in two
// generations during a run: the initial outline derived from the topic alone,
// and a refined outline informed by the interview transcripts. The refined
// outline replaces the initial one in ResearchState.
type Outline struct {
	// PageTitle is the article title.
	PageTitle string `json:"page_title" yaml:"page_title"`

	// Sections lists the planned sections in order.
	Sections []Section `json:"sections" yaml:"sections"`
}

// AsText renders the full outline as heading-marked markdown.
func (o Outline) AsText() string {
	sections := make([]string, 0, len(o.Sections))
	for _, s := range o.Sections {
		sections = append(sections, s.AsText())
	}
	return strings.TrimSpace(fmt.Sprintf("# %s\n\n%s",
		o.PageTitle, strings.Join(sections, "\n\n")))
}

// WikiSection is one drafted article section with inline citation markers.
// Sections are drafted independently, one per section of the refined outline.
type WikiSection struct {
	// SectionTitle is the section heading.
	SectionTitle string `json:"section_title" yaml:"section_title"`

	// Content is the full drafted prose, with [#] markers where sources are cited.
	Content string `json:"content" yaml:"content"`

	// Subsections lists drafted subsections, if any.
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`

	// Citations lists the cited source identifiers in marker order.
	Citations []string `json:"citations" yaml:"citations"`
}

// AsText renders the drafted section with its subsections and a numbered
// citation list.
func (s WikiSection) AsText() string {
	subs := make([]string, 0, len(s.Subsections))
	for _, sub := range s.Subsections {
		subs = append(subs, sub.AsText())
	}
	citations := make([]string, 0, len(s.Citations))
	for i, c := range s.Citations {
		citations = append(citations, fmt.Sprintf(" [%d] %s", i+1, c))
	}
	body := strings.TrimSpace(fmt.Sprintf("## %s\n\n%s\n\n%s",
		s.SectionTitle, s.Content, strings.Join(subs, "\n\n")))
	if len(citations) == 0 {
		return body
	}
	return body + "\n\n" + strings.Join(citations, "\n")
}
