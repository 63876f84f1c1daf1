package types

import (
	"reflect"
	"testing"
)

func sampleTranscript() []DialogueMessage {
	return []DialogueMessage{
		{Name: "Subject_Matter_Expert", Content: "So you said you were writing an article on Geothermal energy?"},
		{Name: "Alice_Historian", Content: "When was geothermal power first harnessed?"},
		{Name: "Subject_Matter_Expert", Content: "The first plant ran in Larderello in 1904 [1]."},
	}
}

func TestViewpointTagsRelativeRoles(t *testing.T) {
	tests := []struct {
		name      string
		self      string
		wantRoles []DialogueRole
	}{
		{"editor perspective", "Alice_Historian", []DialogueRole{RoleUser, RoleAssistant, RoleUser}},
		{"expert perspective", "Subject_Matter_Expert", []DialogueRole{RoleAssistant, RoleUser, RoleAssistant}},
		{"unknown name sees all as user", "Nobody", []DialogueRole{RoleUser, RoleUser, RoleUser}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Viewpoint(sampleTranscript(), tt.self)
			for i, m := range got {
				if m.Role != tt.wantRoles[i] {
					t.Errorf("message %d role = %q, want %q", i, m.Role, tt.wantRoles[i])
				}
			}
		})
	}
}

func TestViewpointIsIdempotent(t *testing.T) {
	once := Viewpoint(sampleTranscript(), "Alice_Historian")
	twice := Viewpoint(once, "Alice_Historian")
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Viewpoint applied twice differs:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestViewpointDoesNotMutateInput(t *testing.T) {
	in := sampleTranscript()
	Viewpoint(in, "Alice_Historian")
	for i, m := range in {
		if m.Role != "" {
			t.Errorf("input message %d role mutated to %q", i, m.Role)
		}
	}
}

func TestEditorPersona(t *testing.T) {
	e := Editor{
		Name:        "Alice_Historian",
		Affiliation: "University of Pisa",
		Role:        "Energy historian",
		Description: "Focuses on the industrial adoption of geothermal power.",
	}

	want := "Name: Alice_Historian\nRole: Energy historian\nAffiliation: University of Pisa\nDescription: Focuses on the industrial adoption of geothermal power.\n"
	if got := e.Persona(); got != want {
		t.Errorf("Persona() = %q, want %q", got, want)
	}
}
