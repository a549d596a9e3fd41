package llmtool

import "testing"

type sampleOut struct {
	Name     string   `json:"name" prompt_desc:"display name"`
	Kind     string   `json:"type" prompt_type:"\"A\" | \"B\""`
	Tags     []string `json:"tags,omitempty" prompt:"optional"`
	Score    int      `json:"score"`
	Internal string   `json:"internal" prompt:"-"`
	Skipped  string   `json:"-"`
	NoTag    bool
	hidden   string
}

func TestFieldsFromStruct(t *testing.T) {
	fields, err := FieldsFromStruct(&sampleOut{})
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	want := []PromptField{
		{Name: "name", Type: "string", Required: true, Description: "display name"},
		{Name: "type", Type: `"A" | "B"`, Required: true},
		{Name: "tags", Type: "[]string", Required: false},
		{Name: "score", Type: "integer", Required: true},
		{Name: "NoTag", Type: "bool", Required: true},
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields: %+v", len(fields), fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("field %d: got %+v want %+v", i, fields[i], want[i])
		}
	}
}

func TestFieldsFromStruct_RejectsNonStruct(t *testing.T) {
	if _, err := FieldsFromStruct(42); err == nil {
		t.Fatalf("expected error for non-struct")
	}
	if _, err := FieldsFromStruct(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
}
