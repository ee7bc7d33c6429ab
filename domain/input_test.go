package domain

import (
	"testing"

	"github.com/bytedance/sonic"
)

func TestTagsUnmarshalFromArray(t *testing.T) {
	var tags Tags
	if err := sonic.Unmarshal([]byte(`[" work","home","work"]`), &tags); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(tags) != "work,home" {
		t.Fatalf("unexpected tags: %q", tags)
	}
}

func TestTagsUnmarshalFromJoinedString(t *testing.T) {
	var tags Tags
	if err := sonic.Unmarshal([]byte(`"work, home,,work"`), &tags); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(tags) != "work,home" {
		t.Fatalf("unexpected tags: %q", tags)
	}
}

func TestTagsUnmarshalRejectsOtherShapes(t *testing.T) {
	var tags Tags
	if err := sonic.Unmarshal([]byte(`{"a":1}`), &tags); err == nil {
		t.Fatalf("expected error for object-shaped tags")
	}
	if err := sonic.Unmarshal([]byte(`[1,2]`), &tags); err == nil {
		t.Fatalf("expected error for numeric tags")
	}
}

func TestTaskInputValidate(t *testing.T) {
	in := TaskInput{Title: "  Buy milk  "}
	if err := in.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if in.Title != "Buy milk" {
		t.Fatalf("expected trimmed title, got %q", in.Title)
	}

	for _, title := range []string{"", "   ", "\t\n"} {
		in := TaskInput{Title: title}
		err := in.Validate()
		if err == nil {
			t.Fatalf("expected error for title %q", title)
		}
		if _, ok := err.(ValidationError); !ok {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}
}

func TestTaskPatchUnmarshalAbsentFieldsStayNil(t *testing.T) {
	var patch TaskPatch
	if err := sonic.Unmarshal([]byte(`{"notes":"updated"}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if patch.Notes == nil || *patch.Notes != "updated" {
		t.Fatalf("expected notes set, got %+v", patch.Notes)
	}
	if patch.Title != nil || patch.Priority != nil || patch.Tags != nil ||
		patch.IsCompleted != nil || patch.SortOrder != nil || patch.DueDateSet {
		t.Fatalf("expected absent fields to stay nil: %+v", patch)
	}
}

func TestTaskPatchUnmarshalDueDate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
	}{
		{name: "absent", body: `{}`, wantSet: false},
		{name: "null", body: `{"due_date":null}`, wantSet: true},
		{name: "empty", body: `{"due_date":""}`, wantSet: true},
		{name: "value", body: `{"due_date":"2026-09-01"}`, wantSet: true, wantValue: ptr("2026-09-01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch TaskPatch
			if err := sonic.Unmarshal([]byte(tt.body), &patch); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if patch.DueDateSet != tt.wantSet {
				t.Fatalf("DueDateSet = %v, want %v", patch.DueDateSet, tt.wantSet)
			}
			if (patch.DueDate == nil) != (tt.wantValue == nil) {
				t.Fatalf("DueDate = %v, want %v", patch.DueDate, tt.wantValue)
			}
			if tt.wantValue != nil && *patch.DueDate != *tt.wantValue {
				t.Fatalf("DueDate = %q, want %q", *patch.DueDate, *tt.wantValue)
			}
		})
	}
}

func TestTaskPatchUnmarshalNormalizes(t *testing.T) {
	var patch TaskPatch
	body := `{"title":" renamed ","priority":"HIGH","tags":["a"," b","a"]}`
	if err := sonic.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if patch.Title == nil || *patch.Title != "renamed" {
		t.Fatalf("expected trimmed title, got %+v", patch.Title)
	}
	if patch.Priority == nil || *patch.Priority != PriorityHigh {
		t.Fatalf("expected normalized priority, got %+v", patch.Priority)
	}
	if patch.Tags == nil || string(*patch.Tags) != "a,b" {
		t.Fatalf("expected normalized tags, got %+v", patch.Tags)
	}
}

func TestTaskPatchUnmarshalRejectsWrongTypes(t *testing.T) {
	for _, body := range []string{
		`{"title":5}`,
		`{"is_completed":"yes"}`,
		`{"sort_order":"first"}`,
	} {
		var patch TaskPatch
		if err := sonic.Unmarshal([]byte(body), &patch); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestTaskPatchApply(t *testing.T) {
	task := Task{
		ID:        1,
		Title:     "old",
		Notes:     "notes",
		Priority:  PriorityLow,
		DueDate:   "2026-09-01",
		Tags:      "work",
		SortOrder: 100,
		CreatedAt: 10,
		UpdatedAt: 10,
	}

	completed := true
	title := "new"
	tags := Tags("home")
	order := int64(500)
	patch := TaskPatch{
		Title:       &title,
		DueDateSet:  true,
		Tags:        &tags,
		IsCompleted: &completed,
		SortOrder:   &order,
	}
	patch.Apply(&task)

	if task.Title != "new" || task.Tags != "home" || !task.IsCompleted || task.SortOrder != 500 {
		t.Fatalf("patch not applied: %+v", task)
	}
	if task.DueDate != "" {
		t.Fatalf("expected due date cleared, got %q", task.DueDate)
	}
	if task.Notes != "notes" || task.Priority != PriorityLow {
		t.Fatalf("unsupplied fields changed: %+v", task)
	}
	if task.CreatedAt != 10 || task.UpdatedAt != 10 {
		t.Fatalf("timestamps must not be touched by Apply: %+v", task)
	}
}

func ptr(s string) *string { return &s }
