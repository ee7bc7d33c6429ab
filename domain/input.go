package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Tags decodes either a JSON array of tokens or a pre-joined comma string
// and holds the normalized stored form.
type Tags string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var joined string
	if err := sonic.Unmarshal(data, &joined); err == nil {
		*t = Tags(NormalizeTags(strings.Split(joined, ",")))
		return nil
	}
	var tokens []string
	if err := sonic.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("tags must be a string or an array of strings: %w", err)
	}
	*t = Tags(NormalizeTags(tokens))
	return nil
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	Tags        Tags   `json:"tags"`
	IsCompleted bool   `json:"is_completed"`
	SortOrder   *int64 `json:"sort_order"`
}

// Validate trims the title in place and rejects blank titles.
func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ValidationError("title is required")
	}
	return nil
}

// TaskPatch carries a partial update. A nil field was absent from the
// request body and leaves the stored value untouched; DueDateSet records
// that the due_date key was present so null/"" can clear the stored date.
type TaskPatch struct {
	Title       *string
	Notes       *string
	Priority    *string
	DueDate     *string
	DueDateSet  bool
	Tags        *Tags
	IsCompleted *bool
	SortOrder   *int64
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, raw := range fields {
		switch key {
		case "title":
			var v string
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("title: %w", err)
			}
			v = strings.TrimSpace(v)
			p.Title = &v
		case "notes":
			var v string
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("notes: %w", err)
			}
			p.Notes = &v
		case "priority":
			var v string
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("priority: %w", err)
			}
			v = NormalizePriority(v)
			p.Priority = &v
		case "due_date":
			p.DueDateSet = true
			if string(raw) == "null" {
				p.DueDate = nil
				continue
			}
			var v string
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("due_date: %w", err)
			}
			if v == "" {
				p.DueDate = nil
				continue
			}
			p.DueDate = &v
		case "tags":
			var v Tags
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("tags: %w", err)
			}
			p.Tags = &v
		case "is_completed":
			var v bool
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("is_completed: %w", err)
			}
			p.IsCompleted = &v
		case "sort_order":
			var v int64
			if err := sonic.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("sort_order: %w", err)
			}
			p.SortOrder = &v
		}
	}
	return nil
}

// Apply merges the supplied fields over t. Timestamp fields are the
// store's responsibility and are never touched here.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDateSet {
		if p.DueDate == nil {
			t.DueDate = ""
		} else {
			t.DueDate = *p.DueDate
		}
	}
	if p.Tags != nil {
		t.Tags = string(*p.Tags)
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.SortOrder != nil {
		t.SortOrder = *p.SortOrder
	}
}
