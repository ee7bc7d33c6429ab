package domain

import "strings"

// Priority levels a task can carry.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Status values accepted by list filters.
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Task represents a single tracked to-do item.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	Tags        string `json:"tags"`
	IsCompleted bool   `json:"is_completed"`
	SortOrder   int64  `json:"sort_order"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
	DeletedAt   *int64 `json:"deleted_at,omitempty"`
}

// Deleted reports whether the task has been soft-deleted.
func (t Task) Deleted() bool { return t.DeletedAt != nil }

// Filter narrows List results. The zero value matches every active task.
type Filter struct {
	Query    string
	Status   string // StatusAll when empty
	Priority string // any priority when empty
	Tag      string // whole-token match when non-empty
}

// IsZero reports whether no filter fields are set.
func (f Filter) IsZero() bool { return f == Filter{} }

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// NormalizePriority lowercases and trims p, falling back to PriorityMedium
// for anything outside the accepted set.
func NormalizePriority(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if ValidPriority(p) {
		return p
	}
	return PriorityMedium
}

// NormalizeTags turns raw tag tokens into the stored comma-joined form:
// tokens are trimmed, empties dropped and duplicates removed keeping the
// first occurrence.
func NormalizeTags(tokens []string) string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return strings.Join(out, ",")
}

// HasTag reports whether the comma-joined tag list contains tag as a whole
// token. Matching is by token, never by substring, so "art" does not match
// a task tagged "cart".
func HasTag(joined, tag string) bool {
	if joined == "" || tag == "" {
		return false
	}
	for _, tok := range strings.Split(joined, ",") {
		if strings.TrimSpace(tok) == tag {
			return true
		}
	}
	return false
}
