// Package interpretation defines the AI interpretation records returned by
// the planner API and the reviewable items extracted from them.
package interpretation

import (
	"fmt"
	"strings"
	"time"
)

// Type classifies what the assistant thinks the input was.
type Type string

const (
	TypeTodo     Type = "todo"
	TypeReminder Type = "reminder"
	TypeQuestion Type = "question"
	TypeOther    Type = "other"
)

// Priority is the assistant's urgency estimate.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Metadata carries the extracted details of a structured result.
type Metadata struct {
	Priority Priority `json:"priority,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// DeadlineDate returns the local calendar date of the deadline. Both RFC3339
// timestamps and bare dates are accepted; anything else yields nil.
func (m *Metadata) DeadlineDate() *time.Time {
	if m == nil {
		return nil
	}
	raw := strings.TrimSpace(m.Deadline)
	if raw == "" {
		return nil
	}
	if len(raw) >= 10 {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			t = t.Local()
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
			return &day
		}
		if t, err := time.ParseInLocation("2006-01-02", raw[:10], time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// Summary renders the result as the markdown shown in the assistant
// transcript.
func (r StructuredResult) Summary() string {
	var b strings.Builder
	b.WriteString("I've analyzed your input:\n\n")
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "**%s:** %s\n\n", label, value)
		}
	}
	field("Title", r.Title)
	field("Description", r.Description)
	field("Type", string(r.Type))
	if m := r.Metadata; m != nil {
		b.WriteString("**Details:**\n")
		if m.Priority != "" {
			fmt.Fprintf(&b, "- Priority: %s\n", m.Priority)
		}
		if d := m.DeadlineDate(); d != nil {
			fmt.Fprintf(&b, "- Deadline: %s\n", d.Format("2006-01-02"))
		}
		if len(m.Tags) > 0 {
			fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(m.Tags, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// StructuredResult is the assistant's suggestion for one input.
type StructuredResult struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Type        Type      `json:"type,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// Interpretation is one stored analysis of a free-text input. It is
// immutable once created.
type Interpretation struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id,omitempty"`
	InputText        string           `json:"input_text"`
	StructuredResult StructuredResult `json:"structured_result"`
	AIModel          string           `json:"ai_model,omitempty"`
	PromptTokens     *int             `json:"ai_prompt_tokens,omitempty"`
	CompletionTokens *int             `json:"ai_completion_tokens,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Response is returned by POST /interpretations.
type Response struct {
	Type           Type           `json:"type"`
	Interpretation Interpretation `json:"interpretation"`
	Message        string         `json:"message,omitempty"`
}

// Page is one page of GET /interpretations.
type Page struct {
	Interpretations []Interpretation `json:"interpretations"`
	Total           int              `json:"total"`
	Limit           int              `json:"limit"`
	Offset          int              `json:"offset"`
}

// HasMore reports whether another page follows this one.
func (p Page) HasMore() bool {
	return p.Offset+len(p.Interpretations) < p.Total
}

// CreateRequest is the body of POST /interpretations.
type CreateRequest struct {
	InputText string `json:"input_text"`
}
