package interpretation

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"tableflip.dev/planner/pkg/task"
)

// ResourceType is the kind of record an item would create.
type ResourceType string

const (
	ResourceTask   ResourceType = "task"
	ResourceEvent  ResourceType = "event"
	ResourceWallet ResourceType = "wallet"
)

// ItemStatus tracks the review state of an item.
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemCreated ItemStatus = "created"
)

// Well known data keys.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDueAt       = "due_at"
	KeyStatus      = "status"
	KeyTags        = "tags"
)

// Item is one reviewable suggestion extracted from an interpretation.
type Item struct {
	ID               string       `json:"id"`
	InterpretationID string       `json:"interpretation_id"`
	Index            int          `json:"item_index"`
	ResourceType     ResourceType `json:"resource_type"`
	ResourceID       *string      `json:"resource_id,omitempty"`
	Status           ItemStatus   `json:"status"`
	Data             Data         `json:"data"`
	OriginalData     Data         `json:"original_data,omitempty"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Editable reports whether the item's data may still change. Created items
// are frozen.
func (i Item) Editable() bool {
	return i.Status != ItemCreated
}

// Data is the open payload of an item. Keys other than the well known ones
// are carried through untouched.
type Data map[string]any

// Clone returns a shallow copy with its own tag slice.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	out := make(Data, len(d))
	for k, v := range d {
		if tags, ok := v.([]string); ok {
			v = append([]string(nil), tags...)
		}
		out[k] = v
	}
	return out
}

func (d Data) str(key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func (d Data) Title() string       { return d.str(KeyTitle) }
func (d Data) Description() string { return d.str(KeyDescription) }
func (d Data) Status() string      { return d.str(KeyStatus) }

// DueAt parses due_at as RFC3339 or a bare date. Unparseable values yield nil.
func (d Data) DueAt() *time.Time {
	raw := strings.TrimSpace(d.str(KeyDueAt))
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := task.ParseDate(raw)
	if err != nil {
		return nil
	}
	return t
}

// Tags returns the tag list whether it was decoded as []any or []string.
func (d Data) Tags() []string {
	if d == nil {
		return nil
	}
	switch v := d[KeyTags].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return SplitTags(v)
	}
	return nil
}

// Set stores value under key. Empty strings and empty lists remove the key.
func (d Data) Set(key string, value any) {
	switch v := value.(type) {
	case nil:
		delete(d, key)
		return
	case string:
		if strings.TrimSpace(v) == "" {
			delete(d, key)
			return
		}
	case []string:
		if len(v) == 0 {
			delete(d, key)
			return
		}
		value = append([]string(nil), v...)
	case []any:
		if len(v) == 0 {
			delete(d, key)
			return
		}
		value = append([]any(nil), v...)
	}
	d[key] = value
}

// Keys returns the keys in a stable order: well known first, then the rest
// sorted.
func (d Data) Keys() []string {
	known := []string{KeyTitle, KeyDescription, KeyDueAt, KeyStatus, KeyTags}
	out := make([]string, 0, len(d))
	seen := make(map[string]bool, len(known))
	for _, k := range known {
		seen[k] = true
		if _, ok := d[k]; ok {
			out = append(out, k)
		}
	}
	var rest []string
	for k := range d {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// SplitTags parses a comma separated tag list, dropping blanks.
func SplitTags(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// UpdateRequest is the body of PATCH /interpretation-items/{id}.
type UpdateRequest struct {
	Data Data `json:"data"`
}

// ApproveRequest is the body of POST /interpretation-items/{id}/approve.
type ApproveRequest struct {
	Data Data `json:"data,omitempty"`
}

// ApproveResponse carries the id of the record the approval created.
type ApproveResponse struct {
	ResourceID string `json:"resource_id"`
}

// BatchApproveRequest is the body of POST /interpretations/{id}/approve-items.
type BatchApproveRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// BatchApproveResponse lists the created resource ids in request order.
type BatchApproveResponse struct {
	ResourceIDs []string `json:"resource_ids"`
}

// ItemsResponse wraps GET /interpretations/{id}/items.
type ItemsResponse struct {
	Items []Item `json:"items"`
}
