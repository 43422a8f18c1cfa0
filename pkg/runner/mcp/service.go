// Package mcp exposes the planner's tasks and interpretations over the Model
// Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/task"
)

// API is the part of the REST client the MCP server needs.
type API interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	PatchTask(ctx context.Context, id string, p task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error

	Interpret(ctx context.Context, text string) (interpretation.Response, error)
	ListInterpretations(ctx context.Context, limit, offset int) (interpretation.Page, error)
	ListItems(ctx context.Context, interpretationID string) ([]interpretation.Item, error)
	ApproveItem(ctx context.Context, id string, data interpretation.Data) (string, error)
}

// Service wraps the API with the validation shared by tools and resources.
type Service struct {
	API API
}

// BoardSummary counts tasks per status.
type BoardSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
	Overdue  int            `json:"overdue"`
}

// InterpretResult is an interpretation together with its suggestions.
type InterpretResult struct {
	Interpretation interpretation.Interpretation `json:"interpretation"`
	Message        string                        `json:"message,omitempty"`
	Items          []interpretation.Item         `json:"items"`
}

// UpdateTaskOptions carries the optional fields of update_task. Nil leaves
// a field unchanged; an empty description or due clears it.
type UpdateTaskOptions struct {
	Title       *string
	Description *string
	Due         *string
	Status      *string
}

func NewService(api API) *Service {
	return &Service{API: api}
}

func (s *Service) ready() error {
	if s.API == nil {
		return errors.New("planner api is not configured")
	}
	return nil
}

// ListTasks returns tasks sorted by due date then title, optionally
// filtered to one status.
func (s *Service) ListTasks(ctx context.Context, status string) ([]task.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var want task.Status
	if strings.TrimSpace(status) != "" {
		st, err := task.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		want = st
	}
	all, err := s.API.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]task.Task, 0, len(all))
	for _, t := range all {
		if want == "" || t.Status == want {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

// SearchTasks matches query against titles and descriptions.
func (s *Service) SearchTasks(ctx context.Context, query string, limit int) ([]task.Task, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	all, err := s.ListTasks(ctx, "")
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var out []task.Task
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), needle) || strings.Contains(strings.ToLower(t.DescriptionText()), needle) {
			out = append(out, t)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context) (BoardSummary, error) {
	all, err := s.ListTasks(ctx, "")
	if err != nil {
		return BoardSummary{}, err
	}
	sum := BoardSummary{Total: len(all), ByStatus: map[string]int{}}
	today := startOfToday()
	for _, t := range all {
		sum.ByStatus[string(t.Status)]++
		if t.DueAt != nil && t.Status != task.StatusDone && t.DueAt.Before(today) {
			sum.Overdue++
		}
	}
	return sum, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (task.Task, error) {
	if err := s.ready(); err != nil {
		return task.Task{}, err
	}
	if id == "" {
		return task.Task{}, errors.New("id is required")
	}
	return s.API.GetTask(ctx, id)
}

// CreateTask validates and creates a task. due is YYYY-MM-DD or empty.
func (s *Service) CreateTask(ctx context.Context, title, description, due, status string) (task.Task, error) {
	if err := s.ready(); err != nil {
		return task.Task{}, err
	}
	d := task.Draft{Title: strings.TrimSpace(title), Description: task.StringPtr(description)}
	dueAt, err := task.ParseDate(due)
	if err != nil {
		return task.Task{}, err
	}
	d.DueAt = dueAt
	if strings.TrimSpace(status) != "" {
		st, err := task.ParseStatus(status)
		if err != nil {
			return task.Task{}, err
		}
		d.Status = st
	}
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	return s.API.CreateTask(ctx, d)
}

func (s *Service) UpdateTask(ctx context.Context, id string, opts UpdateTaskOptions) (task.Task, error) {
	if err := s.ready(); err != nil {
		return task.Task{}, err
	}
	if id == "" {
		return task.Task{}, errors.New("id is required")
	}
	var p task.Patch
	if opts.Title != nil {
		title := strings.TrimSpace(*opts.Title)
		if title == "" {
			return task.Task{}, task.ErrTitleRequired
		}
		p.Title = &title
	}
	if opts.Description != nil {
		if d := task.StringPtr(*opts.Description); d != nil {
			p.Description = d
		} else {
			p.ClearDescription = true
		}
	}
	if opts.Due != nil {
		due, err := task.ParseDate(*opts.Due)
		if err != nil {
			return task.Task{}, err
		}
		if due != nil {
			p.DueAt = due
		} else {
			p.ClearDue = true
		}
	}
	if opts.Status != nil {
		st, err := task.ParseStatus(*opts.Status)
		if err != nil {
			return task.Task{}, err
		}
		p.Status = &st
	}
	if p.Empty() {
		return task.Task{}, errors.New("nothing to update")
	}
	return s.API.PatchTask(ctx, id, p)
}

func (s *Service) CompleteTask(ctx context.Context, id string) (task.Task, error) {
	done := string(task.StatusDone)
	return s.UpdateTask(ctx, id, UpdateTaskOptions{Status: &done})
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if id == "" {
		return errors.New("id is required")
	}
	return s.API.DeleteTask(ctx, id)
}

// Interpret submits text and fetches the suggestions extracted from it.
func (s *Service) Interpret(ctx context.Context, text string) (InterpretResult, error) {
	if err := s.ready(); err != nil {
		return InterpretResult{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return InterpretResult{}, errors.New("text is required")
	}
	resp, err := s.API.Interpret(ctx, text)
	if err != nil {
		return InterpretResult{}, err
	}
	items, err := s.API.ListItems(ctx, resp.Interpretation.ID)
	if err != nil {
		return InterpretResult{}, fmt.Errorf("interpretation %s created but items failed: %w", resp.Interpretation.ID, err)
	}
	return InterpretResult{Interpretation: resp.Interpretation, Message: resp.Message, Items: items}, nil
}

func (s *Service) History(ctx context.Context, limit, offset int) (interpretation.Page, error) {
	if err := s.ready(); err != nil {
		return interpretation.Page{}, err
	}
	return s.API.ListInterpretations(ctx, limit, offset)
}

func (s *Service) Items(ctx context.Context, interpretationID string) ([]interpretation.Item, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if interpretationID == "" {
		return nil, errors.New("interpretation id is required")
	}
	return s.API.ListItems(ctx, interpretationID)
}

// ApproveItem turns a pending suggestion into a task and returns its id.
func (s *Service) ApproveItem(ctx context.Context, id string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("item id is required")
	}
	return s.API.ApproveItem(ctx, id, nil)
}

func sortTasks(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueAt, tasks[j].DueAt
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
	})
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}
