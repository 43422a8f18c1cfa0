package api

import (
	"context"
	"net/http"
	"net/url"

	"tableflip.dev/planner/pkg/task"
)

// ListTasks returns every task of the current user in server order.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var out []task.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// CreateTask posts a new task and returns the server record.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPost, "/tasks", nil, d, &out)
	return out, err
}

// ReplaceTask performs a full update.
func (c *Client) ReplaceTask(ctx context.Context, id string, r task.Replace) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, r, &out)
	return out, err
}

// PatchTask performs a partial update.
func (c *Client) PatchTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}
