package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"tableflip.dev/planner/pkg/interpretation"
)

// DefaultPageSize is used when History is called with a non-positive limit.
const DefaultPageSize = 20

// Interpret submits free text for analysis.
func (c *Client) Interpret(ctx context.Context, text string) (interpretation.Response, error) {
	var out interpretation.Response
	err := c.do(ctx, http.MethodPost, "/interpretations", nil, interpretation.CreateRequest{InputText: text}, &out)
	return out, err
}

// ListInterpretations pages through previous interpretations, newest first.
func (c *Client) ListInterpretations(ctx context.Context, limit, offset int) (interpretation.Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out interpretation.Page
	err := c.do(ctx, http.MethodGet, "/interpretations", q, nil, &out)
	return out, err
}

// GetInterpretation fetches one interpretation.
func (c *Client) GetInterpretation(ctx context.Context, id string) (interpretation.Interpretation, error) {
	var out interpretation.Interpretation
	err := c.do(ctx, http.MethodGet, "/interpretations/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// ListItems returns the reviewable items of an interpretation.
func (c *Client) ListItems(ctx context.Context, interpretationID string) ([]interpretation.Item, error) {
	var out interpretation.ItemsResponse
	if err := c.do(ctx, http.MethodGet, "/interpretations/"+url.PathEscape(interpretationID)+"/items", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetItem fetches one item.
func (c *Client) GetItem(ctx context.Context, id string) (interpretation.Item, error) {
	var out interpretation.Item
	err := c.do(ctx, http.MethodGet, "/interpretation-items/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// UpdateItem persists edited item data without approving it.
func (c *Client) UpdateItem(ctx context.Context, id string, data interpretation.Data) (interpretation.Item, error) {
	var out interpretation.Item
	err := c.do(ctx, http.MethodPatch, "/interpretation-items/"+url.PathEscape(id), nil, interpretation.UpdateRequest{Data: data}, &out)
	return out, err
}

// ApproveItem approves an item with the given data and returns the id of
// the created resource. A nil data approves the stored payload.
func (c *Client) ApproveItem(ctx context.Context, id string, data interpretation.Data) (string, error) {
	var out interpretation.ApproveResponse
	var body any
	if data != nil {
		body = interpretation.ApproveRequest{Data: data}
	}
	if err := c.do(ctx, http.MethodPost, "/interpretation-items/"+url.PathEscape(id)+"/approve", nil, body, &out); err != nil {
		return "", err
	}
	if out.ResourceID == "" {
		return "", ErrNoResource
	}
	return out.ResourceID, nil
}

// ApproveItems approves several items of one interpretation in one call.
func (c *Client) ApproveItems(ctx context.Context, interpretationID string, itemIDs []string) ([]string, error) {
	var out interpretation.BatchApproveResponse
	body := interpretation.BatchApproveRequest{ItemIDs: itemIDs}
	if err := c.do(ctx, http.MethodPost, "/interpretations/"+url.PathEscape(interpretationID)+"/approve-items", nil, body, &out); err != nil {
		return nil, err
	}
	return out.ResourceIDs, nil
}
