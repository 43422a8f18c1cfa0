package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerTasksResource(srv, svc)
	registerSummaryResource(srv, svc)
	registerHistoryResource(srv, svc)
	registerTaskTemplate(srv, svc)
	registerItemsTemplate(srv, svc)
}

func registerTasksResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"planner://tasks",
		"Tasks",
		mcp.WithResourceDescription("Every task on the board ordered by due date."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		tasks, err := svc.ListTasks(ctx, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
	})
}

func registerSummaryResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"planner://summary",
		"Board Summary",
		mcp.WithResourceDescription("Task counts per status and the number of overdue tasks."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sum, err := svc.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, sum)
	})
}

func registerHistoryResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"planner://interpretations",
		"Interpretation History",
		mcp.WithResourceDescription("The most recent assistant interpretations."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		page, err := svc.History(ctx, 20, 0)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, page)
	})
}

func registerTaskTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"planner://tasks/{id}",
		"Task Details",
		mcp.WithTemplateDescription("Detailed information about a single task."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("task id is required")
		}
		t, err := svc.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"task": t})
	})
}

func registerItemsTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"planner://interpretations/{id}/items",
		"Interpretation Items",
		mcp.WithTemplateDescription("Suggestions extracted from one interpretation."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("interpretation id is required")
		}
		items, err := svc.Items(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"interpretationId": id,
			"items":            items,
			"count":            len(items),
		})
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
