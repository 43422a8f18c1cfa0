package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/planner/pkg/task"
)

func statusEnum() []string {
	out := make([]string, 0, 3)
	for _, s := range task.AllStatuses() {
		out = append(out, string(s))
	}
	return out
}

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListTasksTool(srv, svc)
	registerSearchTasksTool(srv, svc)
	registerGetTaskTool(srv, svc)
	registerCreateTaskTool(srv, svc)
	registerUpdateTaskTool(srv, svc)
	registerCompleteTaskTool(srv, svc)
	registerDeleteTaskTool(srv, svc)
	registerInterpretTool(srv, svc)
	registerListItemsTool(srv, svc)
	registerApproveItemTool(srv, svc)
}

func registerListTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks ordered by due date, optionally filtered by status."),
		mcp.WithString("status",
			mcp.Description("Only return tasks with this status."),
			mcp.Enum(statusEnum()...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := request.GetString("status", "")
		tasks, err := svc.ListTasks(ctx, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"status": status,
			"tasks":  tasks,
			"count":  len(tasks),
		})
	})
}

func registerSearchTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_tasks",
		mcp.WithDescription("Search tasks by substring match across titles and descriptions."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive search text."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return (default 20)."),
			mcp.Min(1),
			mcp.Max(100),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := request.GetInt("limit", 20)

		results, err := svc.SearchTasks(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"query":   query,
			"limit":   limit,
			"results": results,
			"count":   len(results),
		})
	})
}

func registerGetTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_task",
		mcp.WithDescription("Fetch a single task by identifier."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier to fetch."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := svc.GetTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerCreateTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_task",
		mcp.WithDescription("Create a new task."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title."),
		),
		mcp.WithString("description",
			mcp.Description("Optional longer description."),
		),
		mcp.WithString("due",
			mcp.Description("Optional due date as YYYY-MM-DD."),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (default todo)."),
			mcp.Enum(statusEnum()...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Due         string `json:"due"`
			Status      string `json:"status"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		t, err := svc.CreateTask(ctx, args.Title, args.Description, args.Due, args.Status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerUpdateTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_task",
		mcp.WithDescription("Change some fields of a task. Pass an empty description or due to clear it."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier to update."),
		),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("description", mcp.Description("New description.")),
		mcp.WithString("due", mcp.Description("New due date as YYYY-MM-DD.")),
		mcp.WithString("status",
			mcp.Description("New status."),
			mcp.Enum(statusEnum()...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID          string  `json:"id"`
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Due         *string `json:"due"`
			Status      *string `json:"status"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		t, err := svc.UpdateTask(ctx, args.ID, UpdateTaskOptions{
			Title:       args.Title,
			Description: args.Description,
			Due:         args.Due,
			Status:      args.Status,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerCompleteTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"complete_task",
		mcp.WithDescription("Mark a task as done."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier to complete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := svc.CompleteTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerDeleteTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task permanently."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"id": id, "deleted": true})
	})
}

func registerInterpretTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"interpret",
		mcp.WithDescription("Ask the planner assistant to interpret free text into suggested tasks."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What needs doing, in plain language."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.Interpret(ctx, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerListItemsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_items",
		mcp.WithDescription("List the suggestions extracted from an interpretation."),
		mcp.WithString("interpretation_id",
			mcp.Required(),
			mcp.Description("Interpretation identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("interpretation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		items, err := svc.Items(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"interpretationId": id,
			"items":            items,
			"count":            len(items),
		})
	})
}

func registerApproveItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"approve_item",
		mcp.WithDescription("Approve a pending suggestion, creating the task it describes."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Item identifier to approve."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resourceID, err := svc.ApproveItem(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"id": id, "resourceId": resourceID})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
