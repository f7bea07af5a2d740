package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerCreateNoteTool(srv, svc)
	registerUpdateNoteTool(srv, svc)
	registerSetCompletedTool(srv, svc)
	registerDeleteNoteTool(srv, svc)
	registerListNotesTool(srv, svc)
	registerSearchNotesTool(srv, svc)
	registerGetNoteTool(srv, svc)
	registerAttachMediaTool(srv, svc)
	registerAgendaTool(srv, svc)
}

var stringItems = map[string]any{"type": "string"}

func registerCreateNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_note",
		mcp.WithDescription("Create a note or a task. Tasks may carry reminders."),
		mcp.WithString("title",
			mcp.Description("Title of the note. Blank titles become \"Untitled\"."),
		),
		mcp.WithString("body",
			mcp.Description("Free text body."),
		),
		mcp.WithString("kind",
			mcp.Description("Whether this is a plain note or a task."),
			mcp.Enum("note", "task"),
		),
		mcp.WithString("due",
			mcp.Description("Optional due time for a task without reminders: RFC3339, \"2006-01-02 15:04\" or relative such as \"+2h\"."),
		),
		mcp.WithArray("reminders",
			mcp.Description("Times at which to remind about a task, in the same formats as due."),
			mcp.Items(stringItems),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args CreateNoteOptions
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.CreateNote(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_note",
		mcp.WithDescription("Change the title, body, kind or reminders of a note. Omitted fields are kept."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Note identifier to modify."),
		),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("body",
			mcp.Description("New body."),
		),
		mcp.WithString("kind",
			mcp.Description("New kind."),
			mcp.Enum("note", "task"),
		),
		mcp.WithArray("reminders",
			mcp.Description("Replacement reminder times. An empty list removes every reminder."),
			mcp.Items(stringItems),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts, err := updateOptions(int64(id), request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.UpdateNote(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

// updateOptions picks the fields present in a tool call.
func updateOptions(id int64, args map[string]any) (UpdateNoteOptions, error) {
	opts := UpdateNoteOptions{ID: id}
	str := func(key string) (*string, error) {
		v, ok := args[key]
		if !ok || v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", key)
		}
		return &s, nil
	}

	var err error
	if opts.Title, err = str("title"); err != nil {
		return opts, err
	}
	if opts.Body, err = str("body"); err != nil {
		return opts, err
	}
	if opts.Kind, err = str("kind"); err != nil {
		return opts, err
	}
	if v, ok := args["reminders"]; ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			return opts, fmt.Errorf("reminders must be a list of strings")
		}
		times := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return opts, fmt.Errorf("reminders must be a list of strings")
			}
			times = append(times, s)
		}
		opts.Reminders = &times
	}
	return opts, nil
}

func registerSetCompletedTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_completed",
		mcp.WithDescription("Mark a task completed, or open again. Completing a task silences its reminders."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithBoolean("completed",
			mcp.Description("True to complete (default), false to reopen."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		completed := request.GetBool("completed", true)

		dto, err := svc.SetCompleted(ctx, int64(id), completed)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_note",
		mcp.WithDescription("Delete a note with its media and reminders."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Note identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteNote(ctx, int64(id)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"id": id, "deleted": true})
	})
}

func registerListNotesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_notes",
		mcp.WithDescription("List notes, newest first."),
		mcp.WithString("category",
			mcp.Description("Optional filter."),
			mcp.Enum("all", "notes", "tasks", "completed"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := strings.TrimSpace(request.GetString("category", "all"))
		results, err := svc.ListNotes(ctx, category)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"category": category,
			"notes":    results,
			"count":    len(results),
		})
	})
}

func registerSearchNotesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_notes",
		mcp.WithDescription("Search notes by substring match across titles and bodies."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive search text."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of notes to return (default 20)."),
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

		results, err := svc.SearchNotes(ctx, query, limit)
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

func registerGetNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_note",
		mcp.WithDescription("Fetch a note with its media and reminders."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Note identifier to fetch."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.NoteByID(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAttachMediaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"attach_media",
		mcp.WithDescription("Attach a photo, video, audio recording or file to a note by URI."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Note identifier."),
		),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("Location of the media."),
		),
		mcp.WithString("kind",
			mcp.Description("Media kind."),
			mcp.Enum("photo", "video", "audio", "file"),
		),
		mcp.WithString("description",
			mcp.Description("Optional caption."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		uri, err := request.RequireString("uri")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.AttachMedia(ctx, int64(id), MediaInput{
			Kind:        request.GetString("kind", ""),
			URI:         uri,
			Description: request.GetString("description", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAgendaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda",
		mcp.WithDescription("List upcoming reminders of open tasks and the tasks already overdue."),
		mcp.WithString("window",
			mcp.Description("How far ahead to look, such as 1d, 1w or 2w3d (default 1w)."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		agenda, err := svc.Agenda(ctx, request.GetString("window", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(agenda)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
