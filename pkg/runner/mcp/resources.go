package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/notes/pkg/timeutil"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerNotesResource(srv, svc)
	registerAgendaResource(srv, svc)
	registerCategoryTemplate(srv, svc)
	registerNoteTemplate(srv, svc)
}

func registerNotesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"notes://notes",
		"Notes",
		mcp.WithResourceDescription("Every note and task, newest first."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		notes, err := svc.ListNotes(ctx, "all")
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"notes": notes,
			"count": len(notes),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerAgendaResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"notes://agenda",
		"Agenda",
		mcp.WithResourceDescription("Upcoming reminders of open tasks for the next "+timeutil.DefaultWindow+"."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		agenda, err := svc.Agenda(ctx, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, agenda)
	})
}

func registerCategoryTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"notes://category/{name}",
		"Notes by Category",
		mcp.WithTemplateDescription("Notes of one category: all, notes, tasks or completed."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name := templateArg(request.Params.Arguments, "name")
		if name == "" {
			return nil, fmt.Errorf("category name is required")
		}

		notes, err := svc.ListNotes(ctx, name)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"category": name,
			"count":    len(notes),
			"notes":    notes,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerNoteTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"notes://notes/{id}",
		"Note Details",
		mcp.WithTemplateDescription("A single note with its media and reminders."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := templateArg(request.Params.Arguments, "id")
		if raw == "" {
			return nil, fmt.Errorf("note id is required")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid note id %q", raw)
		}

		dto, err := svc.NoteByID(ctx, id)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"note": dto,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

// templateArg reads a URI template variable, which arrives as a string or a
// list of strings depending on the template expansion.
func templateArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
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
