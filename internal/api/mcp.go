package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/vfkb/internal/kb"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Client *kb.Client
}

// NewMCPServer creates an MCP server exposing the knowledge base as tools
// and resources, so agent runtimes can query and manage documents.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"vfkb",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("vfkb — Voiceflow knowledge base access: ask questions, list and inspect documents, add web pages, delete documents."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("query_knowledge_base",
			mcp.WithDescription("Ask the knowledge base a question and get relevant chunks plus an optional synthesized answer."),
			mcp.WithString("question", mcp.Description("The question to ask"), mcp.Required()),
			mcp.WithNumber("chunk_limit", mcp.Description("Maximum number of chunks to retrieve (default 5)")),
			mcp.WithBoolean("synthesis", mcp.Description("Synthesize an answer from the chunks (default true)")),
		),
		mcpQuery(deps),
	)

	s.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List documents in the knowledge base."),
			mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
			mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
		),
		mcpListDocuments(deps),
	)

	s.AddTool(
		mcp.NewTool("get_document",
			mcp.WithDescription("Fetch a document's name, type, status and metadata by ID."),
			mcp.WithString("document_id", mcp.Description("The document ID"), mcp.Required()),
		),
		mcpGetDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("upload_url",
			mcp.WithDescription("Add a web page to the knowledge base by URL."),
			mcp.WithString("url", mcp.Description("The page URL"), mcp.Required()),
			mcp.WithString("name", mcp.Description("Optional display name for the document")),
		),
		mcpUploadURL(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_document",
			mcp.WithDescription("Delete a document from the knowledge base."),
			mcp.WithString("document_id", mcp.Description("The document ID"), mcp.Required()),
		),
		mcpDeleteDocument(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"vfkb://documents",
			"Knowledge Base Documents",
			mcp.WithResourceDescription("First page of the document list as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceDocuments(deps),
	)

	return s
}

func mcpQuery(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		opts := kb.DefaultQueryOptions()
		opts.ChunkLimit = req.GetInt("chunk_limit", opts.ChunkLimit)
		opts.Synthesis = req.GetBool("synthesis", opts.Synthesis)

		result, err := deps.Client.Query(ctx, question, opts)
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListDocuments(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}
		if limit > 500 {
			limit = 500
		}
		offset := req.GetInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		docs, err := deps.Client.List(ctx, limit, offset)
		if err != nil {
			return mcpError(fmt.Sprintf("list failed: %v", err)), nil
		}

		b, err := json.Marshal(docs)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal documents: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("document_id")
		if err != nil {
			return mcpError("document_id is required"), nil
		}

		doc, err := deps.Client.Get(ctx, id)
		if err != nil {
			return mcpError(fmt.Sprintf("get failed: %v", err)), nil
		}

		b, err := json.Marshal(doc)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal document: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpUploadURL(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawurl, err := req.RequireString("url")
		if err != nil {
			return mcpError("url is required"), nil
		}
		name := req.GetString("name", "")

		doc, err := deps.Client.UploadURL(ctx, rawurl, name, kb.UploadOptions{})
		if err != nil {
			return mcpError(fmt.Sprintf("upload failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Uploaded %s as document %s", rawurl, doc.DocumentID)), nil
	}
}

func mcpDeleteDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("document_id")
		if err != nil {
			return mcpError("document_id is required"), nil
		}

		if err := deps.Client.Delete(ctx, id); err != nil {
			return mcpError(fmt.Sprintf("delete failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Deleted document %s", id)), nil
	}
}

func mcpResourceDocuments(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		docs, err := deps.Client.List(ctx, 50, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		b, err := json.Marshal(docs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal documents: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
