package mcpServer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "chatbot-documents"
	serverVersion = "1.0.0"
)

// Server exposes the document store to the retrieval side over MCP.
type Server struct {
	server    *mcp.Server
	documents documentModel.DocumentStore
	logger    *logger_i.Logger
}

func NewServer(documents documentModel.DocumentStore) *Server {
	s := &Server{
		server:    mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		documents: documents,
		logger:    logger_i.NewLogger("MCPServer"),
	}
	s.registerTools()
	return s
}

// Handler serves the streamable HTTP transport, mount it behind admin auth.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

type ListDocumentsInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"only return documents carrying this tag"`
}

type DocumentSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	ChunkCount int      `json:"chunkCount"`
}

type ListDocumentsOutput struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

type DocumentInput struct {
	ID string `json:"id" jsonschema:"the document id"`
}

// GetDocumentOutput flattens the document, createdAt is RFC 3339.
type GetDocumentOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"`
	ChunkCount int      `json:"chunkCount"`
}

type GetChunksOutput struct {
	ID     string   `json:"id"`
	Chunks []string `json:"chunks"`
	Count  int      `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents in the knowledge store, optionally filtered by tag",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get one document including its full text",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document_chunks",
		Description: "Get the retrieval sized chunks of one document",
	}, s.handleGetChunks)
}

func (s *Server) handleListDocuments(ctx context.Context, _ *mcp.CallToolRequest, input ListDocumentsInput) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		s.logger.Error("list_documents failed", "error", err)
		return nil, ListDocumentsOutput{}, err
	}

	out := ListDocumentsOutput{Documents: make([]DocumentSummary, 0, len(docs))}
	for _, d := range docs {
		if input.Tag != "" && !hasTag(d.Tags, input.Tag) {
			continue
		}
		out.Documents = append(out.Documents, DocumentSummary{ID: d.ID, Title: d.Title, Tags: d.Tags, ChunkCount: d.ChunkCount})
	}
	out.Count = len(out.Documents)
	return nil, out, nil
}

func (s *Server) handleGetDocument(ctx context.Context, _ *mcp.CallToolRequest, input DocumentInput) (*mcp.CallToolResult, GetDocumentOutput, error) {
	doc, found, err := s.documents.GetDocumentByID(ctx, input.ID)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}
	if !found {
		return nil, GetDocumentOutput{}, fmt.Errorf("document %q not found", input.ID)
	}
	return nil, GetDocumentOutput{
		ID:         doc.ID,
		Title:      doc.Title,
		Text:       doc.Text,
		Tags:       doc.Tags,
		CreatedAt:  doc.CreatedAt.Format(time.RFC3339),
		ChunkCount: doc.ChunkCount,
	}, nil
}

func (s *Server) handleGetChunks(ctx context.Context, _ *mcp.CallToolRequest, input DocumentInput) (*mcp.CallToolResult, GetChunksOutput, error) {
	chunks, found, err := s.documents.GetDocumentChunks(ctx, input.ID)
	if err != nil {
		return nil, GetChunksOutput{}, err
	}
	if !found {
		return nil, GetChunksOutput{}, fmt.Errorf("document %q not found", input.ID)
	}
	return nil, GetChunksOutput{ID: input.ID, Chunks: chunks, Count: len(chunks)}, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
