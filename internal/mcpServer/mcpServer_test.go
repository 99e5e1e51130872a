package mcpServer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/akolanti/ChatbotAPI/internal/data/store"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, documentModel.DocumentStore) {
	t.Helper()
	docs, err := store.NewJsonDocumentStore(filepath.Join(t.TempDir(), "documents.json"))
	require.NoError(t, err)
	return NewServer(docs), docs
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()
	server, docs := newTestServer(t)
	_, err := docs.AddDocument(ctx, documentModel.NewDocument{Title: "FAQ", Text: "Open nine to five.", Tags: []string{"faq"}})
	require.NoError(t, err)
	_, err = docs.AddDocument(ctx, documentModel.NewDocument{Title: "Returns", Text: "Thirty days."})
	require.NoError(t, err)

	_, out, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	_, out, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{Tag: "faq"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "FAQ", out.Documents[0].Title)
}

func TestServer_handleGetDocumentAndChunks(t *testing.T) {
	ctx := context.Background()
	server, docs := newTestServer(t)
	res, err := docs.AddDocument(ctx, documentModel.NewDocument{Title: "FAQ", Text: "Open nine to five."})
	require.NoError(t, err)

	_, doc, err := server.handleGetDocument(ctx, nil, DocumentInput{ID: res.ID})
	require.NoError(t, err)
	assert.Equal(t, "Open nine to five.", doc.Text)

	_, chunks, err := server.handleGetChunks(ctx, nil, DocumentInput{ID: res.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, chunks.Count)

	_, _, err = server.handleGetDocument(ctx, nil, DocumentInput{ID: "missing"})
	assert.Error(t, err)
	_, _, err = server.handleGetChunks(ctx, nil, DocumentInput{ID: "missing"})
	assert.Error(t, err)
}

func TestServer_Handler(t *testing.T) {
	server, _ := newTestServer(t)
	assert.NotNil(t, server.Handler())
}
