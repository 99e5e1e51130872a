package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/akolanti/ChatbotAPI/internal/data/store"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) documentModel.DocumentStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"json": func(t *testing.T) documentModel.DocumentStore {
			s, err := store.NewJsonDocumentStore(filepath.Join(t.TempDir(), "data", "documents.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) documentModel.DocumentStore {
			s, err := store.NewSqliteDocumentStore(filepath.Join(t.TempDir(), "documents.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestDocumentStore_AddAndList(t *testing.T) {
	ctx := context.Background()
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)

			res, err := s.AddDocument(ctx, documentModel.NewDocument{Title: "  FAQ  ", Text: "Opening hours are 9 to 5.", Tags: []string{" hours ", ""}})
			require.NoError(t, err)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, res.ID, res.Doc.ID)
			assert.Equal(t, "FAQ", res.Doc.Title)
			assert.Equal(t, []string{"hours"}, res.Doc.Tags)
			assert.Equal(t, []string{"Opening hours are 9 to 5."}, res.Chunks)
			assert.Equal(t, 1, res.Doc.ChunkCount)

			second, err := s.AddDocument(ctx, documentModel.NewDocument{Title: "Returns", Text: "Returns within 30 days."})
			require.NoError(t, err)
			assert.NotEqual(t, res.ID, second.ID)
			assert.NotNil(t, second.Doc.Tags)

			docs, err := s.ListDocuments(ctx)
			require.NoError(t, err)
			require.Len(t, docs, 2)
			assert.Equal(t, res.ID, docs[0].ID)
			assert.Equal(t, second.ID, docs[1].ID)

			all, err := s.GetAllDocuments(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestDocumentStore_Lookups(t *testing.T) {
	ctx := context.Background()
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			long := strings.Repeat("This sentence is padding for the chunker. ", 80)
			res, err := s.AddDocument(ctx, documentModel.NewDocument{Title: "Long", Text: long})
			require.NoError(t, err)
			assert.Greater(t, res.Doc.ChunkCount, 1)

			doc, found, err := s.GetDocumentByID(ctx, res.ID)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "Long", doc.Title)
			assert.True(t, doc.CreatedAt.Equal(res.Doc.CreatedAt))

			text, found, err := s.GetDocumentText(ctx, res.ID)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, long, text)

			chunks, found, err := s.GetDocumentChunks(ctx, res.ID)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, res.Chunks, chunks)

			_, found, err = s.GetDocumentByID(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)
			_, found, err = s.GetDocumentText(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)
			_, found, err = s.GetDocumentChunks(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestDocumentStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			a, err := s.AddDocument(ctx, documentModel.NewDocument{Title: "A", Text: "a."})
			require.NoError(t, err)
			_, err = s.AddDocument(ctx, documentModel.NewDocument{Title: "B", Text: "b."})
			require.NoError(t, err)

			_, err = s.DeleteDocument(ctx, "missing")
			require.Error(t, err)
			assert.True(t, errors.Is(err, commonModels.ErrDocumentNotFound))
			assert.Equal(t, commonModels.KindNotFound, commonModels.KindOf(err))
			docs, err := s.ListDocuments(ctx)
			require.NoError(t, err)
			assert.Len(t, docs, 2)

			removed, err := s.DeleteDocument(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, "A", removed.Title)
			_, found, err := s.GetDocumentByID(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, found)

			n, err := s.ClearAllDocuments(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			docs, err = s.ListDocuments(ctx)
			require.NoError(t, err)
			assert.Empty(t, docs)

			n, err = s.ClearAllDocuments(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)
		})
	}
}

func TestDocumentStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			const writers = 20
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.AddDocument(ctx, documentModel.NewDocument{Title: "doc", Text: "Same text."})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			docs, err := s.ListDocuments(ctx)
			require.NoError(t, err)
			assert.Len(t, docs, writers)
			seen := map[string]bool{}
			for _, d := range docs {
				assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
				seen[d.ID] = true
			}
		})
	}
}

func TestJsonDocumentStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.json")

	first, err := store.NewJsonDocumentStore(path)
	require.NoError(t, err)
	res, err := first.AddDocument(ctx, documentModel.NewDocument{Title: "Kept", Text: "Survives restarts."})
	require.NoError(t, err)

	second, err := store.NewJsonDocumentStore(path)
	require.NoError(t, err)
	doc, found, err := second.GetDocumentByID(ctx, res.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Kept", doc.Title)
}

func TestJsonDocumentStore_MissingFileReadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.json")
	s, err := store.NewJsonDocumentStore(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestJsonDocumentStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.json")
	s, err := store.NewJsonDocumentStore(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err = s.ListDocuments(ctx)
	require.Error(t, err)
	assert.Equal(t, commonModels.KindStorage, commonModels.KindOf(err))

	_, err = s.AddDocument(ctx, documentModel.NewDocument{Title: "x", Text: "y"})
	require.Error(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw), "corrupt file must not be overwritten")

	_, err = store.NewJsonDocumentStore(path)
	assert.Error(t, err)
}
