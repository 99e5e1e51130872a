package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/ingest"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

// JsonDocumentStore keeps every document in one JSON file. The file is the only copy:
// each call re-reads it. Mutations hold the write lock for the whole
// read-modify-write and replace the file with a rename so readers never see half a file.
type JsonDocumentStore struct {
	path   string
	mu     sync.RWMutex
	logger *logger_i.Logger
	now    func() time.Time
}

var _ documentModel.DocumentStore = (*JsonDocumentStore)(nil)

func NewJsonDocumentStore(path string) (*JsonDocumentStore, error) {
	s := &JsonDocumentStore{
		path:   path,
		logger: logger_i.NewLogger("JsonDocumentStore"),
		now:    time.Now,
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, commonModels.StorageError("could not create document directory", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("Creating empty document store", "path", path)
		if err := s.save(documentModel.DocumentFile{Documents: []documentModel.Document{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, commonModels.StorageError("could not stat document store", err)
	}

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	metrics.SetStoredDocuments(len(file.Documents))
	return s, nil
}

func (s *JsonDocumentStore) AddDocument(ctx context.Context, newDoc documentModel.NewDocument) (documentModel.AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return documentModel.AddResult{}, err
	}

	result := buildDocument(newDoc, s.now())
	file.Documents = append(file.Documents, result.Doc)
	if err := s.save(file); err != nil {
		return documentModel.AddResult{}, err
	}

	s.logger.WithTrace(ctx).Info("Document stored", "id", result.ID, "chunks", result.Doc.ChunkCount)
	metrics.SetStoredDocuments(len(file.Documents))
	return result, nil
}

func (s *JsonDocumentStore) ListDocuments(ctx context.Context) ([]documentModel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.Documents, nil
}

func (s *JsonDocumentStore) GetAllDocuments(ctx context.Context) ([]documentModel.Document, error) {
	return s.ListDocuments(ctx)
}

func (s *JsonDocumentStore) GetDocumentByID(ctx context.Context, id string) (documentModel.Document, bool, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return documentModel.Document{}, false, err
	}
	for _, d := range docs {
		if d.ID == id {
			return d, true, nil
		}
	}
	return documentModel.Document{}, false, nil
}

func (s *JsonDocumentStore) GetDocumentText(ctx context.Context, id string) (string, bool, error) {
	doc, found, err := s.GetDocumentByID(ctx, id)
	if err != nil || !found {
		return "", found, err
	}
	return doc.Text, true, nil
}

func (s *JsonDocumentStore) GetDocumentChunks(ctx context.Context, id string) ([]string, bool, error) {
	doc, found, err := s.GetDocumentByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	return ingest.ChunkText(doc.Text, config.MaxChunkLength), true, nil
}

func (s *JsonDocumentStore) DeleteDocument(ctx context.Context, id string) (documentModel.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return documentModel.Document{}, err
	}

	index := -1
	for i, d := range file.Documents {
		if d.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return documentModel.Document{}, commonModels.NotFoundError("Document not found", commonModels.ErrDocumentNotFound)
	}

	removed := file.Documents[index]
	file.Documents = append(file.Documents[:index], file.Documents[index+1:]...)
	if err := s.save(file); err != nil {
		return documentModel.Document{}, err
	}

	s.logger.WithTrace(ctx).Info("Document deleted", "id", id)
	metrics.SetStoredDocuments(len(file.Documents))
	return removed, nil
}

func (s *JsonDocumentStore) ClearAllDocuments(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return 0, err
	}
	count := len(file.Documents)
	if err := s.save(documentModel.DocumentFile{Documents: []documentModel.Document{}}); err != nil {
		return 0, err
	}

	s.logger.WithTrace(ctx).Info("Document store cleared", "removed", count)
	metrics.SetStoredDocuments(0)
	return count, nil
}

func (s *JsonDocumentStore) Close() error {
	return nil
}

// load must be called with s.mu held. A missing file reads as empty, anything else
// unreadable is surfaced so a corrupt file is never overwritten with an empty one.
func (s *JsonDocumentStore) load() (documentModel.DocumentFile, error) {
	var file documentModel.DocumentFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return documentModel.DocumentFile{Documents: []documentModel.Document{}}, nil
	}
	if err != nil {
		s.logger.Error("Could not read document store", "path", s.path, "error", err)
		return file, commonModels.StorageError("could not read document store", err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Error("Document store is corrupt", "path", s.path, "error", err)
		return file, commonModels.StorageError("document store is corrupt", err)
	}
	if file.Documents == nil {
		file.Documents = []documentModel.Document{}
	}
	return file, nil
}

// save must be called with the write lock held.
func (s *JsonDocumentStore) save(file documentModel.DocumentFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return commonModels.StorageError("could not encode documents", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		s.logger.Error("Could not write document store", "path", s.path, "error", err)
		return commonModels.StorageError("could not write document store", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".documents-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
