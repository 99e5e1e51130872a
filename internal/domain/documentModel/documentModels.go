package documentModel

import (
	"context"
	"time"
)

// Document is immutable once stored.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	ChunkCount int       `json:"chunkCount"`
}

type NewDocument struct {
	Title string
	Text  string
	Tags  []string
}

type AddResult struct {
	ID     string
	Chunks []string
	Doc    Document
}

// DocumentFile is the on-disk shape of the JSON store.
type DocumentFile struct {
	Documents []Document `json:"documents"`
}

type DocumentStore interface {
	AddDocument(ctx context.Context, doc NewDocument) (AddResult, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	GetAllDocuments(ctx context.Context) ([]Document, error)
	GetDocumentByID(ctx context.Context, id string) (Document, bool, error)
	GetDocumentText(ctx context.Context, id string) (string, bool, error)
	GetDocumentChunks(ctx context.Context, id string) ([]string, bool, error)
	DeleteDocument(ctx context.Context, id string) (Document, error)
	ClearAllDocuments(ctx context.Context) (int, error)
	Close() error
}
