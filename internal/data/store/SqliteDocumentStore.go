package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/ingest"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	_ "modernc.org/sqlite"
)

// SqliteDocumentStore is the transactional backend. seq keeps insertion order since
// ids only sort by millisecond.
type SqliteDocumentStore struct {
	db     *sql.DB
	logger *logger_i.Logger
	now    func() time.Time
}

var _ documentModel.DocumentStore = (*SqliteDocumentStore)(nil)

const documentSchema = `
CREATE TABLE IF NOT EXISTS documents (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	text        TEXT NOT NULL,
	tags        TEXT NOT NULL DEFAULT '[]',
	created_at  TEXT NOT NULL,
	chunk_count INTEGER NOT NULL
);`

func NewSqliteDocumentStore(dbPath string) (*SqliteDocumentStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, commonModels.StorageError("could not create database directory", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, commonModels.StorageError("could not open document database", err)
	}
	// one writer at a time, sqlite serialises anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(documentSchema); err != nil {
		db.Close()
		return nil, commonModels.StorageError("could not migrate document database", err)
	}

	s := &SqliteDocumentStore{
		db:     db,
		logger: logger_i.NewLogger("SqliteDocumentStore"),
		now:    time.Now,
	}
	if count, err := s.count(context.Background(), db); err == nil {
		metrics.SetStoredDocuments(count)
	}
	return s, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SqliteDocumentStore) count(ctx context.Context, q queryer) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func (s *SqliteDocumentStore) AddDocument(ctx context.Context, newDoc documentModel.NewDocument) (documentModel.AddResult, error) {
	result := buildDocument(newDoc, s.now())
	tags, err := json.Marshal(result.Doc.Tags)
	if err != nil {
		return documentModel.AddResult{}, commonModels.StorageError("could not encode tags", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return documentModel.AddResult{}, commonModels.StorageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, text, tags, created_at, chunk_count) VALUES (?, ?, ?, ?, ?, ?)`,
		result.Doc.ID, result.Doc.Title, result.Doc.Text, string(tags),
		result.Doc.CreatedAt.Format(time.RFC3339Nano), result.Doc.ChunkCount)
	if err != nil {
		return documentModel.AddResult{}, commonModels.StorageError("could not insert document", err)
	}
	count, err := s.count(ctx, tx)
	if err != nil {
		return documentModel.AddResult{}, commonModels.StorageError("could not count documents", err)
	}
	if err := tx.Commit(); err != nil {
		return documentModel.AddResult{}, commonModels.StorageError("could not commit document", err)
	}

	s.logger.WithTrace(ctx).Info("Document stored", "id", result.ID, "chunks", result.Doc.ChunkCount)
	metrics.SetStoredDocuments(count)
	return result, nil
}

func (s *SqliteDocumentStore) ListDocuments(ctx context.Context) ([]documentModel.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, text, tags, created_at, chunk_count FROM documents ORDER BY seq ASC`)
	if err != nil {
		return nil, commonModels.StorageError("could not list documents", err)
	}
	defer rows.Close()

	out := make([]documentModel.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, commonModels.StorageError("could not iterate documents", err)
	}
	return out, nil
}

func (s *SqliteDocumentStore) GetAllDocuments(ctx context.Context) ([]documentModel.Document, error) {
	return s.ListDocuments(ctx)
}

func (s *SqliteDocumentStore) GetDocumentByID(ctx context.Context, id string) (documentModel.Document, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, text, tags, created_at, chunk_count FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return documentModel.Document{}, false, nil
	}
	if err != nil {
		return documentModel.Document{}, false, err
	}
	return doc, true, nil
}

func (s *SqliteDocumentStore) GetDocumentText(ctx context.Context, id string) (string, bool, error) {
	doc, found, err := s.GetDocumentByID(ctx, id)
	if err != nil || !found {
		return "", found, err
	}
	return doc.Text, true, nil
}

func (s *SqliteDocumentStore) GetDocumentChunks(ctx context.Context, id string) ([]string, bool, error) {
	doc, found, err := s.GetDocumentByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	return ingest.ChunkText(doc.Text, config.MaxChunkLength), true, nil
}

func (s *SqliteDocumentStore) DeleteDocument(ctx context.Context, id string) (documentModel.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return documentModel.Document{}, commonModels.StorageError("could not begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, title, text, tags, created_at, chunk_count FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return documentModel.Document{}, commonModels.NotFoundError("Document not found", commonModels.ErrDocumentNotFound)
	}
	if err != nil {
		return documentModel.Document{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return documentModel.Document{}, commonModels.StorageError("could not delete document", err)
	}
	count, err := s.count(ctx, tx)
	if err != nil {
		return documentModel.Document{}, commonModels.StorageError("could not count documents", err)
	}
	if err := tx.Commit(); err != nil {
		return documentModel.Document{}, commonModels.StorageError("could not commit delete", err)
	}

	s.logger.WithTrace(ctx).Info("Document deleted", "id", id)
	metrics.SetStoredDocuments(count)
	return doc, nil
}

func (s *SqliteDocumentStore) ClearAllDocuments(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, commonModels.StorageError("could not clear documents", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, commonModels.StorageError("could not count removed documents", err)
	}

	s.logger.WithTrace(ctx).Info("Document store cleared", "removed", removed)
	metrics.SetStoredDocuments(0)
	return int(removed), nil
}

func (s *SqliteDocumentStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (documentModel.Document, error) {
	var doc documentModel.Document
	var tags, createdAt string
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Text, &tags, &createdAt, &doc.ChunkCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doc, err
		}
		return doc, commonModels.StorageError("could not read document", err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return doc, commonModels.StorageError("could not decode tags", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return doc, commonModels.StorageError("could not decode created_at", err)
	}
	doc.CreatedAt = t
	return doc, nil
}
