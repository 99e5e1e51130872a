package store

import (
	"strings"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/ingest"
	"github.com/oklog/ulid/v2"
)

// newDocumentID is time ordered with a random suffix. Collisions need the same
// millisecond and the same 80 random bits.
func newDocumentID() string {
	return ulid.Make().String()
}

func buildDocument(newDoc documentModel.NewDocument, now time.Time) documentModel.AddResult {
	chunks := ingest.ChunkText(newDoc.Text, config.MaxChunkLength)
	doc := documentModel.Document{
		ID:         newDocumentID(),
		Title:      strings.TrimSpace(newDoc.Title),
		Text:       newDoc.Text,
		Tags:       cleanTags(newDoc.Tags),
		CreatedAt:  now.UTC(),
		ChunkCount: len(chunks),
	}
	return documentModel.AddResult{ID: doc.ID, Chunks: chunks, Doc: doc}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
