package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

const pageExtractTimeout = 10 * time.Second

var ErrUnsupportedType = errors.New("unsupported document type")

func GetDocType(docPath string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// ExtractText returns the plain text of an uploaded file, pages joined by blank lines.
func ExtractText(path string, log *logger_i.Logger) (string, error) {
	pages, err := extractPages(path, GetDocType(path), log)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if !IsBlank(p.Content) {
			parts = append(parts, p.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func extractPages(path string, contentType commonModels.DocType, log *logger_i.Logger) ([]commonModels.RawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path, log)
	case commonModels.DOCX:
		return extractDocx(path, log)
	case commonModels.TXT:
		return extractPlain(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
}

func extractPDF(path string, log *logger_i.Logger) ([]commonModels.RawPage, error) {
	log.Debug("extractPDF", "path", path)
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []commonModels.RawPage
	numPages := f.NumPage()
	log.Debug("extractPDF", "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a broken page should not sink the whole document
			log.Warn("Skipping unreadable pdf page", "page", i, "error", err)
			continue
		}
		pages = append(pages, commonModels.RawPage{Number: i, Content: content})
	}
	return pages, nil
}

// docx, odt and rtf have no page concept once flattened, so they come back as one page
func extractDocx(path string, log *logger_i.Logger) ([]commonModels.RawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		log.Error("Error extracting content from doc", "path", path)
		return nil, fmt.Errorf("failed to extract docx: %w", err)
	}
	return []commonModels.RawPage{{Number: 1, Content: text}}, nil
}

func extractPlain(path string) ([]commonModels.RawPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return []commonModels.RawPage{{Number: 1, Content: string(data)}}, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("page extraction timeout")
	}
}
