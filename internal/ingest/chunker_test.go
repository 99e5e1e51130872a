package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeWhitespace(t *testing.T) {
	got := NormalizeWhitespace("  hello\n\n world\t\tagain  ")
	if got != "hello world again" {
		t.Errorf("NormalizeWhitespace = %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"v1.2 is out. Yes", []string{"v1.2 is out.", "Yes"}},
		{"no punctuation at all", []string{"no punctuation at all"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := SplitSentences(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("SplitSentences(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestChunkText_ShortTextIsOneChunk(t *testing.T) {
	text := "  Short   document.\nWith two sentences.  "
	chunks := ChunkText(text, 1200)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Short document. With two sentences." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestChunkText_ExactlyAtBound(t *testing.T) {
	text := strings.Repeat("a", 1200)
	chunks := ChunkText(text, 1200)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("text at the bound must stay whole, got %d chunks", len(chunks))
	}
}

func TestChunkText_EmptyText(t *testing.T) {
	chunks := ChunkText(" \n\t ", 1200)
	if len(chunks) != 1 || chunks[0] != "" {
		t.Errorf("expected a single empty chunk, got %q", chunks)
	}
}

func TestChunkText_LongTextRespectsBoundAndRejoins(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("This is sentence number ")
		b.WriteString(strings.Repeat("x", i%17))
		b.WriteString(".\n  ")
		if i%3 == 0 {
			b.WriteString("Is it a question? ")
		}
		if i%5 == 0 {
			b.WriteString("Wow!   ")
		}
	}
	normalized := NormalizeWhitespace(b.String())
	if utf8.RuneCountInString(normalized) <= 1200 {
		t.Fatalf("fixture too short: %d", len(normalized))
	}

	chunks := ChunkText(b.String(), 1200)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 1200 {
			t.Errorf("chunk %d has %d characters", i, n)
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	if strings.Join(chunks, " ") != normalized {
		t.Error("joined chunks do not reproduce the normalised text")
	}
}

func TestChunkText_OversizedSentenceIsKeptWhole(t *testing.T) {
	long := strings.Repeat("word ", 300) + "end."
	text := "Intro sentence. " + long + " Outro sentence."

	chunks := ChunkText(text, 1200)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "Intro sentence." || chunks[2] != "Outro sentence." {
		t.Errorf("unexpected neighbours: %q / %q", chunks[0], chunks[2])
	}
	if utf8.RuneCountInString(chunks[1]) <= 1200 {
		t.Errorf("oversized sentence should not be split")
	}
	if strings.Join(chunks, " ") != NormalizeWhitespace(text) {
		t.Error("joined chunks do not reproduce the normalised text")
	}
}

func TestChunkText_CountsCharactersNotBytes(t *testing.T) {
	// 600 two-byte runes: 1200 bytes over the bound in bytes, well under it in characters
	text := strings.Repeat("é", 600) + ". " + strings.Repeat("ü", 500) + "."
	chunks := ChunkText(text, 1200)
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk for %d characters, got %d", utf8.RuneCountInString(text), len(chunks))
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \n\t") {
		t.Error("whitespace should be blank")
	}
	if IsBlank(" a ") {
		t.Error("text should not be blank")
	}
}
