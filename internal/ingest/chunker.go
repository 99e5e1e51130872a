package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeWhitespace collapses every whitespace run into a single space and trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitSentences cuts normalised text after '.', '!' or '?' when a space follows.
// The separating space is dropped, so joining the result with " " gives the input back.
func SplitSentences(normalized string) []string {
	var sentences []string
	start := 0
	prev := rune(0)
	for i, r := range normalized {
		if r == ' ' && isSentenceEnd(prev) && i > start {
			sentences = append(sentences, normalized[start:i])
			start = i + 1
		}
		prev = r
	}
	if start < len(normalized) {
		sentences = append(sentences, normalized[start:])
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// ChunkText normalises text and packs whole sentences into chunks of at most limit
// characters. A sentence longer than limit becomes its own oversized chunk.
func ChunkText(text string, limit int) []string {
	clean := NormalizeWhitespace(text)
	if utf8.RuneCountInString(clean) <= limit {
		return []string{clean}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, sentence := range SplitSentences(clean) {
		sentenceLen := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+1+sentenceLen > limit {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += sentenceLen
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// CountChunks is ChunkText without keeping the pieces around.
func CountChunks(text string, limit int) int {
	return len(ChunkText(text, limit))
}

// IsBlank reports whether text has no visible characters.
func IsBlank(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
