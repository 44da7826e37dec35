package ingest

import (
	"regexp"
	"strings"
)

// sentenceEnd matches a sentence boundary: terminal punctuation followed
// by whitespace. Abbreviation handling is deliberately simple; a false
// split only moves a chunk boundary.
var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// Chunker splits text into overlapping chunks on sentence boundaries.
// Chunks are at most Size characters; consecutive chunks share roughly
// Overlap characters of trailing context.
type Chunker struct {
	Size    int
	Overlap int
}

// splitSentences breaks text into sentences, keeping terminal punctuation.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Chunk splits text into overlapping chunks. A sentence longer than Size
// becomes its own chunk rather than being split mid-word.
func (c Chunker) Chunk(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		var sb strings.Builder
		j := i
		for j < len(sentences) {
			add := len(sentences[j])
			if sb.Len() > 0 {
				add++ // joining space
			}
			if sb.Len()+add > c.Size && sb.Len() > 0 {
				break
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(sentences[j])
			j++
		}
		chunks = append(chunks, sb.String())
		if j >= len(sentences) {
			break
		}

		// Back up over trailing sentences worth up to Overlap characters
		// so the next chunk carries context across the boundary.
		next := j
		overlap := 0
		for next > i+1 && overlap+len(sentences[next-1]) <= c.Overlap {
			overlap += len(sentences[next-1]) + 1
			next--
		}
		i = next
	}
	return chunks
}
