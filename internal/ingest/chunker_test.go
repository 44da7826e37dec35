package ingest

import (
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"One sentence without terminator", []string{"One sentence without terminator"}},
		{"One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"Trailing period.", []string{"Trailing period."}},
	}

	for _, tt := range tests {
		got := splitSentences(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitSentences(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitSentences(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestChunk_Empty(t *testing.T) {
	c := Chunker{Size: 100, Overlap: 10}
	if got := c.Chunk(""); got != nil {
		t.Errorf("Chunk(\"\") = %v, want nil", got)
	}
}

func TestChunk_SingleShortText(t *testing.T) {
	c := Chunker{Size: 100, Overlap: 10}
	got := c.Chunk("A short sentence.")
	if len(got) != 1 || got[0] != "A short sentence." {
		t.Errorf("Chunk() = %v", got)
	}
}

func TestChunk_SplitsAtSentenceBoundaries(t *testing.T) {
	c := Chunker{Size: 12, Overlap: 0}
	got := c.Chunk("Alpha one. Beta two. Gamma three.")
	want := []string{"Alpha one.", "Beta two.", "Gamma three."}
	if len(got) != len(want) {
		t.Fatalf("Chunk() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunk_Overlap(t *testing.T) {
	c := Chunker{Size: 25, Overlap: 12}
	got := c.Chunk("One one. Two two. Three three.")
	if len(got) != 2 {
		t.Fatalf("Chunk() = %v, want 2 chunks", got)
	}
	if got[0] != "One one. Two two." {
		t.Errorf("chunk[0] = %q", got[0])
	}
	// The second chunk repeats the shared sentence for context.
	if !strings.HasPrefix(got[1], "Two two.") {
		t.Errorf("chunk[1] = %q, want overlap prefix \"Two two.\"", got[1])
	}
}

func TestChunk_OversizedSentence(t *testing.T) {
	c := Chunker{Size: 10, Overlap: 0}
	long := "This single sentence is far longer than the chunk size."
	got := c.Chunk(long)
	if len(got) != 1 || got[0] != long {
		t.Errorf("oversized sentence should become one chunk, got %v", got)
	}
}

func TestChunk_RespectsSize(t *testing.T) {
	c := Chunker{Size: 40, Overlap: 10}
	text := "First part here. Second part here. Third part here. Fourth part here."
	for _, chunk := range c.Chunk(text) {
		if len(chunk) > c.Size {
			t.Errorf("chunk exceeds size %d: %q (%d)", c.Size, chunk, len(chunk))
		}
	}
}
