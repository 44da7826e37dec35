package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/owenlin0/coursechat/internal/knowledge"
)

// CourseStore is the slice of the knowledge store ingestion depends on.
type CourseStore interface {
	AddCourse(ctx context.Context, course knowledge.Course, chunks []knowledge.Chunk) error
}

// Processor parses course documents and loads them into a store.
type Processor struct {
	store   CourseStore
	chunker Chunker
	logger  *slog.Logger
}

// NewProcessor creates a document Processor.
func NewProcessor(store CourseStore, chunkSize, chunkOverlap int, logger *slog.Logger) (*Processor, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if chunkSize < 1 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("invalid chunking: size=%d overlap=%d", chunkSize, chunkOverlap)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:   store,
		chunker: Chunker{Size: chunkSize, Overlap: chunkOverlap},
		logger:  logger,
	}, nil
}

// ProcessFile parses one course document and adds it to the store.
// Returns the parsed course and the number of chunks stored.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*knowledge.Course, int, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from the operator's docs directory
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	course, sections, err := ParseDocument(f)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	chunks := p.chunkSections(sections)
	if err := p.store.AddCourse(ctx, course, chunks); err != nil {
		return nil, 0, err
	}
	return &course, len(chunks), nil
}

// chunkSections chunks each section and assigns course-global indices.
func (p *Processor) chunkSections(sections []section) []knowledge.Chunk {
	var chunks []knowledge.Chunk
	index := 0
	for _, sec := range sections {
		for _, text := range p.chunker.Chunk(sec.text) {
			chunks = append(chunks, knowledge.Chunk{
				Content:      text,
				LessonNumber: sec.lesson,
				Index:        index,
			})
			index++
		}
	}
	return chunks
}

// ProcessFolder ingests every course document in a directory. Files that
// fail to parse or store are logged and skipped; already-cataloged courses
// are skipped without error. Returns totals for courses and chunks added.
//
// A missing directory is not an error: the server can start before any
// materials are provisioned.
func (p *Processor) ProcessFolder(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("documents directory does not exist", "dir", dir)
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := strings.ToLower(filepath.Ext(e.Name())); ext == ".txt" || ext == ".md" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	totalCourses, totalChunks := 0, 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		course, n, err := p.ProcessFile(ctx, path)
		if errors.Is(err, knowledge.ErrCourseExists) {
			p.logger.Debug("skipping existing course", "file", name)
			continue
		}
		if err != nil {
			p.logger.Error("failed to ingest course document", "file", name, "error", err)
			continue
		}
		p.logger.Info("ingested course", "file", name, "title", course.Title, "chunks", n)
		totalCourses++
		totalChunks += n
	}
	return totalCourses, totalChunks, nil
}
