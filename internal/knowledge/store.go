// Package knowledge stores course catalogs and content chunks in
// PostgreSQL + pgvector and serves the semantic searches behind the
// chat tools.
//
// The catalog keeps one row per course (with an embedded title for fuzzy
// name resolution) and one row per content chunk (with an embedded body
// for similarity search). All SQL is parameterized pgx.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"
)

// searchTimeout bounds vector search queries so a slow scan cannot block
// a chat round indefinitely.
const searchTimeout = 10 * time.Second

// maxResolveDistance is the cosine distance ceiling for fuzzy course name
// resolution. Beyond it the match is considered noise rather than the
// course the user meant.
const maxResolveDistance = 0.75

// Store manages course materials with vector search capabilities.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool       *pgxpool.Pool
	embedder   ai.Embedder
	maxResults int
	logger     *slog.Logger
}

// NewStore creates a course material Store. maxResults bounds the number
// of chunks returned per search.
func NewStore(pool *pgxpool.Pool, embedder ai.Embedder, maxResults int, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if maxResults < 1 {
		return nil, fmt.Errorf("maxResults must be positive, got %d", maxResults)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, embedder: embedder, maxResults: maxResults, logger: logger}, nil
}

// embed generates a vector embedding for the given text.
func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	dim := VectorDimension
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("empty embedding response")
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}

// embedBatch embeds multiple texts in a single request.
func (s *Store) embedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	dim := VectorDimension
	docs := make([]*ai.Document, len(texts))
	for i, t := range texts {
		docs[i] = ai.DocumentFromText(t, nil)
	}
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(texts))
	}
	vecs := make([]pgvector.Vector, len(texts))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vecs[i] = pgvector.NewVector(e.Embedding)
	}
	return vecs, nil
}

// AddCourse inserts a course, its lessons, and its content chunks in one
// transaction. Returns ErrCourseExists if the title is already cataloged.
func (s *Store) AddCourse(ctx context.Context, course Course, chunks []Chunk) error {
	if course.Title == "" {
		return fmt.Errorf("course title is required")
	}

	exists, err := s.CourseExists(ctx, course.Title)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", ErrCourseExists, course.Title)
	}

	titleVec, err := s.embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embedding course title: %w", err)
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	chunkVecs, err := s.embedBatch(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding course content: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var courseID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO courses (title, link, instructor, title_embedding)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		course.Title, course.Link, course.Instructor, titleVec,
	).Scan(&courseID)
	if err != nil {
		return fmt.Errorf("inserting course %q: %w", course.Title, err)
	}

	for _, lesson := range course.Lessons {
		_, err = tx.Exec(ctx,
			`INSERT INTO lessons (course_id, lesson_number, title, link)
			 VALUES ($1, $2, $3, $4)`,
			courseID, lesson.Number, lesson.Title, lesson.Link,
		)
		if err != nil {
			return fmt.Errorf("inserting lesson %d: %w", lesson.Number, err)
		}
	}

	for i, chunk := range chunks {
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (course_id, lesson_number, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)`,
			courseID, chunk.LessonNumber, chunk.Index, chunk.Content, chunkVecs[i],
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing course %q: %w", course.Title, err)
	}

	s.logger.Info("added course",
		"title", course.Title,
		"lessons", len(course.Lessons),
		"chunks", len(chunks))
	return nil
}

// CourseExists reports whether a course with the exact title is cataloged.
func (s *Store) CourseExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE title = $1)`, title,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking course %q: %w", title, err)
	}
	return exists, nil
}

// CourseTitles returns all cataloged course titles in insertion order.
func (s *Store) CourseTitles(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT title FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing course titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning course title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading course titles: %w", err)
	}
	return titles, nil
}

// CountCourses returns the number of cataloged courses.
func (s *Store) CountCourses(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return n, nil
}

// ResolveCourse resolves a possibly partial or fuzzy course name to the
// exact cataloged title. Substring matches win; otherwise the closest
// title embedding within maxResolveDistance is used. Returns
// ErrCourseNotFound when nothing plausible matches.
func (s *Store) ResolveCourse(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty course name", ErrCourseNotFound)
	}

	// Cheap path: case-insensitive substring match. Shortest title wins so
	// "MCP" prefers "MCP" over "MCP: Build Rich-Context AI Apps".
	var title string
	err := s.pool.QueryRow(ctx,
		`SELECT title FROM courses
		 WHERE title ILIKE '%' || $1 || '%'
		 ORDER BY length(title)
		 LIMIT 1`, name,
	).Scan(&title)
	if err == nil {
		return title, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("resolving course %q: %w", name, err)
	}

	vec, err := s.embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embedding course name %q: %w", name, err)
	}

	var distance float64
	err = s.pool.QueryRow(ctx,
		`SELECT title, title_embedding <=> $1 AS distance
		 FROM courses
		 WHERE title_embedding IS NOT NULL
		 ORDER BY title_embedding <=> $1
		 LIMIT 1`, vec,
	).Scan(&title, &distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("resolving course %q: %w", name, err)
	}
	if distance > maxResolveDistance {
		s.logger.Debug("course resolution rejected",
			"name", name, "closest", title, "distance", distance)
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}
	return title, nil
}

// Search performs semantic search over content chunks. courseName, when
// non-empty, is fuzzily resolved first and scopes the search; a
// lessonNumber additionally narrows to one lesson. Returns up to
// maxResults hits ordered by similarity.
//
// Returns ErrCourseNotFound (wrapped) when courseName cannot be resolved.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	var resolvedTitle string
	if courseName != "" {
		title, err := s.ResolveCourse(ctx, courseName)
		if err != nil {
			return nil, err
		}
		resolvedTitle = title
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// Filters are optional; NULL arguments disable them.
	var titleArg *string
	if resolvedTitle != "" {
		titleArg = &resolvedTitle
	}

	rows, err := s.pool.Query(ctx,
		`SELECT ch.content, co.title, ch.lesson_number, ch.embedding <=> $1 AS distance
		 FROM chunks ch
		 JOIN courses co ON co.id = ch.course_id
		 WHERE ($2::text IS NULL OR co.title = $2)
		   AND ($3::int IS NULL OR ch.lesson_number = $3)
		 ORDER BY ch.embedding <=> $1
		 LIMIT $4`,
		vec, titleArg, lessonNumber, s.maxResults,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Content, &r.CourseTitle, &r.LessonNumber, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}

	s.logger.Debug("search completed",
		"query_length", len(query),
		"course", resolvedTitle,
		"results", len(results))
	return results, nil
}

// CourseOutline resolves a course name and returns its full outline.
func (s *Store) CourseOutline(ctx context.Context, name string) (*Outline, error) {
	title, err := s.ResolveCourse(ctx, name)
	if err != nil {
		return nil, err
	}

	var outline Outline
	var courseID int64
	err = s.pool.QueryRow(ctx,
		`SELECT id, title, link, instructor FROM courses WHERE title = $1`, title,
	).Scan(&courseID, &outline.CourseTitle, &outline.CourseLink, &outline.Instructor)
	if err != nil {
		return nil, fmt.Errorf("loading course %q: %w", title, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT lesson_number, title, link FROM lessons
		 WHERE course_id = $1 ORDER BY lesson_number`, courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading lessons for %q: %w", title, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.Number, &l.Title, &l.Link); err != nil {
			return nil, fmt.Errorf("scanning lesson: %w", err)
		}
		outline.Lessons = append(outline.Lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading lessons: %w", err)
	}
	return &outline, nil
}

// LessonLink returns the link for one lesson of an exactly titled course.
// An empty string is returned when the lesson has no link.
func (s *Store) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	var link string
	err := s.pool.QueryRow(ctx,
		`SELECT l.link FROM lessons l
		 JOIN courses c ON c.id = l.course_id
		 WHERE c.title = $1 AND l.lesson_number = $2`,
		courseTitle, lessonNumber,
	).Scan(&link)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading lesson link: %w", err)
	}
	return link, nil
}

// DeleteCourse removes a course and, via cascade, its lessons and chunks.
func (s *Store) DeleteCourse(ctx context.Context, title string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE title = $1`, title)
	if err != nil {
		return fmt.Errorf("deleting course %q: %w", title, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrCourseNotFound, title)
	}
	s.logger.Info("deleted course", "title", title)
	return nil
}
