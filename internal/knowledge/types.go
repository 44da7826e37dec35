package knowledge

import "errors"

// VectorDimension is the embedding dimension used across the schema.
// gemini-embedding-001 truncates to 768 via OutputDimensionality; the
// pgvector columns are declared VECTOR(768) to match.
const VectorDimension int32 = 768

var (
	// ErrCourseNotFound indicates a course name could not be resolved
	// against the catalog.
	ErrCourseNotFound = errors.New("course not found")

	// ErrCourseExists indicates an ingested course title is already present.
	ErrCourseExists = errors.New("course already exists")
)

// Lesson is one lesson of a course.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course is the catalog entry for one course document.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons,omitempty"`
}

// Chunk is one embeddable slice of course content. LessonNumber is nil for
// content outside any lesson section. Index is the chunk's position within
// the course document, unique per course.
type Chunk struct {
	Content      string
	LessonNumber *int
	Index        int
}

// SearchResult is one vector search hit with its provenance.
type SearchResult struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	Distance     float64
}

// Outline is the structured course outline returned to the outline tool.
type Outline struct {
	CourseTitle string   `json:"course_title"`
	CourseLink  string   `json:"course_link,omitempty"`
	Instructor  string   `json:"instructor,omitempty"`
	Lessons     []Lesson `json:"lessons"`
}
