package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/genkit"

	"github.com/owenlin0/coursechat/internal/knowledge"
)

// SearchToolName is the name the model uses to invoke content search.
const SearchToolName = "search_course_content"

const searchDescription = "Search course materials with smart course name matching and lesson filtering"

// SearchStore is the slice of the knowledge store the search tool needs.
type SearchStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]knowledge.SearchResult, error)
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error)
}

// RegisterSearch registers the course content search tool.
//
// Store-reported failures are returned to the model as tool text, not as
// errors: an unresolvable course name gets a not-found message the model
// can recover from, and any other store error surfaces verbatim so the
// model can report it instead of the round aborting.
func RegisterSearch(r *Registry, g *genkit.Genkit, store SearchStore) {
	Register(r, g, SearchToolName, searchDescription,
		func(ctx context.Context, in SearchInput) (Result, error) {
			if in.Query == "" {
				return Result{}, fmt.Errorf("query is required")
			}

			results, err := store.Search(ctx, in.Query, in.CourseName, in.LessonNumber)
			if errors.Is(err, knowledge.ErrCourseNotFound) {
				return Result{Text: fmt.Sprintf("No course found matching '%s'", in.CourseName)}, nil
			}
			if err != nil {
				return Result{Text: err.Error()}, nil
			}

			if len(results) == 0 {
				return Result{Text: emptySearchMessage(in)}, nil
			}
			return formatSearchResults(ctx, store, results), nil
		})
}

// emptySearchMessage names the active filters so the model knows why
// nothing matched, echoing the caller's values rather than the resolved
// course title.
func emptySearchMessage(in SearchInput) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if in.CourseName != "" {
		fmt.Fprintf(&b, " in course '%s'", in.CourseName)
	}
	if in.LessonNumber != nil {
		fmt.Fprintf(&b, " in lesson %d", *in.LessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

// formatSearchResults renders each hit under a bracketed course/lesson
// header and records one source per hit. Lesson links are resolved
// best-effort; a lookup failure just leaves the link empty.
func formatSearchResults(ctx context.Context, store SearchStore, results []knowledge.SearchResult) Result {
	blocks := make([]string, 0, len(results))
	sources := make([]Source, 0, len(results))

	for _, hit := range results {
		title := hit.CourseTitle
		if title == "" {
			title = "unknown"
		}

		display := title
		if hit.LessonNumber != nil {
			display = fmt.Sprintf("%s - Lesson %d", title, *hit.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", display, hit.Content))

		src := Source{Display: display}
		if hit.CourseTitle != "" && hit.LessonNumber != nil {
			if link, err := store.LessonLink(ctx, hit.CourseTitle, *hit.LessonNumber); err == nil {
				src.Link = link
			}
		}
		sources = append(sources, src)
	}

	return Result{Text: strings.Join(blocks, "\n\n"), Sources: sources}
}
