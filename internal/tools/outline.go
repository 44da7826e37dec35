package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/genkit"

	"github.com/owenlin0/coursechat/internal/knowledge"
)

// OutlineToolName is the name the model uses to fetch a course outline.
const OutlineToolName = "get_course_outline"

const outlineDescription = "Get the complete outline of a course including title, link, instructor, and all lessons"

// OutlineStore is the slice of the knowledge store the outline tool needs.
type OutlineStore interface {
	CourseOutline(ctx context.Context, name string) (*knowledge.Outline, error)
}

// RegisterOutline registers the course outline tool.
func RegisterOutline(r *Registry, g *genkit.Genkit, store OutlineStore) {
	Register(r, g, OutlineToolName, outlineDescription,
		func(ctx context.Context, in OutlineInput) (Result, error) {
			if in.CourseName == "" {
				return Result{}, fmt.Errorf("course_name is required")
			}

			outline, err := store.CourseOutline(ctx, in.CourseName)
			if errors.Is(err, knowledge.ErrCourseNotFound) {
				return Result{Text: fmt.Sprintf("No course found matching '%s'", in.CourseName)}, nil
			}
			if err != nil {
				return Result{}, err
			}

			return Result{
				Text: formatOutline(outline),
				Sources: []Source{{
					Display: outline.CourseTitle,
					Link:    outline.CourseLink,
				}},
			}, nil
		})
}

func formatOutline(o *knowledge.Outline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", o.CourseTitle)
	if o.CourseLink != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", o.CourseLink)
	}
	if o.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", o.Instructor)
	}
	b.WriteString("Lessons:")
	for _, l := range o.Lessons {
		fmt.Fprintf(&b, "\n  %d: %s", l.Number, l.Title)
	}
	return b.String()
}
