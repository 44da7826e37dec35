package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/owenlin0/coursechat/internal/knowledge"
)

// fakeSearchStore returns canned results and records lesson link lookups.
type fakeSearchStore struct {
	results     []knowledge.SearchResult
	searchErr   error
	lessonLinks map[string]string // "title:number" -> link
	linkErr     error
}

func (f *fakeSearchStore) Search(_ context.Context, query, courseName string, lessonNumber *int) ([]knowledge.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeSearchStore) LessonLink(_ context.Context, courseTitle string, lessonNumber int) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.lessonLinks[fmt.Sprintf("%s:%d", courseTitle, lessonNumber)], nil
}

func intPtr(n int) *int { return &n }

func searchRegistry(t *testing.T, store SearchStore) *Registry {
	t.Helper()
	r, g := newTestRegistry(t)
	RegisterSearch(r, g, store)
	return r
}

func TestSearchTool_FormatsResults(t *testing.T) {
	store := &fakeSearchStore{
		results: []knowledge.SearchResult{
			{Content: "MCP servers expose tools.", CourseTitle: "MCP Basics", LessonNumber: intPtr(1)},
			{Content: "Clients connect over stdio.", CourseTitle: "MCP Basics", LessonNumber: intPtr(2)},
		},
		lessonLinks: map[string]string{
			"MCP Basics:1": "https://example.com/lesson1",
			"MCP Basics:2": "https://example.com/lesson2",
		},
	}
	r := searchRegistry(t, store)

	res, err := r.Execute(context.Background(), SearchToolName,
		SearchInput{Query: "what are MCP servers"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := "[MCP Basics - Lesson 1]\nMCP servers expose tools.\n\n" +
		"[MCP Basics - Lesson 2]\nClients connect over stdio."
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}

	if len(res.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(res.Sources))
	}
	if res.Sources[0].Display != "MCP Basics - Lesson 1" {
		t.Errorf("source display = %q", res.Sources[0].Display)
	}
	if res.Sources[0].Link != "https://example.com/lesson1" {
		t.Errorf("source link = %q", res.Sources[0].Link)
	}
}

func TestSearchTool_NoLessonNumber(t *testing.T) {
	store := &fakeSearchStore{
		results: []knowledge.SearchResult{
			{Content: "Course intro text.", CourseTitle: "MCP Basics"},
		},
	}
	r := searchRegistry(t, store)

	res, err := r.Execute(context.Background(), SearchToolName,
		SearchInput{Query: "intro"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Text != "[MCP Basics]\nCourse intro text." {
		t.Errorf("text = %q", res.Text)
	}
	if res.Sources[0].Display != "MCP Basics" || res.Sources[0].Link != "" {
		t.Errorf("source = %+v, want display without lesson and no link", res.Sources[0])
	}
}

func TestSearchTool_UnknownCourseTitle(t *testing.T) {
	store := &fakeSearchStore{
		results: []knowledge.SearchResult{
			{Content: "Orphaned chunk.", LessonNumber: intPtr(3)},
		},
	}
	r := searchRegistry(t, store)

	res, err := r.Execute(context.Background(), SearchToolName,
		SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(res.Text, "[unknown - Lesson 3]") {
		t.Errorf("text = %q, want [unknown - Lesson 3] header", res.Text)
	}
}

func TestSearchTool_EmptyResults(t *testing.T) {
	tests := []struct {
		name  string
		input SearchInput
		want  string
	}{
		{
			name:  "no filters",
			input: SearchInput{Query: "quantum chromodynamics"},
			want:  "No relevant content found.",
		},
		{
			name:  "course filter",
			input: SearchInput{Query: "x", CourseName: "MCP"},
			want:  "No relevant content found in course 'MCP'.",
		},
		{
			name:  "lesson filter",
			input: SearchInput{Query: "x", LessonNumber: intPtr(4)},
			want:  "No relevant content found in lesson 4.",
		},
		{
			name:  "both filters",
			input: SearchInput{Query: "x", CourseName: "MCP", LessonNumber: intPtr(4)},
			want:  "No relevant content found in course 'MCP' in lesson 4.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := searchRegistry(t, &fakeSearchStore{})
			res, err := r.Execute(context.Background(), SearchToolName, tt.input)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("text = %q, want %q", res.Text, tt.want)
			}
			if len(res.Sources) != 0 {
				t.Errorf("got %d sources, want none", len(res.Sources))
			}
		})
	}
}

func TestSearchTool_CourseNotFound(t *testing.T) {
	store := &fakeSearchStore{
		searchErr: fmt.Errorf("%w: %q", knowledge.ErrCourseNotFound, "Underwater Basket Weaving"),
	}
	r := searchRegistry(t, store)

	res, err := r.Execute(context.Background(), SearchToolName,
		SearchInput{Query: "x", CourseName: "Underwater Basket Weaving"})
	if err != nil {
		t.Fatalf("Execute() error = %v, course-not-found should be tool text", err)
	}
	if res.Text != "No course found matching 'Underwater Basket Weaving'" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestSearchTool_StoreErrorBecomesToolText(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := searchRegistry(t, &fakeSearchStore{searchErr: storeErr})

	res, err := r.Execute(context.Background(), SearchToolName, SearchInput{Query: "x"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Text != "connection refused" {
		t.Errorf("text = %q, want the store's error message", res.Text)
	}
	if len(res.Sources) != 0 {
		t.Errorf("sources = %v, want none", res.Sources)
	}
}

func TestSearchTool_MissingQuery(t *testing.T) {
	r := searchRegistry(t, &fakeSearchStore{})

	_, err := r.Execute(context.Background(), SearchToolName, SearchInput{})
	if err == nil {
		t.Fatal("Execute() expected error for missing query")
	}
}

func TestSearchTool_LinkLookupFailureIsNotFatal(t *testing.T) {
	store := &fakeSearchStore{
		results: []knowledge.SearchResult{
			{Content: "text", CourseTitle: "MCP Basics", LessonNumber: intPtr(1)},
		},
		linkErr: errors.New("link table unavailable"),
	}
	r := searchRegistry(t, store)

	res, err := r.Execute(context.Background(), SearchToolName, SearchInput{Query: "x"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Sources[0].Link != "" {
		t.Errorf("source link = %q, want empty on lookup failure", res.Sources[0].Link)
	}
}
