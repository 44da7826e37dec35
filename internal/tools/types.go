package tools

import "errors"

// ErrUnknownTool indicates a dispatch request named a tool that was never
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// Source is one citation produced by a tool execution. Display is the
// human-readable label shown under an answer; Link is optional.
type Source struct {
	Display string `json:"display"`
	Link    string `json:"link,omitempty"`
}

// Result is the outcome of one tool execution: the text fed back to the
// model and the sources the execution touched. Sources travel with the
// result rather than through shared tool state, so concurrent queries
// cannot cross-contaminate citations.
type Result struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// SearchInput is the schema for the search_course_content tool.
// LessonNumber is a pointer so that lesson 0 is distinguishable from
// "no lesson filter".
type SearchInput struct {
	Query        string `json:"query" jsonschema_description:"What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema_description:"Course title (partial matches work, e.g. 'MCP' or 'Introduction')"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema_description:"Specific lesson number to search within (e.g. 1, 2, 3)"`
}

// OutlineInput is the schema for the get_course_outline tool.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema_description:"Course title to get the outline for (partial matches work)"`
}
