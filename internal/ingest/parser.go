// Package ingest turns course documents into catalog entries and
// embeddable content chunks.
//
// A course document is plain text with a three-line header followed by
// lesson sections:
//
//	Course Title: Building Toward Computer Use
//	Course Link: https://example.com/course
//	Course Instructor: Colt Steele
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/lesson0
//	<lesson content...>
//
//	Lesson 1: Getting Started
//	<lesson content...>
//
// Header fields other than the title are optional. Content before the
// first lesson section belongs to the course as a whole.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/owenlin0/coursechat/internal/knowledge"
)

var lessonHeading = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// header field prefixes, matched case-insensitively.
const (
	titlePrefix      = "course title:"
	linkPrefix       = "course link:"
	instructorPrefix = "course instructor:"
	lessonLinkPrefix = "lesson link:"
)

// section is one contiguous block of content: the course preamble
// (lesson == nil) or one lesson's body.
type section struct {
	lesson *int
	text   string
}

// ParseDocument parses a course document. The returned sections preserve
// document order and feed the chunker.
func ParseDocument(r io.Reader) (knowledge.Course, []section, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var course knowledge.Course
	var sections []section
	var current *section
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.text = strings.TrimSpace(body.String())
		sections = append(sections, *current)
		current = nil
		body.Reset()
	}

	headerDone := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if !headerDone {
			switch {
			case strings.HasPrefix(lower, titlePrefix):
				course.Title = strings.TrimSpace(trimmed[len(titlePrefix):])
				continue
			case strings.HasPrefix(lower, linkPrefix):
				course.Link = strings.TrimSpace(trimmed[len(linkPrefix):])
				continue
			case strings.HasPrefix(lower, instructorPrefix):
				course.Instructor = strings.TrimSpace(trimmed[len(instructorPrefix):])
				continue
			case trimmed == "":
				continue
			default:
				headerDone = true
			}
		}

		if m := lessonHeading.FindStringSubmatch(trimmed); m != nil {
			flush()
			num, err := strconv.Atoi(m[1])
			if err != nil {
				return course, nil, fmt.Errorf("invalid lesson number %q: %w", m[1], err)
			}
			course.Lessons = append(course.Lessons, knowledge.Lesson{
				Number: num,
				Title:  strings.TrimSpace(m[2]),
			})
			n := num
			current = &section{lesson: &n}
			continue
		}

		if current != nil && len(course.Lessons) > 0 && strings.HasPrefix(lower, lessonLinkPrefix) && body.Len() == 0 {
			course.Lessons[len(course.Lessons)-1].Link = strings.TrimSpace(trimmed[len(lessonLinkPrefix):])
			continue
		}

		// Leading blank lines carry no content and would defeat the
		// lesson-link lookahead above.
		if trimmed == "" && body.Len() == 0 {
			continue
		}
		if current == nil {
			current = &section{}
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	if err := scanner.Err(); err != nil {
		return course, nil, fmt.Errorf("reading document: %w", err)
	}
	if course.Title == "" {
		return course, nil, fmt.Errorf("document has no Course Title header")
	}

	// Drop empty sections; they produce no chunks.
	kept := sections[:0]
	for _, s := range sections {
		if s.text != "" {
			kept = append(kept, s)
		}
	}
	return course, kept, nil
}
