package ingest

import (
	"strings"
	"testing"
)

const sampleDoc = `Course Title: Building Toward Computer Use
Course Link: https://example.com/course
Course Instructor: Colt Steele

Lesson 0: Introduction
Lesson Link: https://example.com/lesson0
Welcome to the course. This lesson introduces the topic.

Lesson 1: Getting Started
Lesson Link: https://example.com/lesson1
In this lesson you learn the basics. Practice makes perfect.
`

func TestParseDocument(t *testing.T) {
	course, sections, err := ParseDocument(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if course.Title != "Building Toward Computer Use" {
		t.Errorf("title = %q", course.Title)
	}
	if course.Link != "https://example.com/course" {
		t.Errorf("link = %q", course.Link)
	}
	if course.Instructor != "Colt Steele" {
		t.Errorf("instructor = %q", course.Instructor)
	}

	if len(course.Lessons) != 2 {
		t.Fatalf("lessons = %d, want 2", len(course.Lessons))
	}
	if course.Lessons[0].Number != 0 || course.Lessons[0].Title != "Introduction" {
		t.Errorf("lesson 0 = %+v", course.Lessons[0])
	}
	if course.Lessons[0].Link != "https://example.com/lesson0" {
		t.Errorf("lesson 0 link = %q", course.Lessons[0].Link)
	}
	if course.Lessons[1].Number != 1 || course.Lessons[1].Link != "https://example.com/lesson1" {
		t.Errorf("lesson 1 = %+v", course.Lessons[1])
	}

	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].lesson == nil || *sections[0].lesson != 0 {
		t.Errorf("section 0 lesson = %v", sections[0].lesson)
	}
	if !strings.Contains(sections[0].text, "Welcome to the course.") {
		t.Errorf("section 0 text = %q", sections[0].text)
	}
	if strings.Contains(sections[0].text, "Lesson Link") {
		t.Errorf("lesson link leaked into content: %q", sections[0].text)
	}
}

func TestParseDocument_Preamble(t *testing.T) {
	doc := `Course Title: Minimal Course

Some course-level overview text before any lesson.

Lesson 1: Only Lesson
Lesson body here.
`
	course, sections, err := ParseDocument(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if course.Title != "Minimal Course" {
		t.Errorf("title = %q", course.Title)
	}
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].lesson != nil {
		t.Errorf("preamble should have nil lesson, got %v", *sections[0].lesson)
	}
	if sections[1].lesson == nil || *sections[1].lesson != 1 {
		t.Errorf("section 1 lesson = %v", sections[1].lesson)
	}
}

func TestParseDocument_MissingTitle(t *testing.T) {
	doc := "Just some text without any header.\n"
	if _, _, err := ParseDocument(strings.NewReader(doc)); err == nil {
		t.Error("expected error for document without Course Title header")
	}
}

func TestParseDocument_HeaderCaseInsensitive(t *testing.T) {
	doc := "course title: Lowercase Header\ncontent here.\n"
	course, _, err := ParseDocument(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if course.Title != "Lowercase Header" {
		t.Errorf("title = %q", course.Title)
	}
}
