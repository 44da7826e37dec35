package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/owenlin0/coursechat/internal/chat"
	"github.com/owenlin0/coursechat/internal/rag"
	"github.com/owenlin0/coursechat/internal/session"
	"github.com/owenlin0/coursechat/internal/testutil"
	"github.com/owenlin0/coursechat/internal/tools"
)

// fakeService is a scripted RAGService.
type fakeService struct {
	answer    *rag.Answer
	queryErr  error
	lastQuery string
	lastID    uuid.UUID

	createdID uuid.UUID
	createErr error

	clearedID uuid.UUID
	clearErr  error

	analytics    *rag.Analytics
	analyticsErr error
}

func (f *fakeService) Query(_ context.Context, query string, sessionID uuid.UUID) (*rag.Answer, error) {
	f.lastQuery = query
	f.lastID = sessionID
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.answer, nil
}

func (f *fakeService) CreateSession(context.Context) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	return f.createdID, nil
}

func (f *fakeService) ClearSession(_ context.Context, id uuid.UUID) error {
	f.clearedID = id
	return f.clearErr
}

func (f *fakeService) Analytics(context.Context) (*rag.Analytics, error) {
	if f.analyticsErr != nil {
		return nil, f.analyticsErr
	}
	return f.analytics, nil
}

func newTestServer(svc RAGService) http.Handler {
	return NewServer(svc, nil, testutil.DiscardLogger()).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	sessionID := uuid.New()
	svc := &fakeService{answer: &rag.Answer{
		Text:    "MCP is a protocol.",
		Sources: []tools.Source{{Display: "MCP Basics - Lesson 1", Link: "https://example.com/1"}},
		Session: sessionID,
	}}
	h := newTestServer(svc)

	rec := doJSON(t, h, http.MethodPost, "/api/query",
		`{"query": "What is MCP?", "session_id": "`+sessionID.String()+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != "MCP is a protocol." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.SessionID != sessionID.String() {
		t.Errorf("session_id = %q", resp.SessionID)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Display != "MCP Basics - Lesson 1" {
		t.Errorf("sources = %+v", resp.Sources)
	}

	if svc.lastQuery != "What is MCP?" || svc.lastID != sessionID {
		t.Errorf("service saw (%q, %v)", svc.lastQuery, svc.lastID)
	}
}

func TestQueryEndpoint_NoSessionID(t *testing.T) {
	created := uuid.New()
	svc := &fakeService{answer: &rag.Answer{Text: "hi", Session: created}}
	h := newTestServer(svc)

	rec := doJSON(t, h, http.MethodPost, "/api/query", `{"query": "hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastID != uuid.Nil {
		t.Errorf("service saw session %v, want Nil", svc.lastID)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID != created.String() {
		t.Errorf("session_id = %q, want the created session", resp.SessionID)
	}
}

func TestQueryEndpoint_EmptySourcesSerializeAsArray(t *testing.T) {
	svc := &fakeService{answer: &rag.Answer{Text: "hi", Session: uuid.New()}}
	h := newTestServer(svc)

	rec := doJSON(t, h, http.MethodPost, "/api/query", `{"query": "hello"}`)
	if !strings.Contains(rec.Body.String(), `"sources":[]`) {
		t.Errorf("body = %s, want empty sources array", rec.Body)
	}
}

func TestQueryEndpoint_ModelErrorBecomesApology(t *testing.T) {
	svc := &fakeService{queryErr: &chat.ModelError{Round: 1, Err: errors.New("api key invalid")}}
	h := newTestServer(svc)

	rec := doJSON(t, h, http.MethodPost, "/api/query", `{"query": "hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, model failures must render as answers", rec.Code)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := "I apologize, but I encountered a technical issue while processing your request: api key invalid"
	if resp.Answer != want {
		t.Errorf("answer = %q, want %q", resp.Answer, want)
	}
}

func TestQueryEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing query", body: `{}`},
		{name: "bad session id", body: `{"query": "x", "session_id": "not-a-uuid"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, newTestServer(&fakeService{}), http.MethodPost, "/api/query", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestQueryEndpoint_UnknownSession(t *testing.T) {
	svc := &fakeService{queryErr: session.ErrNotFound}
	rec := doJSON(t, newTestServer(svc), http.MethodPost, "/api/query",
		`{"query": "x", "session_id": "`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCoursesEndpoint(t *testing.T) {
	svc := &fakeService{analytics: &rag.Analytics{
		TotalCourses: 2,
		CourseTitles: []string{"Course A", "Course B"},
	}}
	rec := doJSON(t, newTestServer(svc), http.MethodGet, "/api/courses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp rag.Analytics
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalCourses != 2 || len(resp.CourseTitles) != 2 {
		t.Errorf("analytics = %+v", resp)
	}
}

func TestCoursesEndpoint_Error(t *testing.T) {
	svc := &fakeService{analyticsErr: errors.New("db down")}
	rec := doJSON(t, newTestServer(svc), http.MethodGet, "/api/courses", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestCreateSessionEndpoint(t *testing.T) {
	created := uuid.New()
	svc := &fakeService{createdID: created}
	rec := doJSON(t, newTestServer(svc), http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID != created.String() {
		t.Errorf("session_id = %q", resp.SessionID)
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{}
	rec := doJSON(t, newTestServer(svc), http.MethodDelete, "/api/sessions/"+id.String()+"/clear", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if svc.clearedID != id {
		t.Errorf("cleared %v, want %v", svc.clearedID, id)
	}
}

func TestClearSessionEndpoint_Errors(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		rec := doJSON(t, newTestServer(&fakeService{}), http.MethodDelete, "/api/sessions/nope/clear", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
	t.Run("unknown session", func(t *testing.T) {
		svc := &fakeService{clearErr: session.ErrNotFound}
		rec := doJSON(t, newTestServer(svc), http.MethodDelete, "/api/sessions/"+uuid.NewString()+"/clear", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(&fakeService{})

	rec := doJSON(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}

	// No pool configured: not ready.
	rec = doJSON(t, h, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready status = %d, want 503", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h := chain(panicky, recoveryMiddleware(testutil.DiscardLogger()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
