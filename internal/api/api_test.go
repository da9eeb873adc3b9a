package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkarlsen/planvault/internal/docservice"
	"github.com/mkarlsen/planvault/internal/testutil"
)

func newTestRouter(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	svc := docservice.NewService(testutil.Manager(t), testutil.DB(t), testutil.Logger())
	return NewRouter(svc, authEnabled, token, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestRouter(t, true, "secret")

	w := doJSON(t, h, http.MethodGet, "/status", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestPlanBeforeInitIs404(t *testing.T) {
	h := newTestRouter(t, false, "")
	w := doJSON(t, h, http.MethodGet, "/plan", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "initialization") {
		t.Errorf("body should hint at init: %s", w.Body.String())
	}
}

func TestInitThenPlanAndCurrent(t *testing.T) {
	h := newTestRouter(t, false, "")

	w := doJSON(t, h, http.MethodPost, "/init", InitRequest{Project: "Demo"})
	if w.Code != http.StatusOK {
		t.Fatalf("init status = %d: %s", w.Code, w.Body.String())
	}
	var res InitResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 3 {
		t.Errorf("created = %v", res.Created)
	}

	for _, path := range []string{"/plan", "/current"} {
		w = doJSON(t, h, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestRecordAndListFlow(t *testing.T) {
	h := newTestRouter(t, false, "")

	w := doJSON(t, h, http.MethodPost, "/documents", RecordRequest{Category: "doc", Target: "API Notes", Content: "# API Notes\n\nbody\n"})
	if w.Code != http.StatusCreated {
		t.Fatalf("record status = %d: %s", w.Code, w.Body.String())
	}
	var rec RecordResult
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Name != "DOCREF_001.api_notes.md" {
		t.Errorf("name = %q", rec.Name)
	}

	w = doJSON(t, h, http.MethodGet, "/documents?category=doc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list DocumentListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Documents[0].Name != rec.Name {
		t.Errorf("list = %+v", list)
	}

	w = doJSON(t, h, http.MethodGet, "/documents/"+rec.Name, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var doc DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Content, "API Notes") {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestRecordValidationErrors(t *testing.T) {
	h := newTestRouter(t, false, "")

	cases := []struct {
		name string
		req  RecordRequest
	}{
		{"missing fields", RecordRequest{}},
		{"bad category", RecordRequest{Category: "sprint", Target: "x"}},
		{"forbidden content", RecordRequest{Category: "doc", Target: "x", Content: "<script>evil()</script>"}},
	}
	for _, c := range cases {
		w := doJSON(t, h, http.MethodPost, "/documents", c.req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", c.name, w.Code)
		}
	}
}

func TestListBadFilter(t *testing.T) {
	h := newTestRouter(t, false, "")
	w := doJSON(t, h, http.MethodGet, "/documents?category=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetDocumentTraversalRejected(t *testing.T) {
	h := newTestRouter(t, false, "")
	// Encoded traversal must not escape the managed directory.
	w := doJSON(t, h, http.MethodGet, "/documents/..%2F..%2Fetc%2Fpasswd.md", nil)
	if w.Code != http.StatusBadRequest && w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 400 or 404", w.Code)
	}
}

func TestQuerySprintEndpoint(t *testing.T) {
	h := newTestRouter(t, false, "")
	doJSON(t, h, http.MethodPost, "/init", InitRequest{Project: "Demo"})

	w := doJSON(t, h, http.MethodGet, "/sprints/M01_S01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/sprints/M09_S09", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing sprint status = %d, want 404", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/sprints/nonsense", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestRouter(t, false, "")
	doJSON(t, h, http.MethodPost, "/documents", RecordRequest{Category: "doc", Target: "tokens", Content: "# Tokens\n\nrotation policy\n"})

	w := doJSON(t, h, http.MethodGet, "/search?q=rotation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "DOCREF_001.tokens.md") {
		t.Errorf("body = %s", w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", w.Code)
	}
}

func TestNowEndpoint(t *testing.T) {
	h := newTestRouter(t, false, "")
	w := doJSON(t, h, http.MethodGet, "/now", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var info TimeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.UTC == "" || info.EpochSecs == 0 {
		t.Errorf("time info = %+v", info)
	}
}

func TestStatusEndpoint(t *testing.T) {
	h := newTestRouter(t, false, "")
	doJSON(t, h, http.MethodPost, "/init", InitRequest{Project: "Demo"})

	w := doJSON(t, h, http.MethodGet, "/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if !st.HasCore || st.Total != 3 {
		t.Errorf("status = %+v", st)
	}
}
