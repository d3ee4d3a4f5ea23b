package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/sashob/springbox/internal/config"
	"github.com/sashob/springbox/pkg/chart"
	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/graph"
	"github.com/sashob/springbox/pkg/pipeline"
)

type stubStore struct{}

func (stubStore) LinkGraph(_ context.Context, root string, _ int) (graph.Graph, error) {
	if root == "missing" {
		return graph.Graph{}, apperrors.New(apperrors.ErrCodeArticleNotFound, "article %q not found", root)
	}
	return graph.Graph{
		Nodes: []graph.Node{{ID: root}, {ID: "alpha"}, {ID: "beta"}},
		Edges: []graph.Edge{
			{From: root, To: "alpha", Weight: 1},
			{From: root, To: "beta", Weight: 2},
		},
	}, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Physics.Iterations = 50
	runner := pipeline.NewRunner(nil, nil, stubStore{}, log.New(io.Discard))
	return New(runner, cfg, log.New(io.Discard))
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error.Code
}

func TestHealthz(t *testing.T) {
	rec := do(t, testServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestArticleLayoutJSON(t *testing.T) {
	rec := do(t, testServer(t), httptest.NewRequest(http.MethodGet, "/api/articles/incunabula/layout", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Graph-Hash") == "" {
		t.Error("missing X-Graph-Hash header")
	}

	l, err := chart.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not a layout: %v", err)
	}
	if len(l.Points) != 3 {
		t.Errorf("layout has %d points, want 3", len(l.Points))
	}
}

func TestArticleLayoutSVG(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/articles/incunabula/layout?format=svg&labels=true", nil)
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body does not look like SVG")
	}
}

func TestArticleLayoutQueryOverrides(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/articles/incunabula/layout?iterations=10&width=200&height=100", nil)
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	l, err := chart.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 200 || l.Height != 100 {
		t.Errorf("canvas = %gx%g, want 200x100", l.Width, l.Height)
	}
}

func TestArticleLayoutBadParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/articles/incunabula/layout?charge=lots", nil)
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeError(t, rec.Body); code != "INVALID_INPUT" {
		t.Errorf("error code = %q", code)
	}
}

func TestArticleLayoutBadFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/articles/incunabula/layout?format=pdf", nil)
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeError(t, rec.Body); code != "INVALID_FORMAT" {
		t.Errorf("error code = %q", code)
	}
}

func TestArticleNotFound(t *testing.T) {
	rec := do(t, testServer(t), httptest.NewRequest(http.MethodGet, "/api/articles/missing/layout", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := decodeError(t, rec.Body); code != "ARTICLE_NOT_FOUND" {
		t.Errorf("error code = %q", code)
	}
}

func TestGraphLayoutPost(t *testing.T) {
	body, err := json.Marshal(map[string]any{
		"graph": graph.Graph{
			Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
			Edges: []graph.Edge{{From: "a", To: "b", Weight: 1}},
		},
		"options": pipeline.Options{Iterations: 10},
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/layout", bytes.NewReader(body))
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	l, err := chart.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Points) != 2 {
		t.Errorf("layout has %d points, want 2", len(l.Points))
	}
}

func TestGraphLayoutPostInvalidGraph(t *testing.T) {
	body := `{"graph":{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"ghost","weight":1}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(body))
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeError(t, rec.Body); code != "INVALID_GRAPH" {
		t.Errorf("error code = %q", code)
	}
}

func TestGraphLayoutPostMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader("{not json"))
	rec := do(t, testServer(t), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := do(t, testServer(t), req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}
