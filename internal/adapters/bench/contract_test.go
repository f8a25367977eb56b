package bench

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"labworks/internal/entitymodel"
)

var ginParam = regexp.MustCompile(`:([A-Za-z_]+)`)

// TestRoutesMatchOpenAPIDocument keeps the router and the served contract in
// step: every route is documented and every documented operation is routed.
func TestRoutesMatchOpenAPIDocument(t *testing.T) {
	r, _ := newTestRouter(t)
	routed := map[entitymodel.Operation]bool{}
	for _, route := range r.Routes() {
		routed[entitymodel.Operation{Method: route.Method, Path: ginParam.ReplaceAllString(route.Path, "{$1}")}] = true
	}
	ops, err := entitymodel.Operations()
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	documented := map[entitymodel.Operation]bool{}
	for _, op := range ops {
		documented[op] = true
		if !routed[op] {
			t.Errorf("documented but not routed: %s %s", op.Method, op.Path)
		}
	}
	for op := range routed {
		if !documented[op] {
			t.Errorf("routed but not documented: %s %s", op.Method, op.Path)
		}
	}
}

func TestOpenAPIRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/yaml" {
		t.Fatalf("unexpected openapi response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}
