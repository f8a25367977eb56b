package entitymodel

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestOpenAPISpecReturnsCopy(t *testing.T) {
	expected, err := os.ReadFile("bench-api.yaml")
	if err != nil {
		t.Fatalf("read spec: %v", err)
	}
	spec := OpenAPISpec()
	if !bytes.Equal(spec, expected) {
		t.Fatalf("OpenAPISpec does not match embedded contents")
	}
	spec[0] ^= 0xFF
	if next := OpenAPISpec(); !bytes.Equal(next, expected) {
		t.Fatalf("OpenAPISpec mutation leaked into source")
	}
}

func TestNewOpenAPIHandlerServesEmbeddedSpec(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	NewOpenAPIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/yaml" {
		t.Fatalf("expected Content-Type application/yaml, got %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), OpenAPISpec()) {
		t.Fatalf("handler body does not match embedded spec")
	}
}

func TestVersionAndOperations(t *testing.T) {
	if v := Version(); v != "1.0.0" {
		t.Fatalf("unexpected version %q", v)
	}
	ops, err := Operations()
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	want := map[Operation]bool{
		{Method: "GET", Path: "/healthz"}:                   false,
		{Method: "POST", Path: "/samples/{id}/water"}:       false,
		{Method: "GET", Path: "/library/books/{id}/index"}:  false,
		{Method: "DELETE", Path: "/{kind}/{id}"}:            false,
		{Method: "POST", Path: "/araucarias/{id}/watering"}: false,
	}
	for i, op := range ops {
		if _, ok := want[op]; ok {
			want[op] = true
		}
		if i > 0 && ops[i-1].Path > op.Path {
			t.Fatalf("operations not sorted at %d: %v", i, ops)
		}
	}
	for op, seen := range want {
		if !seen {
			t.Fatalf("expected %s %s in document", op.Method, op.Path)
		}
	}
}
