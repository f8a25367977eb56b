package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"labworks/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver")
	}
	md := map[string]string{"a": "1"}
	info, err := s.Put(ctx, "reports/one", strings.NewReader("abc"), core.PutOptions{ContentType: "text/plain", Metadata: md})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	md["a"] = "mutated"
	if info.Size != 3 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "reports/one", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	h, err := s.Head(ctx, "reports/one")
	if err != nil || h.Metadata["a"] != "1" {
		t.Fatalf("metadata must be copied on put: %+v %v", h, err)
	}
	h.Metadata["a"] = "changed"
	_, rc, err := s.Get(ctx, "reports/one")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "abc" {
		t.Fatalf("unexpected body %q", b)
	}
	if again, _ := s.Head(ctx, "reports/one"); again.Metadata["a"] != "1" {
		t.Fatalf("metadata must be copied on read")
	}
	if _, err := s.Put(ctx, "reports/one", strings.NewReader("abcd"), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := s.Put(ctx, "z", strings.NewReader(""), core.PutOptions{}); err != nil {
		t.Fatalf("put z: %v", err)
	}
	list, _ := s.List(ctx, "reports/")
	if len(list) != 1 || list[0].Size != 4 {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, _ := s.Delete(ctx, "reports/one"); !ok {
		t.Fatalf("expected delete true")
	}
	if ok, _ := s.Delete(ctx, "reports/one"); ok {
		t.Fatalf("expected delete false")
	}
}

func TestMemoryStoreMissingAndUnsupported(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.PresignURL(ctx, "nope", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if _, err := s.Put(ctx, " ", strings.NewReader(""), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}
