package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"labworks/internal/blob/core"
)

func TestMockStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	if store.Driver() != core.DriverS3 || store.Bucket() != MockBucket {
		t.Fatalf("unexpected driver or bucket")
	}
	info, err := store.Put(ctx, "reports/bench.md", strings.NewReader("# Bench"), core.PutOptions{ContentType: "text/markdown", Metadata: map[string]string{"records": "2"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("# Bench")) || info.ContentType != "text/markdown" || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "reports/bench.md", strings.NewReader("again"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := store.Put(ctx, "reports/bench.md", strings.NewReader("## replaced"), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, rc, err := store.Get(ctx, "reports/bench.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "## replaced" || got.Size != int64(len(body)) {
		t.Fatalf("unexpected body %q info %+v", body, got)
	}
	if _, err := store.Put(ctx, "other/x", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "reports/bench.md" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "reports/bench.md")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "reports/bench.md")
	if err != nil || ok {
		t.Fatalf("expected second delete to report false: %v %v", ok, err)
	}
}

func TestMockStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	if _, err := store.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
	if _, _, err := store.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
}

func TestPresignURL(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	url, err := store.PresignURL(ctx, "reports/bench.md", core.SignedURLOptions{Expiry: time.Minute})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "reports/bench.md") || !strings.Contains(url, "X-Amz-Expires=60") {
		t.Fatalf("unexpected url %s", url)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "DELETE"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LABWORKS_BLOB_S3_BUCKET", "")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	t.Setenv("LABWORKS_BLOB_S3_BUCKET", "bench")
	t.Setenv("LABWORKS_BLOB_S3_REGION", "eu-west-1")
	t.Setenv("LABWORKS_BLOB_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("LABWORKS_BLOB_S3_PATH_STYLE", "TRUE")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Bucket != "bench" || cfg.Region != "eu-west-1" || cfg.Endpoint != "http://minio:9000" || !cfg.PathStyle {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket required error")
	}
}
