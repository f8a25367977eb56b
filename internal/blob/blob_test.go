package blob

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "blobs")
	t.Setenv("LABWORKS_BLOB_DRIVER", "")
	t.Setenv("LABWORKS_BLOB_FS_ROOT", root)
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("expected fs default, got %s", store.Driver())
	}

	t.Setenv("LABWORKS_BLOB_DRIVER", "Memory")
	store, err = Open(ctx)
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("expected memory driver: %v", err)
	}

	t.Setenv("LABWORKS_BLOB_DRIVER", "s3")
	t.Setenv("LABWORKS_BLOB_S3_BUCKET", "")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("expected missing bucket error")
	}

	t.Setenv("LABWORKS_BLOB_DRIVER", "ftp")
	if _, err := Open(ctx); err == nil || !strings.Contains(err.Error(), "unknown blob driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestBackendsShareContract(t *testing.T) {
	ctx := context.Background()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	for _, store := range []Store{fsStore, NewMemory(), NewMockS3ForTests()} {
		if _, err := store.Put(ctx, "reports/a.md", strings.NewReader("a"), PutOptions{}); err != nil {
			t.Fatalf("%s put: %v", store.Driver(), err)
		}
		if _, err := store.Put(ctx, "reports/a.md", strings.NewReader("b"), PutOptions{}); !errors.Is(err, ErrExists) {
			t.Fatalf("%s: expected ErrExists, got %v", store.Driver(), err)
		}
		if _, err := store.Head(ctx, "reports/missing.md"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", store.Driver(), err)
		}
		list, err := store.List(ctx, "reports/")
		if err != nil || len(list) != 1 {
			t.Fatalf("%s list: %+v %v", store.Driver(), list, err)
		}
	}
}
