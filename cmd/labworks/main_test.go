package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDemoPrintsRecords(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"demo"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"Keyboard: 103 keys, red switches, with backlight.",
		"Sample of tantalum, 10 ml.",
		"Sample of tantalum, 15 ml.",
		"Adding milk...",
		"Araucaria does not need watering :)",
		"empty library next id: 1",
		"next id: 3",
		"index of book 1: 0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in demo output:\n%s", want, out)
		}
	}
}

func TestUsageAndUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli(nil, &stdout, &stderr); code != 2 || !strings.Contains(stderr.String(), "usage:") {
		t.Fatalf("expected usage with exit 2, got %d %q", code, stderr.String())
	}
	stderr.Reset()
	if code := cli([]string{"brew"}, &stdout, &stderr); code != 2 || !strings.Contains(stderr.String(), `unknown command "brew"`) {
		t.Fatalf("expected unknown command, got %d %q", code, stderr.String())
	}
	if code := cli([]string{"help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected help exit 0, got %d", code)
	}
	if code := cli([]string{"demo", "-bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected flag error exit 2, got %d", code)
	}
	if code := cli([]string{"demo", "extra"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected positional error exit 2, got %d", code)
	}
	if code := cli([]string{"seed", "-h"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected -h exit 0, got %d", code)
	}
}

func TestSeedAndArchiveWithSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LABWORKS_STORAGE_DRIVER", "sqlite")
	t.Setenv("LABWORKS_SQLITE_PATH", filepath.Join(dir, "bench.db"))
	t.Setenv("LABWORKS_BLOB_DRIVER", "fs")
	t.Setenv("LABWORKS_BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	t.Setenv("LABWORKS_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"seed"}, &stdout, &stderr); code != 0 {
		t.Fatalf("seed failed %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "seeded 8 records") {
		t.Fatalf("unexpected seed output %q", stdout.String())
	}

	fixture := filepath.Join(dir, "extra.json")
	if err := os.WriteFile(fixture, []byte(`{"books":[{"name":"more","pages":9}]}`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	stdout.Reset()
	if code := cli([]string{"seed", "-file", fixture}, &stdout, &stderr); code != 0 {
		t.Fatalf("seed file failed %d: %s", code, stderr.String())
	}

	stdout.Reset()
	if code := cli([]string{"archive", "-key", "reports/test.md"}, &stdout, &stderr); code != 0 {
		t.Fatalf("archive failed %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "archived reports/test.md") {
		t.Fatalf("unexpected archive output %q", stdout.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "blobs", "reports", "test.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	report := string(data)
	if !strings.Contains(report, "9 records") || !strings.Contains(report, "Next book id: 4") {
		t.Fatalf("report does not reflect the persisted bench:\n%s", report)
	}

	stderr.Reset()
	if code := cli([]string{"archive", "-key", "reports/test.md"}, &stdout, &stderr); code != 1 || !strings.Contains(stderr.String(), "labworks archive:") {
		t.Fatalf("expected duplicate key failure, got %d %q", code, stderr.String())
	}
}

func TestSeedRejectsBadFixture(t *testing.T) {
	t.Setenv("LABWORKS_STORAGE_DRIVER", "memory")
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("keyboards:\n  - {number_of_keys: 70, switch_type: red, need_backlight: true}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"seed", "-file", path}, &stdout, &stderr); code != 1 || !strings.Contains(stderr.String(), "keyboards[0]") {
		t.Fatalf("expected validation failure, got %d %q", code, stderr.String())
	}
	if code := cli([]string{"seed", "-file", filepath.Join(t.TempDir(), "missing.yaml")}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected missing file failure, got %d", code)
	}
}

func TestStoreAndBlobConfigErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	t.Setenv("LABWORKS_STORAGE_DRIVER", "cassandra")
	if code := cli([]string{"seed"}, &stdout, &stderr); code != 1 || !strings.Contains(stderr.String(), "unknown storage driver") {
		t.Fatalf("expected storage driver error, got %d %q", code, stderr.String())
	}
	t.Setenv("LABWORKS_STORAGE_DRIVER", "memory")
	t.Setenv("LABWORKS_BLOB_DRIVER", "tape")
	stderr.Reset()
	if code := cli([]string{"archive"}, &stdout, &stderr); code != 1 || !strings.Contains(stderr.String(), "unknown blob driver") {
		t.Fatalf("expected blob driver error, got %d %q", code, stderr.String())
	}
}

func TestServeRejectsBadAddress(t *testing.T) {
	t.Setenv("LABWORKS_STORAGE_DRIVER", "memory")
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"serve", "-addr", "bad:addr:1"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected listen failure, got %d %q", code, stderr.String())
	}
}

func TestMainUsesExitFunc(t *testing.T) {
	var codes []int
	old := exitFunc
	exitFunc = func(code int) { codes = append(codes, code) }
	defer func() { exitFunc = old }()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"labworks", "help"}
	main()
	os.Args = []string{"labworks"}
	main()
	if len(codes) != 2 || codes[0] != 0 || codes[1] != 2 {
		t.Fatalf("unexpected exit codes %v", codes)
	}
}
