package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "exports"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	path, err := fs.Save(context.Background(), "donations_20250301_190000.csv", []byte("#,Name\n"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "#,Name\n" {
		t.Fatalf("content = %q", got)
	}

	if _, err := fs.Save(context.Background(), "donations_20250301_190000.csv", []byte("x")); !errors.Is(err, ErrExists) {
		t.Fatalf("second save err = %v, want ErrExists", err)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"a.csv":         "a.csv",
		"/abs/a.csv":    "abs/a.csv",
		"./x/../y.xlsx": "y.xlsx",
		`sub\b.zip`:     "sub/b.zip",
	}
	for in, want := range cases {
		got, err := sanitizeName(in)
		if err != nil {
			t.Fatalf("sanitizeName(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
	for _, bad := range []string{"", "  ", "..", "../etc/passwd"} {
		if _, err := sanitizeName(bad); err == nil {
			t.Fatalf("sanitizeName(%q) should fail", bad)
		}
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fs.Save(ctx, "a.csv", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
