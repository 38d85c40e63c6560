package host

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	liberrors "github.com/matzehuels/libman/pkg/errors"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	root := t.TempDir()
	h, err := New(filepath.Join(root, "project"), filepath.Join(root, "cache"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(h.WorkingDirectory(), 0o755); err != nil {
		t.Fatal(err)
	}
	return h
}

func text(s string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(s)), nil }
}

func TestWriteFile(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	if err := h.WriteFile(ctx, "wwwroot/lib/jquery/jquery.js", text("one")); err != nil {
		t.Fatal(err)
	}
	if err := h.WriteFile(ctx, "wwwroot/lib/jquery/jquery.js", text("two")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(h.WorkingDirectory(), "wwwroot", "lib", "jquery", "jquery.js"))
	if err != nil || string(data) != "two" {
		t.Fatalf("content = %q, %v", data, err)
	}
	tmp, _ := filepath.Glob(filepath.Join(h.WorkingDirectory(), "wwwroot", "lib", "jquery", ".*.tmp"))
	if len(tmp) != 0 {
		t.Errorf("temp files left: %v", tmp)
	}
}

func TestWriteFileOutsideWorkingDirectory(t *testing.T) {
	h := newTestHost(t)
	opened := false
	open := func() (io.ReadCloser, error) {
		opened = true
		return io.NopCloser(strings.NewReader("x")), nil
	}
	for _, p := range []string{"../escape.js", filepath.Join(filepath.Dir(h.WorkingDirectory()), "abs.js"), "."} {
		err := h.WriteFile(context.Background(), p, open)
		if !liberrors.Is(err, liberrors.CodePathOutsideWorkingDirectory) {
			t.Errorf("WriteFile(%q) = %v, want LIB006", p, err)
		}
	}
	if opened {
		t.Error("source opened for a rejected path")
	}
}

func TestWriteFileSourceError(t *testing.T) {
	h := newTestHost(t)
	boom := errors.New("boom")
	err := h.WriteFile(context.Background(), "a.js", func() (io.ReadCloser, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, err := os.Stat(filepath.Join(h.WorkingDirectory(), "a.js")); !os.IsNotExist(err) {
		t.Error("file created despite source error")
	}
}

func TestWriteFileCancelled(t *testing.T) {
	h := newTestHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.WriteFile(ctx, "a.js", text("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDeleteFilesPrunesEmptyDirectories(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()
	for _, p := range []string{"lib/jquery/dist/jquery.js", "lib/jquery/dist/jquery.min.js", "lib/keep.txt"} {
		if err := h.WriteFile(ctx, p, text("x")); err != nil {
			t.Fatal(err)
		}
	}

	if err := h.DeleteFiles(ctx, "lib/jquery/dist/jquery.js", "lib/jquery/dist/jquery.min.js", "lib/missing.js"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(h.WorkingDirectory(), "lib", "jquery")); !os.IsNotExist(err) {
		t.Error("empty library directory not pruned")
	}
	if _, err := os.Stat(filepath.Join(h.WorkingDirectory(), "lib", "keep.txt")); err != nil {
		t.Error("unrelated file removed")
	}
	if _, err := os.Stat(h.WorkingDirectory()); err != nil {
		t.Error("working directory removed")
	}
}

func TestDeleteFilesRejectsEscapes(t *testing.T) {
	h := newTestHost(t)
	outside := filepath.Join(filepath.Dir(h.WorkingDirectory()), "outside.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := h.DeleteFiles(context.Background(), "../outside.txt")
	if !liberrors.Is(err, liberrors.CodePathOutsideWorkingDirectory) {
		t.Fatalf("err = %v, want LIB006", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside working directory was deleted")
	}
}

func TestCopyAndRead(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()
	src := filepath.Join(h.CacheDirectory(), "cdnjs", "jquery", "3.7.1", "jquery.js")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.CopyFile(ctx, src, "lib/jquery.js"); err != nil {
		t.Fatal(err)
	}
	rc, err := h.ReadFile(ctx, "lib/jquery.js")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "cached" {
		t.Errorf("copied content = %q", data)
	}
}
