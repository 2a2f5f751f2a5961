package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "single file", path: "Types.kt"},
		{name: "package path", path: "com/acme/api/Types.kt"},
		{name: "keyword segment", path: "com/acme/in/Types.kt"},
		{name: "empty", path: "", wantErr: true, errMsg: "empty"},
		{name: "leading slash", path: "/com/Types.kt", wantErr: true, errMsg: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/com/Types.kt", wantErr: true, errMsg: "absolute paths not allowed"},
		{name: "backslash", path: `com\acme\Types.kt`, wantErr: true, errMsg: "backslash"},
		{name: "traversal", path: "com/../Types.kt", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "leading traversal", path: "../Types.kt", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "dot dot only", path: "..", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "dot prefix", path: "./Types.kt", wantErr: true, errMsg: "not clean"},
		{name: "double slash", path: "com//Types.kt", wantErr: true, errMsg: "not clean"},
		{name: "trailing slash", path: "com/acme/", wantErr: true, errMsg: "not clean"},
		{name: "dot", path: ".", wantErr: true, errMsg: "not clean"},
		{name: "dots in name", path: "com/acme/Types..kt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath(%q) error = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()

	content := []byte("package com.acme\n")
	if err := s.WriteFile(ctx, "com/acme/Types.kt", content); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	content[0] = 'X'
	if got := string(s.Get("com/acme/Types.kt")); got != "package com.acme\n" {
		t.Errorf("Get() = %q, stored content aliases the argument", got)
	}

	got := s.Get("com/acme/Types.kt")
	got[0] = 'Y'
	if string(s.Get("com/acme/Types.kt")) != "package com.acme\n" {
		t.Error("Get() result aliases stored content")
	}
	if s.Get("missing.kt") != nil {
		t.Error("Get(missing) != nil")
	}

	if err := s.WriteFile(ctx, "Types.kt", nil); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Types.kt", "com/acme/Types.kt"}; !slices.Equal(s.Paths(), want) {
		t.Errorf("Paths() = %v, want %v", s.Paths(), want)
	}
	if n := len(s.Files()); n != 2 {
		t.Errorf("len(Files()) = %d, want 2", n)
	}

	if err := s.WriteFile(ctx, "../escape.kt", nil); err == nil {
		t.Error("WriteFile(../escape.kt) succeeded")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.WriteFile(cancelled, "late.kt", nil); err == nil {
		t.Error("WriteFile() with cancelled context succeeded")
	}

	s.Reset()
	if n := len(s.Paths()); n != 0 {
		t.Errorf("after Reset, %d files remain", n)
	}
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.WriteFile(ctx, fmt.Sprintf("pkg%d/Types.kt", i), []byte("x")); err != nil {
				t.Errorf("WriteFile() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if n := len(s.Paths()); n != 50 {
		t.Errorf("len(Paths()) = %d, want 50", n)
	}
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root)

	if err := s.WriteFile(ctx, "com/acme/api/Types.kt", []byte("first")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	full := filepath.Join(root, "com", "acme", "api", "Types.kt")
	got, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("content = %q, want %q", got, "first")
	}
	info, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	if err := s.WriteFile(ctx, "com/acme/api/Types.kt", []byte("second")); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	got, _ = os.ReadFile(full)
	if string(got) != "second" {
		t.Errorf("content after overwrite = %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(full))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".typepoet-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFilesystemSink_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := &FilesystemSink{Root: root, Mode: 0600}

	if err := s.WriteFile(ctx, "Types.kt", []byte("one")); err != nil {
		t.Fatal(err)
	}
	err := s.WriteFile(ctx, "Types.kt", []byte("two"))
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second WriteFile() error = %v, want already exists", err)
	}
	got, _ := os.ReadFile(filepath.Join(root, "Types.kt"))
	if string(got) != "one" {
		t.Errorf("content = %q, want %q", got, "one")
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestFilesystemSink_RejectsBadPaths(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())
	for _, p := range []string{"", "/etc/passwd", "../x.kt", "a/../../x.kt"} {
		if err := s.WriteFile(context.Background(), p, nil); err == nil {
			t.Errorf("WriteFile(%q) succeeded", p)
		}
	}
}

func TestDiscardSink(t *testing.T) {
	var s DiscardSink
	ctx := context.Background()
	if err := s.WriteFile(ctx, "a/Types.kt", []byte("abc")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(ctx, "b/Types.kt", []byte("de")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(ctx, "/abs.kt", nil); err == nil {
		t.Error("WriteFile(/abs.kt) succeeded")
	}
	files, size := s.Stats()
	if files != 2 || size != 5 {
		t.Errorf("Stats() = %d, %d, want 2, 5", files, size)
	}
}
