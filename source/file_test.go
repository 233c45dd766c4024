package source

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thisisjab/myn/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHasValidExtension(t *testing.T) {
	tests := map[string]bool{
		"main.myn":        true,
		"MAIN.MYN":        true,
		"dir/x.myn":       true,
		"main.Myn":        false,
		"main.txt":        false,
		"myn":             false,
		"archive.myn.bak": false,
	}

	for input, expected := range tests {
		if HasValidExtension(input) != expected {
			t.Fatalf("HasValidExtension(%q) = %v, want %v", input, !expected, expected)
		}
	}
}

func TestNewFileSourceRejectsExtension(t *testing.T) {
	if _, err := NewFileSource(discardLogger(), FileSourceConfig{Paths: []string{"notes.txt"}}); err == nil {
		t.Fatal("expected an error for a non myn file")
	}

	if _, err := NewFileSource(discardLogger(), FileSourceConfig{}); err == nil {
		t.Fatal("expected an error without files")
	}
}

func TestProvide(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.myn")
	b := filepath.Join(dir, "b.MYN")
	if err := os.WriteFile(a, []byte(`output("a");`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(`output("b");`), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(discardLogger(), FileSourceConfig{Paths: []string{a, b}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	units := make(chan entity.SourceUnit, 2)
	if err := src.Provide(context.Background(), units); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(units)

	var got []entity.SourceUnit
	for u := range units {
		got = append(got, u)
	}

	if len(got) != 2 || got[0].Name != a || got[1].Content != `output("b");` {
		t.Fatalf("unexpected units %+v", got)
	}
}

func TestProvideMissingFile(t *testing.T) {
	src, err := NewFileSource(discardLogger(), FileSourceConfig{Paths: []string{filepath.Join(t.TempDir(), "gone.myn")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := src.Provide(context.Background(), make(chan entity.SourceUnit, 1)); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestProvideSkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.myn")
	if err := os.WriteFile(present, []byte(`output("ok");`), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(discardLogger(), FileSourceConfig{Paths: []string{filepath.Join(dir, "gone.myn"), present}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	units := make(chan entity.SourceUnit, 2)
	if err := src.Provide(context.Background(), units); err == nil {
		t.Fatal("expected an error for the missing file")
	}
	close(units)

	var got []string
	for u := range units {
		got = append(got, u.Name)
	}

	if len(got) != 1 || got[0] != present {
		t.Fatalf("expected only %s to be provided, got %v", present, got)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.myn")
	if err := os.WriteFile(path, []byte(`output("v1");`), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(discardLogger(), FileSourceConfig{Paths: []string{path}, Watch: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	units := make(chan entity.SourceUnit)
	done := make(chan error, 1)
	go func() { done <- src.Provide(ctx, units) }()

	first := <-units
	if first.Content != `output("v1");` {
		t.Fatalf("unexpected first unit %+v", first)
	}

	// Keep writing until the watcher picks the change up; the watch may not be registered yet.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case u := <-units:
			if u.Content != `output("v2");` {
				t.Fatalf("unexpected changed unit %+v", u)
			}
			cancel()
			<-done
			return
		case <-ticker.C:
			if err := os.WriteFile(path, []byte(`output("v2");`), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for the change")
		}
	}
}
