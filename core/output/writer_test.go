package output

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := w.Write("attention_is_enough", []byte("# T\n"), ".md")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := filepath.Join(dir, "attention_is_enough.md"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "# T\n" {
		t.Errorf("read back %q, %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWrite_SanitizesName(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path, err := w.Write("../hep-th/9901001", []byte("x"), ".md")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != w.OutputDir {
		t.Errorf("path %q escapes output dir", path)
	}
	if got := filepath.Base(path); got != "_hep-th_9901001.md" {
		t.Errorf("name = %q", got)
	}
}

func TestWriteTo_Overwrites(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(w.OutputDir, "nested", "paper.md")
	for _, body := range []string{"old", "new"} {
		if _, err := w.WriteTo(path, []byte(body)); err != nil {
			t.Fatalf("WriteTo: %v", err)
		}
	}
	if data, _ := os.ReadFile(path); string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
}
