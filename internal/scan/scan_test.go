package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"aegis/internal/config"
	"aegis/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScan_ClassifiesAndExcludesBuiltins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "app.ts"), "export const x = 1;")
	writeFile(t, filepath.Join(root, "node_modules", "x", "index.js"), "module.exports = {};")
	writeFile(t, filepath.Join(root, "package.json"), "{}")

	s := New(config.DefaultScanning())
	files, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
	for _, f := range files {
		if filepath.Base(f.Path) == "index.js" {
			t.Fatalf("node_modules file should have been excluded: %s", f.Path)
		}
	}
}

func TestScan_ClassifiesManifestLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "requirements.txt"), "flask==2.0\n")

	s := New(config.DefaultScanning())
	files, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Language != model.LangPython {
		t.Errorf("expected python, got %s", files[0].Language)
	}
	if !files[0].IsDependencyManifest {
		t.Errorf("expected IsDependencyManifest true")
	}
}

func TestScan_SkipsOversizeFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 200)
	for i := range big {
		big[i] = 'a'
	}
	writeFile(t, filepath.Join(root, "big.go"), string(big))

	cfg := config.DefaultScanning()
	cfg.MaxFileSize = 10
	s := New(cfg)
	files, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected oversize file to be dropped, got %+v", files)
	}
}

func TestScan_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b")
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	s := New(config.DefaultScanning())
	files, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0].Path) != "a.go" {
		t.Fatalf("expected sorted [a.go, b.go], got %+v", files)
	}
}
