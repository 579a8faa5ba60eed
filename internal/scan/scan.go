// Package scan walks a directory tree and produces the candidate file list
// that every later stage (manifest, syntax, graph, rules) operates over.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"aegis/internal/config"
	"aegis/internal/logging"
	"aegis/internal/model"
)

// Scanner walks a root directory and classifies the files it finds.
type Scanner struct {
	cfg config.Scanning
}

// New returns a Scanner configured by cfg.
func New(cfg config.Scanning) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan produces the deduplicated, size-filtered, glob-matched file list
// rooted at root. Files that cannot be stat'd are skipped with a
// warning, never aborting the scan.
func (s *Scanner) Scan(ctx context.Context, root string) ([]model.File, error) {
	timer := logging.StartTimer(logging.CategoryScan, "Scan")
	defer timer.Stop()

	include := s.cfg.Include
	if len(include) == 0 {
		include = config.DefaultIncludeGlobs()
	}
	exclude := append(append([]string{}, config.DefaultExcludeGlobs()...), s.cfg.Exclude...)
	maxSize := s.cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = config.DefaultScanning().MaxFileSize
	}

	seen := make(map[string]bool)
	var files []model.File

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			logging.ScanWarn("walk error at %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 && !s.cfg.FollowSymlinks {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if !matchesAny(rel, include) {
			return nil
		}
		if matchesAny(rel, exclude) {
			return nil
		}

		if seen[path] {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			logging.ScanWarn("cannot stat %s: %v", path, statErr)
			return nil
		}
		if info.Size() > maxSize {
			logging.ScanDebug("skipping %s: %d bytes exceeds maxFileSize", path, info.Size())
			return nil
		}

		seen[path] = true
		files = append(files, classify(path, info.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	logging.Scan("scanned %s: %d files", root, len(files))
	return files, nil
}

// matchesAny reports whether rel matches any of patterns under doublestar
// glob semantics, or (for bare-basename patterns) matches the basename
// anywhere in the tree.
func matchesAny(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

func classify(path string, size int64) model.File {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	lang := model.LangUnknown
	if l, ok := extensionLanguage[ext]; ok {
		lang = l
	}

	isManifest := false
	if manifestLang, ok := config.DependencyManifestBasenames[strings.ToLower(base)]; ok {
		isManifest = true
		if lang == model.LangUnknown {
			lang = model.Language(manifestLang)
		}
	}

	return model.File{
		Path:                  path,
		Language:              lang,
		Size:                  size,
		IsSource:              config.SourceExtensions[ext],
		IsDependencyManifest:  isManifest,
	}
}

var extensionLanguage = map[string]model.Language{
	".js":     model.LangJavaScript,
	".jsx":    model.LangJavaScript,
	".mjs":    model.LangJavaScript,
	".cjs":    model.LangJavaScript,
	".ts":     model.LangTypeScript,
	".tsx":    model.LangTypeScript,
	".py":     model.LangPython,
	".rs":     model.LangRust,
	".go":     model.LangGo,
	".vue":    model.LangVue,
	".svelte": model.LangSvelte,
}
