package graph

import "testing"

func TestResolve_RelativeExactExtension(t *testing.T) {
	files := map[string]bool{"src/utils.ts": true}
	got, ok := Resolve("", "src/index.ts", "./utils", files)
	if !ok || got != "src/utils.ts" {
		t.Fatalf("expected src/utils.ts, got %q ok=%v", got, ok)
	}
}

func TestResolve_JSSuffixResolvesToTS(t *testing.T) {
	files := map[string]bool{"src/utils.ts": true}
	got, ok := Resolve("", "src/index.ts", "./utils.js", files)
	if !ok || got != "src/utils.ts" {
		t.Fatalf("expected ./utils.js to resolve to src/utils.ts, got %q ok=%v", got, ok)
	}
}

func TestResolve_IndexFallback(t *testing.T) {
	files := map[string]bool{"src/widgets/index.tsx": true}
	got, ok := Resolve("", "src/index.ts", "./widgets", files)
	if !ok || got != "src/widgets/index.tsx" {
		t.Fatalf("expected index.tsx fallback, got %q ok=%v", got, ok)
	}
}

func TestResolve_AtAliasResolvesUnderSrc(t *testing.T) {
	files := map[string]bool{"src/lib/fmt.ts": true}
	got, ok := Resolve("/proj", "src/index.ts", "@/lib/fmt", files)
	if !ok || got != "src/lib/fmt.ts" {
		t.Fatalf("expected src/lib/fmt.ts, got %q ok=%v", got, ok)
	}
}

func TestResolve_NoCandidateFails(t *testing.T) {
	files := map[string]bool{}
	_, ok := Resolve("", "src/index.ts", "./missing", files)
	if ok {
		t.Fatalf("expected resolution failure")
	}
}

func TestResolve_NonRelativePackageNotResolved(t *testing.T) {
	files := map[string]bool{"node_modules/react/index.js": true}
	_, ok := Resolve("", "src/index.ts", "react", files)
	if ok {
		t.Fatalf("bare package specifiers must never resolve")
	}
}
