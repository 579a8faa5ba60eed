package syntax

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"aegis/internal/model"
)

// The parser pool hands a private sitter.Parser to each goroutine;
// concurrent parses must neither race nor leave goroutines behind.
func TestFacade_ConcurrentParses(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := NewFacade()
	sources := map[model.Language][]byte{
		model.LangJavaScript: []byte("function a() { return 1; }"),
		model.LangTypeScript: []byte("const x: number = 1;"),
		model.LangPython:     []byte("def a():\n    return 1\n"),
	}

	var wg sync.WaitGroup
	for lang, src := range sources {
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(lang model.Language, src []byte) {
				defer wg.Done()
				tree := f.Parse(context.Background(), lang, src)
				defer tree.Close()
				if !tree.Ok {
					t.Errorf("parse failed for %s", lang)
				}
			}(lang, src)
		}
	}
	wg.Wait()
}
