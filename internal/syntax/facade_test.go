package syntax

import (
	"context"
	"testing"

	"aegis/internal/model"
)

func TestFacade_ParseJavaScript(t *testing.T) {
	f := NewFacade()
	tree := f.Parse(context.Background(), model.LangJavaScript, []byte("function foo() { return 1; }"))
	defer tree.Close()

	if !tree.Ok {
		t.Fatalf("expected successful parse")
	}
	if tree.Root == nil {
		t.Fatalf("expected non-nil root")
	}
}

func TestFacade_ParseUnsupportedLanguage(t *testing.T) {
	f := NewFacade()
	tree := f.Parse(context.Background(), model.LangGo, []byte("package main"))
	if tree.Ok {
		t.Fatalf("expected empty tree for unsupported language")
	}
}

func TestFacade_QueryCapturesFunctionNames(t *testing.T) {
	f := NewFacade()
	src := []byte("function add(a, b) { return a + b; }\nfunction subtract(a, b) { return a - b; }")
	tree := f.Parse(context.Background(), model.LangJavaScript, src)
	defer tree.Close()

	captures := f.Query(model.LangJavaScript, tree, `(function_declaration name: (identifier) @name)`)
	if len(captures) != 2 {
		t.Fatalf("expected 2 captures, got %d: %+v", len(captures), captures)
	}
	if captures[0].Text != "add" || captures[1].Text != "subtract" {
		t.Errorf("unexpected capture text: %+v", captures)
	}
}

func TestExtractScriptBlock_Vue(t *testing.T) {
	src := []byte(`<template><div/></template>
<script lang="ts">
export default { name: 'Foo' }
</script>
`)
	text, lang, ok := ExtractScriptBlock(src)
	if !ok {
		t.Fatalf("expected script block found")
	}
	if lang != model.LangTypeScript {
		t.Errorf("expected typescript, got %s", lang)
	}
	if len(text) == 0 {
		t.Errorf("expected non-empty script text")
	}
}

func TestExtractScriptBlock_NoScript(t *testing.T) {
	_, _, ok := ExtractScriptBlock([]byte("<template><div/></template>"))
	if ok {
		t.Fatalf("expected no script block found")
	}
}
