package model

// Language is the classification tag a File Record carries.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangVue        Language = "vue"
	LangSvelte     Language = "svelte"
	LangUnknown    Language = "unknown"
)

// IsScriptLanguage reports whether the syntax-tree facade has a
// parser registered for this language.
func (l Language) IsScriptLanguage() bool {
	switch l {
	case LangJavaScript, LangTypeScript, LangPython:
		return true
	}
	return false
}

// File is an immutable record produced by the File Scanner.
type File struct {
	Path               string
	Language           Language
	Size               int64
	IsSource           bool
	IsDependencyManifest bool
}
