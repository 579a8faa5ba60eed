package config

// Scanning controls the File Scanner.
type Scanning struct {
	// Include is the set of glob patterns, relative to the scan root, whose
	// union defines the candidate file list.
	Include []string `yaml:"include" json:"include"`

	// Exclude is applied after Include; a match against any pattern here,
	// or against the built-in ignore set, drops a file from the result.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// MaxFileSize is the byte-size ceiling; larger files are dropped.
	MaxFileSize int64 `yaml:"maxFileSize" json:"maxFileSize"`

	// FollowSymlinks controls whether symbolic links are kept: when true, a
	// link is listed as a file entry and later read through the link. The
	// walk never descends into a linked directory either way.
	FollowSymlinks bool `yaml:"followSymlinks" json:"followSymlinks"`
}

// DefaultIncludeGlobs matches every source extension plus recognized
// dependency manifest basenames.
func DefaultIncludeGlobs() []string {
	return []string{
		"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
		"**/*.ts", "**/*.tsx",
		"**/*.py", "**/*.rs", "**/*.go",
		"**/*.java", "**/*.kt", "**/*.cs", "**/*.cpp", "**/*.c", "**/*.h",
		"**/*.php", "**/*.rb", "**/*.swift", "**/*.scala",
		"**/*.vue", "**/*.svelte",
		"**/package.json", "**/requirements.txt", "**/pyproject.toml",
		"**/Cargo.toml", "**/go.mod",
	}
}

// DefaultExcludeGlobs is the built-in ignore set, carried in
// addition to whatever the caller configures.
func DefaultExcludeGlobs() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/.venv/**",
		"**/dist/**",
		"**/build/**",
		"**/.next/**",
		"**/.nuxt/**",
		"**/.output/**",
		"**/target/**",
		"**/vendor/**",
	}
}

// DefaultScanning returns the default scanning configuration.
func DefaultScanning() Scanning {
	return Scanning{
		Include:        DefaultIncludeGlobs(),
		Exclude:        nil,
		MaxFileSize:    1 << 20, // 1 MiB
		FollowSymlinks: false,
	}
}

// SourceExtensions is the fixed is-source extension whitelist.
var SourceExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true,
	".py": true, ".rs": true, ".go": true,
	".java": true, ".kt": true, ".cs": true, ".cpp": true, ".c": true, ".h": true,
	".php": true, ".rb": true, ".swift": true, ".scala": true,
	".vue": true, ".svelte": true,
}

// DependencyManifestBasenames maps a recognized manifest basename
// (lower-cased) to the ecosystem language used by the hallucination
// module.
var DependencyManifestBasenames = map[string]string{
	"package.json":      "javascript",
	"requirements.txt":  "python",
	"pyproject.toml":    "python",
	"cargo.toml":        "rust",
	"go.mod":            "go",
}
