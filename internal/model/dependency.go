package model

import "time"

// DependencyKind classifies how a package is declared in its manifest.
type DependencyKind string

const (
	KindProduction DependencyKind = "production"
	KindDevelopment DependencyKind = "development"
	KindPeer       DependencyKind = "peer"
	KindOptional   DependencyKind = "optional"
)

// Registry identifies the upstream package registry a Dependency belongs to.
type Registry string

const (
	RegistryNPM    Registry = "npm"
	RegistryPyPI   Registry = "pypi"
	RegistryCrates Registry = "crates"
	RegistryGo     Registry = "go"
)

// Dependency is a single declared package dependency extracted from a
// manifest file.
type Dependency struct {
	Name     string
	Version  string // empty if the manifest omitted a version constraint
	Kind     DependencyKind
	Registry Registry

	// ManifestPath is the file this dependency was read from.
	ManifestPath string
}

// Info is registry metadata about a package.
type Info struct {
	Name        string
	Latest      string
	Description string
	Created     time.Time
	// Downloads is nil when the registry does not expose a download count.
	Downloads *int64
	Maintainers []string
	// RepositoryURL is the canonical source repository, normalized (no
	// leading "git+", no trailing ".git"), or empty if not derivable.
	RepositoryURL string
}

// AgeDays returns the package's age in days as of now:
// (now - creation-timestamp) / 86_400_000 ms.
func (i Info) AgeDays(now time.Time) float64 {
	return now.Sub(i.Created).Hours() / 24
}
