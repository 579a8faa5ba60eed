// Package manifest parses dependency manifest files into Package Dependency
// records. A malformed file always yields an empty list rather than
// an error; manifest parsing must never abort the pipeline.
package manifest

import (
	"encoding/json"
	"regexp"
	"strings"

	"aegis/internal/logging"
	"aegis/internal/model"
)

// Parse dispatches on the basename of path (case-insensitive) and returns
// the dependencies declared in content.
func Parse(path string, content []byte) []model.Dependency {
	base := strings.ToLower(lastElement(path))
	switch base {
	case "package.json":
		return parsePackageJSON(path, content)
	case "requirements.txt":
		return parseRequirementsTxt(path, content)
	case "pyproject.toml":
		return parsePyprojectToml(path, content)
	case "cargo.toml":
		return parseCargoToml(path, content)
	case "go.mod":
		return parseGoMod(path, content)
	default:
		return nil
	}
}

func lastElement(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

func parsePackageJSON(path string, content []byte) []model.Dependency {
	var pkg packageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		logging.ManifestWarn("malformed package.json at %s: %v", path, err)
		return nil
	}

	var deps []model.Dependency
	add := func(m map[string]string, kind model.DependencyKind) {
		for name, version := range m {
			deps = append(deps, model.Dependency{
				Name:         name,
				Version:      version,
				Kind:         kind,
				Registry:     model.RegistryNPM,
				ManifestPath: path,
			})
		}
	}
	add(pkg.Dependencies, model.KindProduction)
	add(pkg.DevDependencies, model.KindDevelopment)
	add(pkg.PeerDependencies, model.KindPeer)
	add(pkg.OptionalDependencies, model.KindOptional)
	return deps
}

var nameVersionRe = regexp.MustCompile(`^([A-Za-z0-9._\-]+)([><=!]+(.+))?`)

func parseRequirementsTxt(path string, content []byte) []model.Dependency {
	var deps []model.Dependency
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := nameVersionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		deps = append(deps, model.Dependency{
			Name:         m[1],
			Version:      strings.TrimSpace(m[3]),
			Kind:         model.KindProduction,
			Registry:     model.RegistryPyPI,
			ManifestPath: path,
		})
	}
	return deps
}

var pyprojectDepsRe = regexp.MustCompile(`(?s)dependencies\s*=\s*\[(.*?)\]`)

func parsePyprojectToml(path string, content []byte) []model.Dependency {
	m := pyprojectDepsRe.FindStringSubmatch(string(content))
	if m == nil {
		return nil
	}
	var deps []model.Dependency
	for _, entry := range strings.Split(m[1], ",") {
		entry = strings.TrimSpace(entry)
		entry = strings.Trim(entry, `"'`)
		if entry == "" {
			continue
		}
		sub := nameVersionRe.FindStringSubmatch(entry)
		if sub == nil {
			continue
		}
		deps = append(deps, model.Dependency{
			Name:         sub[1],
			Version:      strings.TrimSpace(sub[3]),
			Kind:         model.KindProduction,
			Registry:     model.RegistryPyPI,
			ManifestPath: path,
		})
	}
	return deps
}

var cargoEntryRe = regexp.MustCompile(`^([A-Za-z0-9._\-]+)\s*=\s*"([^"]*)"`)

func parseCargoToml(path string, content []byte) []model.Dependency {
	var deps []model.Dependency
	inDeps := false
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			// Only dependency tables ([dependencies], [dev-dependencies],
			// [target.'cfg'.dependencies], ...) declare crates.
			inDeps = strings.HasSuffix(strings.Trim(line, "[]"), "dependencies")
			continue
		}
		if !inDeps {
			continue
		}
		m := cargoEntryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		deps = append(deps, model.Dependency{
			Name:         m[1],
			Version:      m[2],
			Kind:         model.KindProduction,
			Registry:     model.RegistryCrates,
			ManifestPath: path,
		})
	}
	return deps
}

func parseGoMod(path string, content []byte) []model.Dependency {
	var deps []model.Dependency
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		deps = append(deps, model.Dependency{
			Name:         fields[0],
			Version:      fields[1],
			Kind:         model.KindProduction,
			Registry:     model.RegistryGo,
			ManifestPath: path,
		})
	}
	return deps
}
