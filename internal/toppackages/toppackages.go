// Package toppackages holds the preconfigured list of popular package
// names used as the reference set for typosquat detection. The list is
// a process-wide constant: it may
// be refreshed out-of-band but is never mutated during a run.
package toppackages

import (
	"github.com/agnivade/levenshtein"

	"aegis/internal/model"
)

// names is a seed list of widely-used package names across npm, PyPI,
// crates.io, and the Go module proxy. A production deployment would load a
// much larger, periodically refreshed list (per config's
// topPackagesCount); this seed is what typosquat-risk compares against
// when the caller supplies none.
var names = map[model.Registry][]string{
	model.RegistryNPM: {
		"react", "react-dom", "vue", "angular", "lodash", "express",
		"axios", "webpack", "babel", "typescript", "eslint", "jest",
		"next", "chalk", "commander", "moment", "uuid", "redux",
		"request", "async", "mocha", "dotenv", "cors", "body-parser",
		"prettier", "vite", "rollup", "tailwindcss", "socket.io", "jquery",
	},
	model.RegistryPyPI: {
		"requests", "numpy", "pandas", "flask", "django", "pytest",
		"scipy", "matplotlib", "pillow", "boto3", "pyyaml", "click",
		"sqlalchemy", "celery", "scikit-learn", "tensorflow", "torch",
		"fastapi", "uvicorn", "pydantic", "setuptools", "wheel", "six",
	},
	model.RegistryCrates: {
		"serde", "tokio", "rand", "clap", "regex", "log", "anyhow",
		"thiserror", "reqwest", "futures", "async-trait", "bytes",
		"serde_json", "chrono", "uuid", "rayon", "hyper", "tracing",
	},
	model.RegistryGo: {
		"github.com/gin-gonic/gin", "github.com/spf13/cobra",
		"github.com/stretchr/testify", "github.com/pkg/errors",
		"github.com/sirupsen/logrus", "github.com/gorilla/mux",
		"github.com/google/uuid", "golang.org/x/sync", "golang.org/x/net",
		"google.golang.org/grpc", "github.com/aws/aws-sdk-go",
	},
}

// Names returns the top-package names for a registry, truncated to at most
// limit entries (limit <= 0 means "no limit"). The seed list above is
// small enough that, in practice, limit rarely truncates it; it exists so
// callers honoring hallucination.topPackagesCount behave correctly against
// a larger out-of-band list.
func Names(reg model.Registry, limit int) []string {
	all := names[reg]
	if limit <= 0 || limit >= len(all) {
		out := make([]string, len(all))
		copy(out, all)
		return out
	}
	return append([]string{}, all[:limit]...)
}

// ClosestMatch returns the top-package name at exactly the given
// Levenshtein distance from candidate, or ("", false) if none matches.
// Distance 0 (identical) never matches.
func ClosestMatch(candidate string, reg model.Registry, limit, distance int) (string, bool) {
	if distance <= 0 {
		return "", false
	}
	for _, top := range Names(reg, limit) {
		if top == candidate {
			continue
		}
		if levenshtein.ComputeDistance(candidate, top) == distance {
			return top, true
		}
	}
	return "", false
}
