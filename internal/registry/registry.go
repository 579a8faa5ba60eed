// Package registry implements the Registry Client: existence and
// metadata lookups against npm, PyPI, crates.io, and the Go module proxy,
// with a 5-minute TTL cache shared across both positive and negative
// results.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"aegis/internal/logging"
	"aegis/internal/model"
)

const cacheTTL = 5 * time.Minute

type cacheKey struct {
	registry model.Registry
	name     string
}

type cacheEntry struct {
	exists    bool
	info      *model.Info
	expiresAt time.Time
}

// Client answers exists/info queries against the four supported
// registries, caching both positive and negative results.
type Client struct {
	httpClient *http.Client

	// baseURLs overrides the production endpoint host for a registry;
	// used by tests to point at an httptest server.
	baseURLs map[model.Registry]string

	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

// New returns a Client with a 10-second per-request timeout.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      make(map[cacheKey]cacheEntry),
	}
}

// NewWithBaseURLs returns a Client whose per-registry endpoints are rooted
// at the given base URLs instead of the production hosts. Tests use it to
// point lookups at a local server.
func NewWithBaseURLs(urls map[model.Registry]string) *Client {
	c := New()
	c.baseURLs = urls
	return c
}

// Exists reports whether name is a published package in registry. Any
// non-404 failure propagates as an error; callers must treat only a 404
// response as "phantom".
func (c *Client) Exists(ctx context.Context, name string, reg model.Registry) (bool, error) {
	entry, err := c.lookup(ctx, name, reg)
	if err != nil {
		return false, err
	}
	return entry.exists, nil
}

// Info returns registry metadata for name, or nil if the registry reports
// a 404.
func (c *Client) Info(ctx context.Context, name string, reg model.Registry) (*model.Info, error) {
	entry, err := c.lookup(ctx, name, reg)
	if err != nil {
		return nil, err
	}
	if !entry.exists {
		return nil, nil
	}
	return entry.info, nil
}

func (c *Client) lookup(ctx context.Context, name string, reg model.Registry) (cacheEntry, error) {
	key := cacheKey{registry: reg, name: name}

	c.mu.Lock()
	if e, ok := c.cache[key]; ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	entry, err := c.fetch(ctx, name, reg)
	if err != nil {
		return cacheEntry{}, err
	}
	entry.expiresAt = time.Now().Add(cacheTTL)

	c.mu.Lock()
	c.cache[key] = entry
	c.mu.Unlock()

	return entry, nil
}

func (c *Client) fetch(ctx context.Context, name string, reg model.Registry) (cacheEntry, error) {
	url, ok := c.endpoint(name, reg)
	if !ok {
		return cacheEntry{}, fmt.Errorf("registry: unsupported registry %q", reg)
	}

	logging.RegistryDebug("fetching %s %s", reg, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return cacheEntry{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.RegistryWarn("request failed for %s %s: %v", reg, name, err)
		return cacheEntry{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logging.RegistryDebug("%s %s: not found", reg, name)
		return cacheEntry{exists: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return cacheEntry{}, fmt.Errorf("registry: %s returned status %d for %s", reg, resp.StatusCode, name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cacheEntry{}, err
	}

	info, err := parseInfo(name, reg, body)
	if err != nil {
		logging.RegistryWarn("failed to parse %s response for %s: %v", reg, name, err)
		return cacheEntry{exists: true, info: &model.Info{Name: name, Created: time.Now()}}, nil
	}
	return cacheEntry{exists: true, info: info}, nil
}

func (c *Client) endpoint(name string, reg model.Registry) (string, bool) {
	if base, ok := c.baseURLs[reg]; ok {
		switch reg {
		case model.RegistryNPM:
			return base + "/" + name, true
		case model.RegistryPyPI:
			return base + "/pypi/" + name + "/json", true
		case model.RegistryCrates:
			return base + "/api/v1/crates/" + name, true
		case model.RegistryGo:
			return base + "/" + name + "/@v/list", true
		}
	}

	switch reg {
	case model.RegistryNPM:
		return "https://registry.npmjs.org/" + name, true
	case model.RegistryPyPI:
		return "https://pypi.org/pypi/" + name + "/json", true
	case model.RegistryCrates:
		return "https://crates.io/api/v1/crates/" + name, true
	case model.RegistryGo:
		return "https://proxy.golang.org/" + name + "/@v/list", true
	default:
		return "", false
	}
}

func parseInfo(name string, reg model.Registry, body []byte) (*model.Info, error) {
	switch reg {
	case model.RegistryNPM:
		return parseNPM(name, body)
	case model.RegistryPyPI:
		return parsePyPI(name, body)
	case model.RegistryCrates:
		return parseCrates(name, body)
	case model.RegistryGo:
		// The Go module proxy's @v/list endpoint carries no creation
		// timestamp or description; the registry omits it, so Created
		// falls back to the present instant.
		return &model.Info{Name: name, Created: time.Now()}, nil
	default:
		return nil, fmt.Errorf("unsupported registry %q", reg)
	}
}

type npmResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DistTags    struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Time struct {
		Created string `json:"created"`
	} `json:"time"`
	Repository struct {
		URL string `json:"url"`
	} `json:"repository"`
	Maintainers []struct {
		Name string `json:"name"`
	} `json:"maintainers"`
}

func parseNPM(name string, body []byte) (*model.Info, error) {
	var r npmResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}

	created := time.Now()
	if r.Time.Created != "" {
		if t, err := time.Parse(time.RFC3339, r.Time.Created); err == nil {
			created = t
		}
	}

	var maintainers []string
	for _, m := range r.Maintainers {
		maintainers = append(maintainers, m.Name)
	}

	return &model.Info{
		Name:          name,
		Latest:        r.DistTags.Latest,
		Description:   r.Description,
		Created:       created,
		Maintainers:   maintainers,
		RepositoryURL: normalizeNPMRepo(r.Repository.URL),
	}, nil
}

func normalizeNPMRepo(url string) string {
	url = strings.TrimPrefix(url, "git+")
	url = strings.TrimSuffix(url, ".git")
	return url
}

type pypiResponse struct {
	Info struct {
		Name        string            `json:"name"`
		Version     string            `json:"version"`
		Summary     string            `json:"summary"`
		HomePage    string            `json:"home_page"`
		ProjectURLs map[string]string `json:"project_urls"`
	} `json:"info"`
	Releases map[string][]struct {
		UploadTime string `json:"upload_time_iso_8601"`
	} `json:"releases"`
}

// pypiSourceURLKeys is the project_urls key preference order.
var pypiSourceURLKeys = []string{"Source", "Repository", "GitHub", "Source Code"}

func parsePyPI(name string, body []byte) (*model.Info, error) {
	var r pypiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}

	var repoURL string
	for _, key := range pypiSourceURLKeys {
		if u, ok := r.Info.ProjectURLs[key]; ok && u != "" {
			repoURL = u
			break
		}
	}
	if repoURL == "" && (strings.Contains(r.Info.HomePage, "github.com") || strings.Contains(r.Info.HomePage, "gitlab.com")) {
		repoURL = r.Info.HomePage
	}

	created := time.Now()
	earliest := ""
	for _, uploads := range r.Releases {
		for _, u := range uploads {
			if u.UploadTime == "" {
				continue
			}
			if earliest == "" || u.UploadTime < earliest {
				earliest = u.UploadTime
			}
		}
	}
	if earliest != "" {
		// upload_time_iso_8601 carries fractional seconds and a zone
		// ("2008-11-16T20:26:31.213885Z"); older mirrors omit the zone.
		if t, err := time.Parse(time.RFC3339, earliest); err == nil {
			created = t
		} else if t, err := time.Parse("2006-01-02T15:04:05", earliest); err == nil {
			created = t
		}
	}

	return &model.Info{
		Name:          name,
		Latest:        r.Info.Version,
		Description:   r.Info.Summary,
		Created:       created,
		RepositoryURL: repoURL,
	}, nil
}

type cratesResponse struct {
	Crate struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		CreatedAt   string `json:"created_at"`
		Downloads   int64  `json:"downloads"`
		Repository  string `json:"repository"`
		MaxVersion  string `json:"max_version"`
	} `json:"crate"`
}

func parseCrates(name string, body []byte) (*model.Info, error) {
	var r cratesResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}

	created := time.Now()
	if r.Crate.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.Crate.CreatedAt); err == nil {
			created = t
		}
	}

	downloads := r.Crate.Downloads
	return &model.Info{
		Name:          name,
		Latest:        r.Crate.MaxVersion,
		Description:   r.Crate.Description,
		Created:       created,
		Downloads:     &downloads,
		RepositoryURL: r.Crate.Repository,
	}, nil
}
