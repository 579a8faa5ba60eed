// Package scorecard implements the Scorecard Client: security
// scorecard lookups for GitHub/GitLab repositories, with a 1-hour TTL
// cache keyed by normalized repository URL.
package scorecard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"aegis/internal/logging"
	"aegis/internal/model"
)

const cacheTTL = time.Hour

type cacheEntry struct {
	found     bool
	card      *model.Scorecard
	expiresAt time.Time
}

// Client answers scorecard lookups for a canonical repository URL. Only
// github.com and gitlab.com hosts are supported; any other host
// always resolves to "no scorecard" without a network call.
type Client struct {
	httpClient *http.Client

	// baseURL overrides the production endpoint host; used by tests to
	// point at an httptest server.
	baseURL string

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New returns a Client with a 5-second per-request timeout
// for scorecard calls.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      make(map[string]cacheEntry),
	}
}

// Lookup returns the security scorecard for repoURL, or nil if the host is
// unsupported, the project has no scorecard (404), or repoURL does not
// parse. Any other network failure propagates as an error.
func (c *Client) Lookup(ctx context.Context, repoURL string) (*model.Scorecard, error) {
	host, org, repo, ok := parseRepoURL(repoURL)
	if !ok {
		return nil, nil
	}
	key := host + "/" + org + "/" + repo

	c.mu.Lock()
	if e, found := c.cache[key]; found && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.card, nil
	}
	c.mu.Unlock()

	card, err := c.fetch(ctx, host, org, repo)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{found: card != nil, card: card, expiresAt: time.Now().Add(cacheTTL)}
	c.mu.Unlock()

	return card, nil
}

func (c *Client) fetch(ctx context.Context, host, org, repo string) (*model.Scorecard, error) {
	base := c.baseURL
	if base == "" {
		base = "https://api.securityscorecards.dev/projects"
	}
	endpoint := fmt.Sprintf("%s/%s/%s/%s", base, host, org, repo)

	logging.ScorecardDebug("fetching scorecard for %s/%s/%s", host, org, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.ScorecardWarn("request failed for %s/%s/%s: %v", host, org, repo, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logging.ScorecardDebug("%s/%s/%s: no scorecard", host, org, repo)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorecard: status %d for %s/%s/%s", resp.StatusCode, host, org, repo)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var r scorecardResponse
	if err := json.Unmarshal(body, &r); err != nil {
		logging.ScorecardWarn("failed to parse scorecard response for %s/%s/%s: %v", host, org, repo, err)
		return nil, nil
	}

	card := &model.Scorecard{Score: r.Score, AsOf: time.Now()}
	for _, chk := range r.Checks {
		card.Checks = append(card.Checks, model.ScorecardCheck{
			Name:   chk.Name,
			Score:  chk.Score,
			Reason: chk.Reason,
		})
	}
	return card, nil
}

type scorecardResponse struct {
	Score  float64 `json:"score"`
	Checks []struct {
		Name   string `json:"name"`
		Score  int    `json:"score"`
		Reason string `json:"reason"`
	} `json:"checks"`
}

// parseRepoURL extracts (host, org, repo) from a canonical repository URL
// for a supported host, stripping any ".git" suffix and leading "git+".
func parseRepoURL(repoURL string) (host, org, repo string, ok bool) {
	repoURL = strings.TrimPrefix(repoURL, "git+")
	repoURL = strings.TrimSuffix(repoURL, ".git")

	// Allow bare "github.com/org/repo" shorthand as well as full URLs.
	if !strings.Contains(repoURL, "://") {
		repoURL = "https://" + repoURL
	}

	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", "", false
	}

	host = strings.ToLower(u.Hostname())
	if host != "github.com" && host != "gitlab.com" {
		return "", "", "", false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", false
	}
	return host, parts[0], parts[1], true
}
