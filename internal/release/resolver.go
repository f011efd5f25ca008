// Package release resolves which farming-node versions are published for
// this platform and watches the release feed for new ones. The feed is a
// single JSON document listing release assets; versions are extracted
// from asset names, never from feed metadata.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/blang/semver"

	"github.com/crofthq/croft/internal/logging"
	"github.com/crofthq/croft/internal/platform"
)

const (
	// DefaultFeedURL is the release feed queried when none is configured.
	DefaultFeedURL = "https://api.github.com/repos/Chia-Network/chia-blockchain/releases/latest"

	// DefaultDownloadBaseURL is where release archives live when an asset
	// does not carry its own download location.
	DefaultDownloadBaseURL = "https://github.com/Chia-Network/chia-blockchain/releases/download"

	defaultUserAgent   = "croft/1.0"
	defaultFeedTimeout = 30 * time.Second
)

// ErrNoMatchingAsset is returned when the feed answered but none of its
// assets are named for this platform.
var ErrNoMatchingAsset = errors.New("no release asset matches platform")

// FeedError reports a transport failure or non-success HTTP status from
// the release feed.
type FeedError struct {
	URL    string
	Status int // zero when the request never completed
	Err    error
}

func (e *FeedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("release feed %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("release feed %s: %v", e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// Release identifies one published version of the farming node. Releases
// are immutable and compared only by version.
type Release struct {
	Version     semver.Version
	DownloadURL string
}

// The feed is GitHub-shaped: the only fields read are the asset names and
// their download locations.
type feedDocument struct {
	Assets []feedAsset `json:"assets"`
}

type feedAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Config controls Resolver construction. Zero values select defaults.
type Config struct {
	FeedURL         string
	DownloadBaseURL string
	UserAgent       string

	// Platform is a GOOS value; defaults to the running platform.
	Platform string

	Client *http.Client
	Logger *logging.Logger
}

// Resolver queries the release feed for the newest version published for
// one platform.
type Resolver struct {
	feedURL string
	baseURL string
	ua      string
	goos    string
	pattern *regexp.Regexp
	client  *http.Client
	logger  *logging.Logger
}

// NewResolver creates a Resolver. It fails for unsupported platforms
// before any network activity.
func NewResolver(cfg Config) (*Resolver, error) {
	goos := cfg.Platform
	if goos == "" {
		goos = platform.Host()
	}
	pattern, err := platform.AssetPattern(goos)
	if err != nil {
		return nil, fmt.Errorf("resolve asset pattern: %w", err)
	}

	r := &Resolver{
		feedURL: cfg.FeedURL,
		baseURL: cfg.DownloadBaseURL,
		ua:      cfg.UserAgent,
		goos:    goos,
		pattern: pattern,
		client:  cfg.Client,
		logger:  cfg.Logger,
	}
	if r.feedURL == "" {
		r.feedURL = DefaultFeedURL
	}
	if r.baseURL == "" {
		r.baseURL = DefaultDownloadBaseURL
	}
	if r.ua == "" {
		r.ua = defaultUserAgent
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: defaultFeedTimeout}
	}
	if r.logger == nil {
		r.logger = logging.Nop()
	}
	return r, nil
}

// Latest fetches the feed once and returns the greatest version among
// assets named for this platform. When two assets parse to the same
// version the first in the response wins; the ordering is not a contract
// but is stable for a given response.
func (r *Resolver) Latest(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.feedURL, nil)
	if err != nil {
		return Release{}, &FeedError{URL: r.feedURL, Err: err}
	}
	req.Header.Set("User-Agent", r.ua)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Release{}, &FeedError{URL: r.feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, &FeedError{
			URL:    r.feedURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var doc feedDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Release{}, &FeedError{URL: r.feedURL, Err: fmt.Errorf("decode feed: %w", err)}
	}

	var best Release
	found := false
	for _, asset := range doc.Assets {
		m := r.pattern.FindStringSubmatch(asset.Name)
		if m == nil {
			continue
		}
		ver, err := semver.Parse(m[1])
		if err != nil {
			r.logger.Debug("skipping unparseable asset version", "asset", asset.Name, "err", err)
			continue
		}
		if found && !ver.GT(best.Version) {
			continue
		}
		url := asset.BrowserDownloadURL
		if url == "" {
			url, err = platform.DownloadURL(r.baseURL, r.goos, m[1])
			if err != nil {
				continue
			}
		}
		best = Release{Version: ver, DownloadURL: url}
		found = true
	}
	if !found {
		return Release{}, fmt.Errorf("scanned %d assets: %w", len(doc.Assets), ErrNoMatchingAsset)
	}

	r.logger.Debug("resolved latest release", "version", best.Version.String())
	return best, nil
}
