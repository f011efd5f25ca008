package node

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blang/semver"
	"golang.org/x/sync/singleflight"

	"github.com/crofthq/croft/internal/binary"
	"github.com/crofthq/croft/internal/config"
	"github.com/crofthq/croft/internal/logging"
	"github.com/crofthq/croft/internal/release"
	"github.com/crofthq/croft/internal/supervisor"
)

// Config holds the settings for a Manager. Zero values fall back to the
// environment-aware defaults in dirs.go and the release package's
// production endpoints.
type Config struct {
	// CroftDir hosts acquired executables and download scratch space.
	CroftDir string

	// ChiaRoot is the wrapped executable's root directory.
	ChiaRoot string

	// FeedURL is the release feed endpoint.
	FeedURL string

	// DownloadBaseURL is where release archives live when an asset does
	// not carry its own download location.
	DownloadBaseURL string

	// PollInterval is how often the background watcher polls the feed.
	PollInterval time.Duration

	// Platform overrides the host GOOS, mainly for tests.
	Platform string

	// Logger receives manager diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
}

// Manager is the top-level facade over release resolution, binary
// acquisition, and supervisor construction.
type Manager struct {
	croftDir     string
	chiaRoot     string
	pollInterval time.Duration
	logger       *logging.Logger

	binaries *binary.Manager
	resolver *release.Resolver
	store    *config.Store

	group singleflight.Group

	mu      sync.Mutex
	watcher *release.Watcher
}

// NewManager creates a manager rooted at the configured directories.
func NewManager(cfg Config) (*Manager, error) {
	croftDir := cfg.CroftDir
	if croftDir == "" {
		var err error
		croftDir, err = DefaultCroftDir()
		if err != nil {
			return nil, err
		}
	}
	chiaRoot := cfg.ChiaRoot
	if chiaRoot == "" {
		var err error
		chiaRoot, err = DefaultChiaRoot()
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	baseURL := cfg.DownloadBaseURL
	if baseURL == "" {
		baseURL = release.DefaultDownloadBaseURL
	}

	binaries, err := binary.NewManager(binary.Config{
		BinDir:          filepath.Join(croftDir, "versions"),
		ScratchDir:      filepath.Join(croftDir, "cache", "downloads"),
		DownloadBaseURL: baseURL,
		Platform:        cfg.Platform,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	resolver, err := release.NewResolver(release.Config{
		FeedURL:         cfg.FeedURL,
		DownloadBaseURL: baseURL,
		Platform:        cfg.Platform,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := config.NewStore(chiaRoot)
	if err != nil {
		return nil, err
	}

	return &Manager{
		croftDir:     croftDir,
		chiaRoot:     chiaRoot,
		pollInterval: cfg.PollInterval,
		logger:       logger,
		binaries:     binaries,
		resolver:     resolver,
		store:        store,
	}, nil
}

// CroftDir returns the croft directory.
func (m *Manager) CroftDir() string {
	return m.croftDir
}

// ChiaRoot returns the node root directory.
func (m *Manager) ChiaRoot() string {
	return m.chiaRoot
}

// ConfigPath returns the location of the node configuration document.
func (m *Manager) ConfigPath() string {
	return m.store.Path()
}

// Bootstrap idempotently creates the croft and node directory layout.
func (m *Manager) Bootstrap() error {
	dirs := []string{
		filepath.Join(m.croftDir, "versions"),
		filepath.Join(m.croftDir, "cache", "downloads"),
		m.chiaRoot,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureLatest resolves the newest platform release and acquires its
// executable.
func (m *Manager) EnsureLatest(ctx context.Context) (release.Release, binary.Location, error) {
	rel, err := m.resolver.Latest(ctx)
	if err != nil {
		return release.Release{}, binary.Location{}, err
	}
	loc, err := m.ensure(ctx, rel)
	if err != nil {
		return release.Release{}, binary.Location{}, err
	}
	return rel, loc, nil
}

// EnsureVersion acquires the executable for one specific version. Its
// archive URL is constructed from the download base.
func (m *Manager) EnsureVersion(ctx context.Context, version string) (binary.Location, error) {
	ver, err := semver.Parse(version)
	if err != nil {
		return binary.Location{}, fmt.Errorf("parse version %q: %w", version, err)
	}
	return m.ensure(ctx, release.Release{Version: ver})
}

// SupervisorFor acquires the given version (empty means the latest
// known release, falling back to a blocking feed query) and returns a
// supervisor bound to its executable and the node root.
func (m *Manager) SupervisorFor(ctx context.Context, version string) (*supervisor.Supervisor, error) {
	var rel release.Release
	if version == "" {
		var ok bool
		rel, ok = m.latestKnown()
		if !ok {
			var err error
			rel, err = m.resolver.Latest(ctx)
			if err != nil {
				return nil, err
			}
		}
	} else {
		ver, err := semver.Parse(version)
		if err != nil {
			return nil, fmt.Errorf("parse version %q: %w", version, err)
		}
		rel = release.Release{Version: ver}
	}

	loc, err := m.ensure(ctx, rel)
	if err != nil {
		return nil, err
	}

	return supervisor.New(supervisor.Config{
		ExecutablePath: loc.Path,
		RootDir:        m.chiaRoot,
		Logger:         m.logger,
	})
}

// Watch lazily constructs and starts the background release watcher.
// Subsequent calls return the same running watcher.
func (m *Manager) Watch() (*release.Watcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		return m.watcher, nil
	}

	w, err := release.NewWatcher(release.WatcherConfig{
		Source:   m.resolver,
		Ensurer:  acquirer{m},
		Interval: m.pollInterval,
		Logger:   m.logger,
	})
	if err != nil {
		return nil, err
	}
	w.Start()
	m.watcher = w
	return w, nil
}

// Close stops the background watcher if one is running.
func (m *Manager) Close() {
	m.mu.Lock()
	w := m.watcher
	m.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// ensure funnels every acquisition of one version through a single
// in-flight call.
func (m *Manager) ensure(ctx context.Context, rel release.Release) (binary.Location, error) {
	v, err, _ := m.group.Do(rel.Version.String(), func() (any, error) {
		return m.binaries.Ensure(ctx, binary.Request{
			Version: rel.Version.String(),
			URL:     rel.DownloadURL,
		})
	})
	if err != nil {
		return binary.Location{}, err
	}
	return v.(binary.Location), nil
}

func (m *Manager) latestKnown() (release.Release, bool) {
	m.mu.Lock()
	w := m.watcher
	m.mu.Unlock()
	if w == nil {
		return release.Release{}, false
	}
	return w.Latest()
}

// acquirer adapts the manager's serialized ensure path to the watcher's
// Ensurer seam.
type acquirer struct {
	m *Manager
}

func (a acquirer) Ensure(ctx context.Context, rel release.Release) error {
	_, err := a.m.ensure(ctx, rel)
	return err
}
