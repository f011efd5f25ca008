package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crofthq/croft/internal/logging"
	"github.com/crofthq/croft/internal/platform"
)

// Manager orchestrates archive download, extraction, and installation of
// node executables into the versioned binary directory.
type Manager struct {
	binDir     string
	scratchDir string
	baseURL    string
	goos       string
	exeName    string
	downloader *Downloader
	extractor  *Extractor
	logger     *logging.Logger
}

// Config holds configuration for the binary manager.
type Config struct {
	// BinDir is where versioned executables live: <BinDir>/<version>/<name>.
	BinDir string
	// ScratchDir holds archives while they download and unpack.
	ScratchDir string
	// DownloadBaseURL serves archives for requests that carry no URL of
	// their own. Optional when every request carries a URL.
	DownloadBaseURL string
	// Platform is a GOOS value; defaults to the running platform.
	Platform string
	Logger   *logging.Logger
}

// NewManager creates a binary manager. It fails for unsupported platforms
// before any network activity.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.BinDir == "" {
		return nil, fmt.Errorf("BinDir is required")
	}
	if cfg.ScratchDir == "" {
		return nil, fmt.Errorf("ScratchDir is required")
	}

	goos := cfg.Platform
	if goos == "" {
		goos = platform.Host()
	}
	exeName, err := platform.ExecutableName(goos)
	if err != nil {
		return nil, fmt.Errorf("resolve executable name: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Manager{
		binDir:     cfg.BinDir,
		scratchDir: cfg.ScratchDir,
		baseURL:    cfg.DownloadBaseURL,
		goos:       goos,
		exeName:    exeName,
		downloader: NewDownloader(logger),
		extractor:  NewExtractor(),
		logger:     logger,
	}, nil
}

// Path returns the deterministic executable location for version.
func (m *Manager) Path(version string) string {
	return filepath.Join(m.binDir, version, m.exeName)
}

// Installed reports whether the executable for version is already on
// disk. Presence is trusted as-is; contents are never re-verified.
func (m *Manager) Installed(version string) bool {
	return fileExists(m.Path(version))
}

// Ensure returns the location of the executable for req.Version,
// downloading and extracting its release archive when absent. The second
// of two sequential calls for the same version is a no-op.
//
// Ensure is not safe for concurrent calls with the same version: both can
// observe the binary as absent and race on directory creation and file
// writes. Callers serialize acquisition per version.
func (m *Manager) Ensure(ctx context.Context, req Request) (Location, error) {
	if req.Version == "" {
		return Location{}, fmt.Errorf("version is required")
	}

	loc := Location{Version: req.Version, Path: m.Path(req.Version)}
	if fileExists(loc.Path) {
		return loc, nil
	}

	versionDir := filepath.Dir(loc.Path)
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return Location{}, fmt.Errorf("create version dir: %w", err)
	}

	url := req.URL
	if url == "" {
		if m.baseURL == "" {
			return Location{}, fmt.Errorf("no download URL for version %s", req.Version)
		}
		var err error
		url, err = platform.DownloadURL(m.baseURL, m.goos, req.Version)
		if err != nil {
			return Location{}, fmt.Errorf("construct download URL: %w", err)
		}
	}

	asset, err := platform.AssetName(m.goos, req.Version)
	if err != nil {
		return Location{}, fmt.Errorf("resolve asset name: %w", err)
	}
	archivePath := filepath.Join(m.scratchDir, asset)

	m.logger.Info("downloading release archive", "version", req.Version, "url", url)
	if err := m.downloader.DownloadToFile(ctx, url, archivePath); err != nil {
		return Location{}, fmt.Errorf("download archive: %w", err)
	}

	if err := m.extractor.ExtractZip(archivePath, versionDir); err != nil {
		return Location{}, fmt.Errorf("extract archive: %w", err)
	}

	if err := os.Remove(archivePath); err != nil {
		m.logger.Warn("could not remove archive", "path", archivePath, "err", err)
	}

	if !fileExists(loc.Path) {
		return Location{}, fmt.Errorf("extract %s: %w", asset, ErrMissingBinary)
	}
	if m.goos != platform.OSWindows {
		if err := SetExecutable(loc.Path); err != nil {
			return Location{}, err
		}
	}

	m.logger.Info("installed node executable", "version", req.Version, "path", loc.Path)
	return loc, nil
}

// fileExists checks if a file exists, is regular, and is not empty.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
