package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crofthq/croft/internal/platform"
)

func feedHandler(t *testing.T, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("feed request missing User-Agent")
		}
		fmt.Fprint(w, body)
	}
}

func TestLatestPicksGreatestPlatformVersion(t *testing.T) {
	body := `{
		"assets": [
			{"name": "chia-win32-9.9.9.zip", "browser_download_url": "https://dl/win"},
			{"name": "chia-linux-1.2.0.zip", "browser_download_url": "https://dl/120"},
			{"name": "chia-linux-1.10.0.zip", "browser_download_url": "https://dl/1100"},
			{"name": "chia-linux-1.9.9.zip", "browser_download_url": "https://dl/199"},
			{"name": "release-notes.md", "browser_download_url": "https://dl/notes"}
		]
	}`
	srv := httptest.NewServer(feedHandler(t, body))
	defer srv.Close()

	resolver, err := NewResolver(Config{FeedURL: srv.URL, Platform: "linux"})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	rel, err := resolver.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	// 1.10.0 orders above 1.9.9 numerically, not lexically. The win32
	// asset's larger version must not leak across platforms.
	if got := rel.Version.String(); got != "1.10.0" {
		t.Errorf("version = %s, want 1.10.0", got)
	}
	if rel.DownloadURL != "https://dl/1100" {
		t.Errorf("download URL = %s, want https://dl/1100", rel.DownloadURL)
	}
}

func TestLatestEqualVersionsFirstWins(t *testing.T) {
	body := `{
		"assets": [
			{"name": "chia-linux-1.2.3.zip", "browser_download_url": "https://dl/first"},
			{"name": "chia-linux-1.2.3.zip", "browser_download_url": "https://dl/second"}
		]
	}`
	srv := httptest.NewServer(feedHandler(t, body))
	defer srv.Close()

	resolver, err := NewResolver(Config{FeedURL: srv.URL, Platform: "linux"})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	rel, err := resolver.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if rel.DownloadURL != "https://dl/first" {
		t.Errorf("download URL = %s, want the first asset's", rel.DownloadURL)
	}
}

func TestLatestConstructsURLWhenAssetHasNone(t *testing.T) {
	body := `{"assets": [{"name": "chia-linux-2.0.0.zip"}]}`
	srv := httptest.NewServer(feedHandler(t, body))
	defer srv.Close()

	resolver, err := NewResolver(Config{
		FeedURL:         srv.URL,
		DownloadBaseURL: "https://mirror.example/releases",
		Platform:        "linux",
	})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	rel, err := resolver.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	want := "https://mirror.example/releases/2.0.0/chia-linux-2.0.0.zip"
	if rel.DownloadURL != want {
		t.Errorf("download URL = %s, want %s", rel.DownloadURL, want)
	}
}

func TestLatestNoMatchingAsset(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "empty assets",
			body: `{"assets": []}`,
		},
		{
			name: "other platforms only",
			body: `{"assets": [{"name": "chia-win32-1.2.3.zip"}, {"name": "chia-macos-1.2.3.zip"}]}`,
		},
		{
			name: "version embedded in non-matching name",
			body: `{"assets": [{"name": "chia-linux-1.2.3.tar.gz"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(feedHandler(t, tt.body))
			defer srv.Close()

			resolver, err := NewResolver(Config{FeedURL: srv.URL, Platform: "linux"})
			if err != nil {
				t.Fatalf("NewResolver failed: %v", err)
			}
			_, err = resolver.Latest(context.Background())
			if !errors.Is(err, ErrNoMatchingAsset) {
				t.Errorf("error = %v, want ErrNoMatchingAsset", err)
			}
		})
	}
}

func TestLatestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	resolver, err := NewResolver(Config{FeedURL: srv.URL, Platform: "linux"})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	_, err = resolver.Latest(context.Background())
	var feedErr *FeedError
	if !errors.As(err, &feedErr) {
		t.Fatalf("error type = %T, want *FeedError", err)
	}
	if feedErr.Status != http.StatusForbidden {
		t.Errorf("status = %d, want %d", feedErr.Status, http.StatusForbidden)
	}
}

func TestLatestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	resolver, err := NewResolver(Config{FeedURL: srv.URL, Platform: "linux"})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	_, err = resolver.Latest(context.Background())
	var feedErr *FeedError
	if !errors.As(err, &feedErr) {
		t.Fatalf("error type = %T, want *FeedError", err)
	}
	if feedErr.Status != 0 {
		t.Errorf("status = %d, want 0 for transport failure", feedErr.Status)
	}
}

func TestLatestMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(feedHandler(t, `{"assets": [`))
	defer srv.Close()

	resolver, err := NewResolver(Config{FeedURL: srv.URL, Platform: "linux"})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	_, err = resolver.Latest(context.Background())
	var feedErr *FeedError
	if !errors.As(err, &feedErr) {
		t.Errorf("error type = %T, want *FeedError", err)
	}
}

func TestNewResolverUnsupportedPlatform(t *testing.T) {
	// Must fail at construction, before any network activity.
	_, err := NewResolver(Config{Platform: "freebsd"})
	if !errors.Is(err, platform.ErrUnsupported) {
		t.Errorf("error = %v, want platform.ErrUnsupported", err)
	}
}
