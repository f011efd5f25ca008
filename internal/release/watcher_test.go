package release

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blang/semver"
)

type sourceFunc func(ctx context.Context) (Release, error)

func (f sourceFunc) Latest(ctx context.Context) (Release, error) { return f(ctx) }

type ensurerFunc func(ctx context.Context, rel Release) error

func (f ensurerFunc) Ensure(ctx context.Context, rel Release) error { return f(ctx, rel) }

func fixedSource(version, url string) Source {
	rel := Release{Version: semver.MustParse(version), DownloadURL: url}
	return sourceFunc(func(context.Context) (Release, error) { return rel, nil })
}

func okEnsurer(count *atomic.Int32) Ensurer {
	return ensurerFunc(func(context.Context, Release) error {
		if count != nil {
			count.Add(1)
		}
		return nil
	})
}

func TestPollAcquiresAndAnnounces(t *testing.T) {
	var ensured atomic.Int32
	w, err := NewWatcher(WatcherConfig{
		Source:  fixedSource("1.2.3", "https://dl/123"),
		Ensurer: okEnsurer(&ensured),
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	sub := w.Subscribe()

	w.Poll(context.Background())

	if got := ensured.Load(); got != 1 {
		t.Errorf("ensure calls = %d, want 1", got)
	}
	latest, ok := w.Latest()
	if !ok || latest.Version.String() != "1.2.3" {
		t.Errorf("Latest = %v, %v; want 1.2.3, true", latest.Version, ok)
	}
	select {
	case rel := <-sub:
		if rel.Version.String() != "1.2.3" {
			t.Errorf("announced version = %s, want 1.2.3", rel.Version)
		}
	default:
		t.Error("no announcement delivered")
	}
}

func TestPollFeedFailureLeavesCacheUntouched(t *testing.T) {
	var ensured atomic.Int32
	failing := sourceFunc(func(context.Context) (Release, error) {
		return Release{}, &FeedError{URL: "https://feed", Err: errors.New("boom")}
	})
	w, err := NewWatcher(WatcherConfig{Source: failing, Ensurer: okEnsurer(&ensured)})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	sub := w.Subscribe()

	w.Poll(context.Background())

	if ensured.Load() != 0 {
		t.Error("ensure called despite feed failure")
	}
	if _, ok := w.Latest(); ok {
		t.Error("cache populated despite feed failure")
	}
	select {
	case <-sub:
		t.Error("announcement delivered despite feed failure")
	default:
	}
}

func TestPollEnsureFailureSuppressesAnnouncement(t *testing.T) {
	failing := ensurerFunc(func(context.Context, Release) error {
		return errors.New("disk full")
	})
	w, err := NewWatcher(WatcherConfig{
		Source:  fixedSource("1.2.3", "https://dl/123"),
		Ensurer: failing,
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	sub := w.Subscribe()

	w.Poll(context.Background())

	if _, ok := w.Latest(); ok {
		t.Error("cache updated despite ensure failure")
	}
	select {
	case <-sub:
		t.Error("announcement delivered despite ensure failure")
	default:
	}
}

func TestPollIgnoresNonGreaterVersions(t *testing.T) {
	var ensured atomic.Int32
	versions := []string{"1.5.0", "1.5.0", "1.4.9", "1.6.0"}
	var calls atomic.Int32
	source := sourceFunc(func(context.Context) (Release, error) {
		i := calls.Add(1) - 1
		return Release{Version: semver.MustParse(versions[i])}, nil
	})
	w, err := NewWatcher(WatcherConfig{Source: source, Ensurer: okEnsurer(&ensured)})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	for range versions {
		w.Poll(context.Background())
	}

	// 1.5.0 acquired once; repeat and downgrade skipped; 1.6.0 acquired.
	if got := ensured.Load(); got != 2 {
		t.Errorf("ensure calls = %d, want 2", got)
	}
	latest, _ := w.Latest()
	if latest.Version.String() != "1.6.0" {
		t.Errorf("Latest = %s, want 1.6.0", latest.Version)
	}
}

func TestSlowSubscriberDropsAnnouncements(t *testing.T) {
	var n atomic.Int32
	source := sourceFunc(func(context.Context) (Release, error) {
		v := n.Add(1)
		return Release{Version: semver.Version{Major: uint64(v)}}, nil
	})
	w, err := NewWatcher(WatcherConfig{Source: source, Ensurer: okEnsurer(nil)})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	sub := w.Subscribe() // never read from; capacity 4

	// More polls than the subscriber buffer holds. Poll must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			w.Poll(context.Background())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Poll blocked on a slow subscriber")
	}

	if got := len(sub); got != cap(sub) {
		t.Errorf("buffered announcements = %d, want full buffer %d", got, cap(sub))
	}
}

func TestStartPollsOnInterval(t *testing.T) {
	var ensured atomic.Int32
	w, err := NewWatcher(WatcherConfig{
		Source:   fixedSource("2.0.0", "https://dl/200"),
		Ensurer:  okEnsurer(&ensured),
		Interval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	w.Start()
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for ensured.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no poll happened within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStopTerminatesAndIsIdempotent(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{
		Source:   fixedSource("2.0.0", ""),
		Ensurer:  okEnsurer(nil),
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	w.Start()
	w.Stop()
	w.Stop() // second call must not panic or block
}

func TestNewWatcherValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  WatcherConfig
	}{
		{name: "missing source", cfg: WatcherConfig{Ensurer: okEnsurer(nil)}},
		{name: "missing ensurer", cfg: WatcherConfig{Source: fixedSource("1.0.0", "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWatcher(tt.cfg); err == nil {
				t.Error("NewWatcher accepted invalid config")
			}
		})
	}
}
