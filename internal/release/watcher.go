package release

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crofthq/croft/internal/logging"
)

// DefaultPollInterval is how often the watcher checks the feed when no
// interval is configured.
const DefaultPollInterval = 15 * time.Minute

// Source yields the newest published release for this platform.
// *Resolver is the production implementation.
type Source interface {
	Latest(ctx context.Context) (Release, error)
}

// Ensurer guarantees the binary for a release is present locally before
// the release is announced.
type Ensurer interface {
	Ensure(ctx context.Context, rel Release) error
}

// WatcherConfig controls Watcher construction.
type WatcherConfig struct {
	Source   Source
	Ensurer  Ensurer
	Interval time.Duration
	Logger   *logging.Logger
}

// Watcher periodically polls the feed and announces a release only once
// its binary has been acquired. Polling is best-effort: every failure is
// logged and swallowed, the cached latest stays unchanged, and the next
// tick retries with no backoff. A poll slower than the interval may
// overlap the next one; there is no in-flight guard.
type Watcher struct {
	source   Source
	ensurer  Ensurer
	interval time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	latest Release
	has    bool
	subs   []chan Release

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewWatcher creates a stopped Watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Ensurer == nil {
		return nil, fmt.Errorf("ensurer is required")
	}
	w := &Watcher{
		source:   cfg.Source,
		ensurer:  cfg.Ensurer,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		stopCh:   make(chan struct{}),
	}
	if w.interval <= 0 {
		w.interval = DefaultPollInterval
	}
	if w.logger == nil {
		w.logger = logging.Nop()
	}
	return w, nil
}

// Start launches the background poll loop. Calling it again is a no-op.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.wg.Add(1)
		go w.run()
	})
}

// Stop terminates the poll loop and waits for it to finish. Safe to call
// more than once. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.Poll(context.Background())
		case <-w.stopCh:
			return
		}
	}
}

// Subscribe registers for release announcements. The channel is buffered;
// when a subscriber falls behind, announcements are dropped rather than
// blocking the poll loop. The channel is never closed.
func (w *Watcher) Subscribe() <-chan Release {
	ch := make(chan Release, 4)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}

// Latest returns the newest release the watcher has successfully acquired,
// if any.
func (w *Watcher) Latest() (Release, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest, w.has
}

// Poll runs one refresh cycle: fetch the feed, and when a strictly newer
// version appears, acquire its binary and announce it. All failures leave
// the cached latest unchanged and are not returned.
func (w *Watcher) Poll(ctx context.Context) {
	rel, err := w.source.Latest(ctx)
	if err != nil {
		w.logger.Warn("release check failed", "err", err)
		return
	}

	w.mu.Lock()
	cur, has := w.latest, w.has
	w.mu.Unlock()
	if has && !rel.Version.GT(cur.Version) {
		return
	}

	if err := w.ensurer.Ensure(ctx, rel); err != nil {
		w.logger.Warn("new release not acquired", "version", rel.Version.String(), "err", err)
		return
	}

	w.mu.Lock()
	w.latest, w.has = rel, true
	subs := make([]chan Release, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- rel:
		default:
		}
	}
	w.logger.Info("new release ready", "version", rel.Version.String())
}
