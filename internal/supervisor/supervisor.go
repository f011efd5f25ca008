package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/crofthq/croft/internal/config"
	"github.com/crofthq/croft/internal/logging"
)

const (
	// killGrace is how long Kill pauses after signalling the child. The
	// child's exit is not confirmed; the pause only gives it a window to
	// shut down before the caller proceeds.
	killGrace = 1 * time.Second

	// maxLineBytes bounds a single output line from the child.
	maxLineBytes = 1 << 20
)

// Config holds the settings for a Supervisor.
type Config struct {
	// ExecutablePath is the node executable to run.
	ExecutablePath string

	// RootDir is the node root directory, passed to every invocation via
	// --root-path and hosting the node's configuration document.
	RootDir string

	// Logger receives supervisor diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
}

// Supervisor runs the node executable and tracks at most one child
// process. See the package documentation for the concurrency contract.
type Supervisor struct {
	exePath string
	rootDir string
	logger  *logging.Logger
	store   *config.Store
	grace   time.Duration

	mu       sync.Mutex
	handle   *handle
	onStdout func(line string)
	onStderr func(line string)
	onError  func(err error)
}

// New creates a supervisor for the given executable and root directory.
func New(cfg Config) (*Supervisor, error) {
	if cfg.ExecutablePath == "" {
		return nil, fmt.Errorf("executable path is required")
	}
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("root dir is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	store, err := config.NewStore(cfg.RootDir)
	if err != nil {
		return nil, err
	}

	return &Supervisor{
		exePath: cfg.ExecutablePath,
		rootDir: cfg.RootDir,
		logger:  logger,
		store:   store,
		grace:   killGrace,
	}, nil
}

// Clone returns a fresh supervisor for the same executable and root
// directory, with no tracked process and no registered callbacks.
func (s *Supervisor) Clone() *Supervisor {
	return &Supervisor{
		exePath: s.exePath,
		rootDir: s.rootDir,
		logger:  s.logger,
		store:   s.store,
		grace:   s.grace,
	}
}

// OnStdout registers the callback receiving trimmed child stdout lines.
func (s *Supervisor) OnStdout(fn func(line string)) {
	s.mu.Lock()
	s.onStdout = fn
	s.mu.Unlock()
}

// OnStderr registers the callback receiving trimmed child stderr lines.
func (s *Supervisor) OnStderr(fn func(line string)) {
	s.mu.Lock()
	s.onStderr = fn
	s.mu.Unlock()
}

// OnError registers the callback receiving supervisor-internal errors.
// Without a registered callback such errors are logged and dropped.
func (s *Supervisor) OnError(fn func(err error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Init runs the node's one-time initialization subcommand and waits for
// it to finish.
func (s *Supervisor) Init(ctx context.Context) error {
	return s.run(ctx, "init")
}

// StartDaemon runs the node daemon. The call blocks until the daemon
// process exits; long-running deployments invoke it from a goroutine or
// a dedicated Clone.
func (s *Supervisor) StartDaemon(ctx context.Context) error {
	return s.run(ctx, "run_daemon")
}

// StartHarvester asks the daemon to start the harvester service and
// waits for the dispatching process to finish.
func (s *Supervisor) StartHarvester(ctx context.Context) error {
	return s.run(ctx, "start", "harvester")
}

// CreatePlot runs one plot creation and waits for it to finish.
func (s *Supervisor) CreatePlot(ctx context.Context, cfg PlotConfig) error {
	args, err := cfg.args()
	if err != nil {
		return err
	}
	return s.run(ctx, args...)
}

func (s *Supervisor) run(ctx context.Context, args ...string) error {
	if err := s.Spawn(args...); err != nil {
		return err
	}
	return s.Wait(ctx)
}

// Spawn launches the executable with --root-path prefixed before args.
// The child runs from the executable's containing directory with a
// relative executable reference, and its output pipes feed the
// registered line callbacks. A failure to start is reported as a
// *SpawnError both from Spawn and from the following Wait.
func (s *Supervisor) Spawn(args ...string) error {
	full := append([]string{"--root-path", s.rootDir}, args...)
	rel := "." + string(os.PathSeparator) + filepath.Base(s.exePath)

	cmd := exec.Command(rel, full...)
	cmd.Dir = filepath.Dir(s.exePath)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.spawnFailed(fmt.Errorf("stdout pipe: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return s.spawnFailed(fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return s.spawnFailed(err)
	}

	h := newHandle(cmd)
	s.track(h)
	s.logger.Debug("process started", "pid", cmd.Process.Pid, "args", strings.Join(args, " "))

	var pumps sync.WaitGroup
	pumps.Add(2)
	go s.pump(stdout, s.emitStdout, &pumps)
	go s.pump(stderr, s.emitStderr, &pumps)

	go func() {
		// Pipes must be drained before Wait releases them.
		pumps.Wait()
		outcome := exitOutcome(cmd.Wait())
		h.resolve(outcome)
		if outcome != nil {
			s.logger.Debug("process finished", "pid", cmd.Process.Pid, "outcome", outcome)
		} else {
			s.logger.Debug("process finished", "pid", cmd.Process.Pid, "outcome", "ok")
		}
	}()

	return nil
}

func (s *Supervisor) spawnFailed(err error) error {
	spawnErr := &SpawnError{Path: s.exePath, Err: err}
	s.track(resolvedHandle(spawnErr))
	s.emitError(spawnErr)
	return spawnErr
}

// Wait blocks until the tracked child settles. It returns nil only for
// exit code 0, *ExitError for any other code, and the *SpawnError when
// the process never started. Each handle settles exactly once; ctx
// cancellation aborts this caller's wait without touching the process.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h == nil {
		return ErrNotSpawned
	}

	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Kill terminates the tracked child. With nothing tracked it returns
// immediately. Otherwise it signals the child, clears the tracked
// reference right away, and pauses for a fixed grace period without
// confirming the exit.
func (s *Supervisor) Kill(ctx context.Context) error {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return nil
	}

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		// SIGTERM delivery is not supported everywhere; fall back to a
		// hard kill.
		if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("terminate process: %w", err)
		}
	}

	select {
	case <-time.After(s.grace):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Alive probes whether the tracked child's OS process still exists.
func (s *Supervisor) Alive(ctx context.Context) bool {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return false
	}
	if _, settled := h.outcome(); settled {
		return false
	}

	alive, err := process.PidExistsWithContext(ctx, int32(h.cmd.Process.Pid))
	if err != nil {
		return false
	}
	return alive
}

// State reports the tracked child's lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h == nil {
		return StateIdle
	}
	err, settled := h.outcome()
	if !settled {
		return StateRunning
	}
	if err == nil {
		return StateExitedOk
	}
	var spawnErr *SpawnError
	if errors.As(err, &spawnErr) {
		return StateSpawnFailed
	}
	return StateExitedWithError
}

// ExecutablePath returns the executable this supervisor runs.
func (s *Supervisor) ExecutablePath() string {
	return s.exePath
}

// RootDir returns the node root directory.
func (s *Supervisor) RootDir() string {
	return s.rootDir
}

// ConfigPath returns the location of the node configuration document.
func (s *Supervisor) ConfigPath() string {
	return s.store.Path()
}

// ReadConfig loads the node configuration document from the root
// directory.
func (s *Supervisor) ReadConfig() (*config.Document, error) {
	return s.store.Read()
}

// WriteConfig persists the node configuration document to the root
// directory.
func (s *Supervisor) WriteConfig(doc *config.Document) error {
	return s.store.Write(doc)
}

// track replaces the tracked handle. A previous handle that has not
// settled is abandoned and its OS process keeps running unsupervised.
func (s *Supervisor) track(h *handle) {
	s.mu.Lock()
	if prev := s.handle; prev != nil {
		if _, settled := prev.outcome(); !settled {
			s.logger.Warn("replacing tracked process, previous child keeps running", "exe", s.exePath)
		}
	}
	s.handle = h
	s.mu.Unlock()
}

func (s *Supervisor) pump(r io.Reader, publish func(string), wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		publish(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		s.emitError(fmt.Errorf("read process output: %w", err))
	}
}

func (s *Supervisor) emitStdout(line string) {
	s.mu.Lock()
	fn := s.onStdout
	s.mu.Unlock()
	if fn != nil {
		fn(line)
	}
}

func (s *Supervisor) emitStderr(line string) {
	s.mu.Lock()
	fn := s.onStderr
	s.mu.Unlock()
	if fn != nil {
		fn(line)
	}
}

func (s *Supervisor) emitError(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn == nil {
		s.logger.Debug("dropping error event", "err", err)
		return
	}
	fn(err)
}

// handle tracks one spawned child. It settles exactly once; duplicate
// resolutions after the first are ignored.
type handle struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

func newHandle(cmd *exec.Cmd) *handle {
	return &handle{cmd: cmd, done: make(chan struct{})}
}

func resolvedHandle(err error) *handle {
	h := &handle{done: make(chan struct{})}
	h.resolve(err)
	return h
}

func (h *handle) resolve(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

func (h *handle) outcome() (error, bool) {
	select {
	case <-h.done:
		return h.err, true
	default:
		return nil, false
	}
}

func exitOutcome(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}
