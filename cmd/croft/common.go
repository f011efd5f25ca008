package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/crofthq/croft/internal/logging"
	"github.com/crofthq/croft/internal/node"
)

// newLogger builds the CLI logger. Verbose mode lowers the level to
// debug.
func newLogger(verbose bool) *logging.Logger {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	return logging.New(cfg)
}

// newManager builds the node manager the subcommands share, rooted at
// the environment-aware default directories.
func newManager(verbose bool) (*node.Manager, error) {
	m, err := node.NewManager(node.Config{Logger: newLogger(verbose)})
	if err != nil {
		return nil, fmt.Errorf("create node manager: %w", err)
	}
	return m, nil
}

// interruptContext returns a context cancelled on SIGINT or SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// runFlags holds the flags shared by the run-style subcommands.
type runFlags struct {
	verbose bool
	version string
}

// parseRunFlags handles --verbose/-v and --version in both the
// "--version x.y.z" and "--version=x.y.z" forms.
func parseRunFlags(args []string) (runFlags, error) {
	var flags runFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--verbose" || arg == "-v":
			flags.verbose = true
		case strings.HasPrefix(arg, "--version="):
			flags.version = strings.TrimPrefix(arg, "--version=")
		case arg == "--version":
			i++
			if i >= len(args) {
				return runFlags{}, fmt.Errorf("--version requires a value")
			}
			flags.version = args[i]
		default:
			return runFlags{}, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return flags, nil
}
