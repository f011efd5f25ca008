package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crofthq/croft/internal/node"
	"github.com/crofthq/croft/internal/release"
)

// parseWatchFlags handles --verbose and --interval for the watch
// subcommand.
func parseWatchFlags(args []string) (bool, time.Duration, error) {
	verbose := false
	interval := release.DefaultPollInterval

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch {
		case arg == "--verbose" || arg == "-v":
			verbose = true
		case strings.HasPrefix(arg, "--interval="):
			interval, err = time.ParseDuration(strings.TrimPrefix(arg, "--interval="))
		case arg == "--interval":
			i++
			if i >= len(args) {
				return false, 0, fmt.Errorf("--interval requires a value")
			}
			interval, err = time.ParseDuration(args[i])
		default:
			return false, 0, fmt.Errorf("unknown flag: %s", arg)
		}
		if err != nil {
			return false, 0, fmt.Errorf("parse %s: %w", arg, err)
		}
	}

	return verbose, interval, nil
}

// runWatch handles the `croft watch` subcommand
func runWatch(args []string) error {
	verbose, interval, err := parseWatchFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	m, err := node.NewManager(node.Config{
		PollInterval: interval,
		Logger:       newLogger(verbose),
	})
	if err != nil {
		return fmt.Errorf("create node manager: %w", err)
	}
	defer m.Close()

	w, err := m.Watch()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	announcements := w.Subscribe()

	fmt.Printf("Polling for new releases every %s (interrupt to stop)...\n", interval)

	// One immediate check so the first result doesn't wait a full
	// interval; its announcement arrives on the subscription below.
	w.Poll(ctx)

	for {
		select {
		case rel := <-announcements:
			fmt.Printf("✓ Acquired new release %s\n", rel.Version)
		case <-ctx.Done():
			fmt.Println("Stopping watcher...")
			return nil
		}
	}
}
