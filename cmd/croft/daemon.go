package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// runDaemon handles the `croft daemon` subcommand
func runDaemon(args []string) error {
	flags, err := parseRunFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	m, err := newManager(flags.verbose)
	if err != nil {
		return err
	}

	sup, err := m.SupervisorFor(ctx, flags.version)
	if err != nil {
		return fmt.Errorf("create supervisor: %w", err)
	}
	sup.OnStdout(func(line string) { fmt.Println(line) })
	sup.OnStderr(func(line string) { fmt.Fprintln(os.Stderr, line) })
	sup.OnError(func(err error) { fmt.Fprintf(os.Stderr, "stream error: %v\n", err) })

	fmt.Printf("Starting node daemon (%s)...\n", sup.ExecutablePath())
	err = sup.StartDaemon(ctx)
	if errors.Is(err, context.Canceled) {
		// Interrupted; the child is still ours to stop.
		fmt.Println("Interrupt received, stopping daemon...")
		return sup.Kill(context.Background())
	}
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	fmt.Println("Daemon exited.")
	return nil
}
