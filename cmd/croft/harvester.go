package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// runHarvester handles the `croft harvester` subcommand
func runHarvester(args []string) error {
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

	fmt.Println("Starting harvester...")
	err = sup.StartHarvester(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Interrupt received, stopping...")
		return sup.Kill(context.Background())
	}
	if err != nil {
		return fmt.Errorf("start harvester: %w", err)
	}
	fmt.Println("✓ Harvester start dispatched")
	return nil
}
