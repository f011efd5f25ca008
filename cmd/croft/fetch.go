package main

import (
	"context"
	"fmt"
	"time"
)

// runFetch handles the `croft fetch` subcommand
func runFetch(args []string) error {
	flags, err := parseRunFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	m, err := newManager(flags.verbose)
	if err != nil {
		return err
	}

	if flags.version != "" {
		fmt.Printf("Acquiring release %s...\n", flags.version)
		loc, err := m.EnsureVersion(ctx, flags.version)
		if err != nil {
			return fmt.Errorf("acquire release %s: %w", flags.version, err)
		}
		fmt.Printf("✓ %s at %s\n", flags.version, loc.Path)
		return nil
	}

	fmt.Println("Resolving latest release...")
	rel, loc, err := m.EnsureLatest(ctx)
	if err != nil {
		return fmt.Errorf("acquire latest release: %w", err)
	}
	fmt.Printf("✓ %s at %s\n", rel.Version, loc.Path)
	return nil
}
