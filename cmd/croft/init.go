package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/crofthq/croft/internal/platform"
)

// runInit handles the `croft init` subcommand
func runInit(args []string) error {
	flags, err := parseRunFlags(args)
	if err != nil {
		return err
	}

	// Downloads dominate; give them room
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	m, err := newManager(flags.verbose)
	if err != nil {
		return err
	}

	fmt.Println("Initializing croft...")
	fmt.Println()

	// Step 1: Create directory structure
	fmt.Printf("Creating directory structure...\n")
	if err := m.Bootstrap(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	fmt.Printf("✓ Created %s\n", m.CroftDir())

	// Step 2: Detect platform
	fmt.Printf("\nDetecting platform...\n")
	fmt.Printf("✓ Detected %s\n", platform.Describe(ctx))

	// Step 3: Acquire the node executable
	fmt.Printf("\nAcquiring node executable...\n")
	version := flags.version
	if version == "" {
		rel, loc, err := m.EnsureLatest(ctx)
		if err != nil {
			return fmt.Errorf("acquire latest release: %w", err)
		}
		version = rel.Version.String()
		fmt.Printf("✓ Acquired %s (%s)\n", version, loc.Path)
	} else {
		loc, err := m.EnsureVersion(ctx, version)
		if err != nil {
			return fmt.Errorf("acquire release %s: %w", version, err)
		}
		fmt.Printf("✓ Acquired %s (%s)\n", version, loc.Path)
	}

	// Step 4: Initialize the node root
	fmt.Printf("\nInitializing node root...\n")
	sup, err := m.SupervisorFor(ctx, version)
	if err != nil {
		return fmt.Errorf("create supervisor: %w", err)
	}
	sup.OnStderr(func(line string) { fmt.Fprintln(os.Stderr, "  "+line) })
	if flags.verbose {
		sup.OnStdout(func(line string) { fmt.Println("  " + line) })
	}
	if err := sup.Init(ctx); err != nil {
		return fmt.Errorf("node init: %w", err)
	}
	fmt.Printf("✓ Initialized %s\n", m.ChiaRoot())

	// Print success message
	fmt.Println()
	fmt.Println("croft is ready.")
	fmt.Printf("Node root:   %s\n", m.ChiaRoot())
	fmt.Printf("Config file: %s\n", m.ConfigPath())
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  croft daemon       Run the node daemon")
	fmt.Println("  croft harvester    Start harvesting")
	fmt.Println("  croft plot ...     Create plots")

	return nil
}
