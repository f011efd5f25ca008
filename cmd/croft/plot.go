package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/crofthq/croft/internal/supervisor"
)

// parsePlotFlags maps the plot subcommand's arguments onto a
// PlotConfig plus the shared run flags.
func parsePlotFlags(args []string) (supervisor.PlotConfig, runFlags, error) {
	var (
		cfg   supervisor.PlotConfig
		flags runFlags
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			return args[i], nil
		}

		var err error
		switch {
		case arg == "--verbose" || arg == "-v":
			flags.verbose = true
		case arg == "--bitfield":
			cfg.UseBitfield = true
		case arg == "--temp" || arg == "-t":
			cfg.TempDir, err = next()
		case arg == "--final" || arg == "-d":
			cfg.FinalDir, err = next()
		case arg == "--size" || arg == "-k":
			var value string
			if value, err = next(); err == nil {
				cfg.KSize, err = strconv.Atoi(value)
			}
		case arg == "--threads" || arg == "-r":
			var value string
			if value, err = next(); err == nil {
				cfg.Threads, err = strconv.Atoi(value)
			}
		case arg == "--buckets" || arg == "-u":
			var value string
			if value, err = next(); err == nil {
				cfg.Buckets, err = strconv.Atoi(value)
			}
		case arg == "--memory" || arg == "-b":
			var value string
			if value, err = next(); err == nil {
				cfg.MemoryMiB, err = strconv.ParseFloat(value, 64)
			}
		case arg == "--farmer-key" || arg == "-f":
			cfg.FarmerPublicKey, err = next()
		case arg == "--pool-key" || arg == "-p":
			cfg.PoolPublicKey, err = next()
		case strings.HasPrefix(arg, "--version="):
			flags.version = strings.TrimPrefix(arg, "--version=")
		case arg == "--version":
			flags.version, err = next()
		default:
			return supervisor.PlotConfig{}, runFlags{}, fmt.Errorf("unknown flag: %s", arg)
		}
		if err != nil {
			return supervisor.PlotConfig{}, runFlags{}, fmt.Errorf("parse %s: %w", arg, err)
		}
	}

	return cfg, flags, nil
}

// runPlot handles the `croft plot` subcommand
func runPlot(args []string) error {
	cfg, flags, err := parsePlotFlags(args)
	if err != nil {
		return err
	}

	// Plotting runs for hours; only an interrupt cuts it short.
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

	fmt.Println("Creating plot...")
	err = sup.CreatePlot(ctx, cfg)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Interrupt received, stopping plotter...")
		return sup.Kill(context.Background())
	}
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	fmt.Println("✓ Plot complete")
	return nil
}
