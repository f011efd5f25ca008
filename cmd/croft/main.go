package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0-dev"

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("croft %s\n", Version)
			fmt.Println("Farming node lifecycle manager")
			return
		case "init":
			if err := runInit(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "fetch":
			if err := runFetch(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "daemon":
			if err := runDaemon(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "harvester":
			if err := runHarvester(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "plot":
			if err := runPlot(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "watch":
			if err := runWatch(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "config":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "Error: config subcommand requires an action")
				fmt.Fprintln(os.Stderr, "Usage: croft config path")
				os.Exit(1)
			}
			switch os.Args[2] {
			case "path":
				if err := runConfigPath(os.Args[3:]); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
			default:
				fmt.Fprintf(os.Stderr, "Error: unknown config action: %s\n", os.Args[2])
				fmt.Fprintln(os.Stderr, "Usage: croft config path")
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║  croft - Farming Node Lifecycle Manager                  ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("croft acquires node executables from the release feed and")
	fmt.Println("supervises the processes they spawn.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  croft --version               Show version information")
	fmt.Println("  croft init [options]          Prepare directories and initialize the node")
	fmt.Println("  croft fetch [options]         Acquire a node executable")
	fmt.Println("  croft daemon [options]        Run the node daemon in the foreground")
	fmt.Println("  croft harvester [options]     Start the harvester service")
	fmt.Println("  croft plot [options]          Create a plot")
	fmt.Println("  croft watch [options]         Poll for new releases and acquire them")
	fmt.Println("  croft config path             Print the node config file location")
	fmt.Println()
	fmt.Println("Common options:")
	fmt.Println("  --version <x.y.z>             Pin a release instead of the latest")
	fmt.Println("  --verbose, -v                 Enable debug logging")
}
