package main

import (
	"fmt"
)

// runConfigPath handles the `croft config path` subcommand
func runConfigPath(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown argument: %s", args[0])
	}

	m, err := newManager(false)
	if err != nil {
		return err
	}
	fmt.Println(m.ConfigPath())
	return nil
}
