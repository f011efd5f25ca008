// Package platform answers the platform-dependent questions the rest of
// croft asks: which operating systems the farming node is distributed for,
// what the node executable is called on each, and how its release archives
// are named. Host details beyond GOOS/GOARCH come from gopsutil and are
// used only for diagnostics.
package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// ErrUnsupported is returned for operating systems the farming node is not
// distributed for. Callers fail with it before any network activity.
var ErrUnsupported = errors.New("unsupported platform")

// Supported operating systems (runtime.GOOS values).
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"
)

// Host returns the GOOS value of the running process.
func Host() string {
	return runtime.GOOS
}

// Supported reports whether release archives are published for goos.
func Supported(goos string) bool {
	switch goos {
	case OSWindows, OSDarwin, OSLinux:
		return true
	}
	return false
}

// ExecutableName returns the farming-node executable name for goos.
func ExecutableName(goos string) (string, error) {
	switch goos {
	case OSWindows:
		return "chia.exe", nil
	case OSDarwin, OSLinux:
		return "chia", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, goos)
}

// Describe returns a short host description for logging and User-Agent
// strings, e.g. "linux/amd64 (ubuntu 22.04)". Distribution details are
// detected with gopsutil on Linux and skipped when detection fails.
func Describe(ctx context.Context) string {
	desc := runtime.GOOS + "/" + runtime.GOARCH
	if runtime.GOOS != OSLinux {
		return desc
	}
	name, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil || name == "" {
		return desc
	}
	if version == "" {
		return fmt.Sprintf("%s (%s)", desc, name)
	}
	return fmt.Sprintf("%s (%s %s)", desc, name, version)
}
