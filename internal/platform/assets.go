package platform

import (
	"fmt"
	"regexp"
	"strings"
)

// Release archives are published per platform as
// chia-<token>-<major.minor.patch>.zip, each containing the single node
// executable named by ExecutableName.
var assetTokens = map[string]string{
	OSWindows: "win32",
	OSDarwin:  "macos",
	OSLinux:   "linux",
}

var assetPatterns = map[string]*regexp.Regexp{
	OSWindows: regexp.MustCompile(`^chia-win32-(\d+\.\d+\.\d+)\.zip$`),
	OSDarwin:  regexp.MustCompile(`^chia-macos-(\d+\.\d+\.\d+)\.zip$`),
	OSLinux:   regexp.MustCompile(`^chia-linux-(\d+\.\d+\.\d+)\.zip$`),
}

// AssetPattern returns the release asset name pattern for goos. The
// pattern's single capture group holds the semantic version embedded in
// the asset name.
func AssetPattern(goos string) (*regexp.Regexp, error) {
	re, ok := assetPatterns[goos]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
	return re, nil
}

// AssetName returns the release archive name for version on goos.
func AssetName(goos, version string) (string, error) {
	token, ok := assetTokens[goos]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
	return fmt.Sprintf("chia-%s-%s.zip", token, version), nil
}

// DownloadURL constructs the archive URL for version on goos beneath
// base. Archives live in a per-version directory under the base, the
// layout release hosts use for tagged downloads.
func DownloadURL(base, goos, version string) (string, error) {
	name, err := AssetName(goos, version)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(base, "/") + "/" + version + "/" + name, nil
}
