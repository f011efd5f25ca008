package binary

import "errors"

// ErrMissingBinary is returned when an archive extracted cleanly but did
// not contain the expected node executable.
var ErrMissingBinary = errors.New("archive did not contain the node executable")

// Location points at an acquired executable on disk. Once a location's
// path exists it is treated as permanently valid.
type Location struct {
	Version string
	Path    string
}

// Request names one version to acquire. URL is where its archive lives;
// when empty, the manager constructs the URL from its configured download
// base.
type Request struct {
	Version string
	URL     string
}
