// Package binary acquires farming-node executables: given a version it
// guarantees a runnable binary exists at a deterministic local path,
// downloading and unpacking the release archive on demand.
//
// # Layout
//
// Executables are installed per version:
//
//	<binDir>/<version>/<executable>
//
// Archives pass through a scratch directory while downloading and are
// deleted after successful extraction. A file that is already present is
// trusted as-is; no checksums or signatures are consulted at any stage.
//
// # Concurrency
//
// Ensure is not safe for concurrent calls with the same version: both
// callers can observe the binary as absent and race on directory creation
// and file writes. Callers serialize acquisition per version.
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    BinDir:     "/home/user/.croft/versions",
//	    ScratchDir: "/home/user/.croft/cache/downloads",
//	})
//	if err != nil {
//	    return err
//	}
//	loc, err := mgr.Ensure(ctx, binary.Request{Version: "1.2.11"})
package binary
