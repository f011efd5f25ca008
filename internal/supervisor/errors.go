package supervisor

import (
	"errors"
	"fmt"
)

// ErrNotSpawned is returned by Wait when no process has ever been
// spawned on this supervisor.
var ErrNotSpawned = errors.New("no process has been spawned")

// SpawnError reports that the executable could not be started at all:
// missing binary, permission denied, or the OS refusing the exec.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports a child process that started but exited with a
// non-zero code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with code %d", e.Code)
}
