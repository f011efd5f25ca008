package supervisor

// State describes the tracked child process.
type State int

const (
	// StateIdle means nothing has been spawned yet.
	StateIdle State = iota
	// StateRunning means the tracked child has started and not yet exited.
	StateRunning
	// StateExitedOk means the tracked child exited with code 0.
	StateExitedOk
	// StateExitedWithError means the tracked child exited with a non-zero code.
	StateExitedWithError
	// StateSpawnFailed means the last spawn attempt never started a process.
	StateSpawnFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExitedOk:
		return "exited ok"
	case StateExitedWithError:
		return "exited with error"
	case StateSpawnFailed:
		return "spawn failed"
	default:
		return "unknown"
	}
}
