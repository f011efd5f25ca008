// Package supervisor runs the farming node executable and tracks the
// lifecycle of one child process at a time.
//
// A Supervisor binds an executable path to a node root directory. High
// level operations (Init, StartDaemon, StartHarvester, CreatePlot) each
// build a fixed argument list and delegate to Spawn followed by Wait.
// Every invocation is prefixed with --root-path so the child operates on
// the supervisor's root directory, and the child runs from the
// executable's own directory with a relative executable reference.
//
// # Output
//
// Child stdout and stderr are piped and published line by line, trimmed
// of surrounding whitespace, to callbacks registered with OnStdout and
// OnStderr. Internal failures surface through OnError; when no error
// callback is registered the event is logged and dropped, never fatal.
//
// # Concurrency
//
// Operations on a single Supervisor are not serialized. Spawning while a
// previous child is still tracked replaces the tracked handle and leaves
// the old OS process running unsupervised. Callers either serialize
// operations per instance or use Clone to obtain independent instances
// that share the same executable and root.
package supervisor
