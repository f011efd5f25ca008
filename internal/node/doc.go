// Package node ties the release feed, binary acquisition, and process
// supervision together behind one facade.
//
// A Manager owns the croft directory (acquired executables and download
// scratch space) and the node root directory (the wrapped executable's
// own state and configuration). It hands out supervisors bound to a
// specific acquired version and runs the background release watcher.
//
// Acquisition of a given version is serialized through the manager
// regardless of how many callers ask for it concurrently; distinct
// versions acquire independently.
package node
