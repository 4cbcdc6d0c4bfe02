// Package cli provides the interactive routine shell.
//
// It wires configuration, the local SQLite snapshot store, the remote data
// source (gRPC or S3) and the caching services, then runs a REPL that keeps
// working offline. Typical flow: load the profile from config, warm the
// routine, start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - today / day / week / days / slots views filtered for the profile
//   - sync and refresh against the remote source
//   - status, maintenance notice, logout
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
