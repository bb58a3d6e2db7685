// Package cli provides the interactive wellkeeper command-line client.
//
// It wires configuration, the gRPC store client, the caching data-access
// facade and an interactive REPL. A background watcher pings the server and
// flips the prompt between online and offline; the watch command keeps the
// displayed list in step with changes made elsewhere.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
