// Package cli provides the interactive ProLens command-line client.
//
// It wires configuration, the local store, the optional cloud mirror, the AI
// gateway and an interactive REPL. Typical flow: open the local database,
// pick the materials backend once, subscribe the material cache to it and
// execute user commands until exit.
//
// Key features:
//   - Student and admin roles (admin behind a local password)
//   - Learning materials: upload, list, delete, tutor chat, critique, quiz
//   - Presentations and registrations management
//   - Export / import of sync and backup bundles
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
