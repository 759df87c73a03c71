// Package cli provides the interactive clubattach terminal client.
//
// The REPL plays the host form of the attachment pipeline: it owns one
// record draft at a time, stages local files into the attachment widget,
// submits them as a single batch and keeps the returned references in the
// local SQLite cache under the current record.
//
// Commands:
//   - record <name>           switch the record draft
//   - stage <path>...         stage local files
//   - unstage <id>            drop a staged file
//   - staged                  render the widget
//   - submit | retry          upload pending (or failed) files
//   - attachments [record|all] list cached references
//   - show <id>               preview panel for a staged or saved file
//   - download <id> [dir]     save a persisted file locally
//   - delete <id>             delete a saved file or unstage a local one
//   - login                   set the portal access token
//   - stats                   upload metrics
//
// The REPL is started via App.Run, which blocks until the user exits. A
// background watcher pings the collaborator and flips the online mode.
package cli
