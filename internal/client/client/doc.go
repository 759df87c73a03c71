// Package client contains the file-serving collaborators of the attachment
// pipeline and the local database bootstrap.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): batch
//     upload, deterministic serve and thumbnail URLs, download, delete and
//     a health probe.
//  2. A REST implementation (see HTTPClient) that streams a multipart body
//     while reporting byte progress, injects a bearer token through a round
//     tripper, refreshes it once on 401 and maps HTTP status codes to
//     sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Wire format
//
//	POST   {base}/files/upload                     multipart, one "files" part per file
//	       -> {"files":[{"id","url","originalName","size","mimeType"}]}
//	GET    {base}/files/{id}
//	GET    {base}/files/{id}/thumbnail?width=W&height=H
//	GET    {base}/files/{id}/download
//	DELETE {base}/files/{id}
//	GET    {base}/health
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Other
// non-success statuses are wrapped as "http error".
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All network operations accept a
// context.Context and honor cancellation.
package client
