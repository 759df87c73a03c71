// Package staging holds the local session of files a user has picked but not
// yet submitted.
//
// # Overview
//
// Store is the single owner of the session. It assigns every entry a fresh
// identifier, classifies it, enforces the per-session count limit by
// order-preserving truncation and creates a local preview handle for kinds
// that can be previewed (images, by default). Every mutation completes
// before the host is notified through the OnChange callback, so observers
// always see a consistent session.
//
// # Preview lifecycle
//
// Preview handles come from a PreviewProvider. The store releases each one
// exactly once: when its entry is removed or when the session is closed.
// DirPreviews, the default provider, writes image payloads into a directory
// and deletes them on release.
//
// # Upload status
//
// The store is also the status sink used by the upload orchestrator:
// MarkUploading, MarkCompleted and MarkFailed each apply one logical step and
// notify once. Only pending entries start uploading, and only uploading
// entries are completed or failed. Removal is refused while any entry is
// uploading.
package staging
