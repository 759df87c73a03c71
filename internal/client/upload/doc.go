// Package upload sends a batch of staged files to the file-serving backend
// in a single request and reconciles the outcome onto the staging session.
//
// An Orchestrator owns one progress-observer slot. Registering a new
// observer silently replaces the previous one, so only the most recently
// registered caller (normally the active widget) hears progress. The
// unregister function returned by SetProgressObserver only clears the slot
// while it still holds that same registration.
//
// Outcomes are all-or-nothing: either every entry of the batch is completed
// with the reference at the same position in the server response, or every
// entry is moved to error. There is no automatic retry.
package upload
