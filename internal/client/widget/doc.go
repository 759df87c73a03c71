// Package widget composes the attachment pipeline into the two surfaces a
// host form embeds.
//
// AttachmentWidget accepts file selections, filters them against its Config,
// stages them, renders the session and, when the host submits, hands the
// pending entries to the upload orchestrator. The host is told about every
// change of the session through HostForm.OnFilesChange. Nothing is sent to
// the server before Submit.
//
// PreviewPanel presents one attachment, staged or persisted. Downloads go
// through the file-serving collaborator by persisted id; deletion is only
// reported to the host.
package widget
