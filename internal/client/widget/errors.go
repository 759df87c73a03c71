package widget

import "errors"

var (
	ErrSelectionRejected = errors.New("selection rejected")
	ErrTooLarge          = errors.New("file too large")
	ErrTypeNotAccepted   = errors.New("file type not accepted")
	ErrCapacityExceeded  = errors.New("too many files")

	ErrDownloadFailed = errors.New("download failed")
	ErrNotPersisted   = errors.New("attachment is not uploaded yet")
)
