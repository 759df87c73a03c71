package upload

import (
	"errors"
	"fmt"
)

var (
	ErrTransferFailed = errors.New("transfer failed")
	ErrBatchInFlight  = errors.New("another batch is in flight")

	// ErrResponseMismatch is returned when the server answers with a
	// different number of references than files sent. It matches
	// ErrTransferFailed with errors.Is.
	ErrResponseMismatch = fmt.Errorf("%w: response does not match request", ErrTransferFailed)
)
