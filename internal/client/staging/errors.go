package staging

import "errors"

var (
	ErrUploadInFlight  = errors.New("upload in progress")
	ErrPreviewReleased = errors.New("preview already released")
)
