// Package filekind classifies attachment files by name or MIME type and
// formats byte counts for display. Everything here is pure.
package filekind

import (
	"path/filepath"
	"strings"
)

// Kind is the semantic category of an attachment.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
)

var extensions = map[string]Kind{
	"jpg": KindImage, "jpeg": KindImage, "png": KindImage, "gif": KindImage,
	"bmp": KindImage, "webp": KindImage, "svg": KindImage, "heic": KindImage,

	"mp4": KindVideo, "webm": KindVideo, "mov": KindVideo, "avi": KindVideo,
	"mkv": KindVideo, "m4v": KindVideo,

	"pdf": KindDocument, "doc": KindDocument, "docx": KindDocument,
	"xls": KindDocument, "xlsx": KindDocument, "ppt": KindDocument,
	"pptx": KindDocument, "txt": KindDocument, "rtf": KindDocument,
	"odt": KindDocument, "ods": KindDocument, "odp": KindDocument,
	"csv": KindDocument, "md": KindDocument,
}

var documentMIMEs = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel":                                                  {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/rtf":                         {},
	"application/vnd.oasis.opendocument.text": {},
	"text/plain":                              {},
	"text/csv":                                {},
	"text/markdown":                           {},
}

// Classify maps a filename to its Kind by extension, ignoring case.
// A missing or unknown extension yields KindOther.
func Classify(filename string) Kind {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return KindOther
	}
	if k, ok := extensions[strings.ToLower(ext)]; ok {
		return k
	}
	return KindOther
}

// KindOfMIME maps a MIME type (parameters allowed) to a Kind.
func KindOfMIME(mime string) Kind {
	mime, _, _ = strings.Cut(strings.ToLower(strings.TrimSpace(mime)), ";")
	mime = strings.TrimSpace(mime)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	}
	if _, ok := documentMIMEs[mime]; ok {
		return KindDocument
	}
	return KindOther
}

// Resolve classifies by filename first and falls back to the MIME type when
// the name says nothing.
func Resolve(filename, mime string) Kind {
	if k := Classify(filename); k != KindOther {
		return k
	}
	return KindOfMIME(mime)
}

// Icon returns a short glyph for terminal listings.
func Icon(k Kind) string {
	switch k {
	case KindImage:
		return "[img]"
	case KindVideo:
		return "[vid]"
	case KindDocument:
		return "[doc]"
	default:
		return "[file]"
	}
}
