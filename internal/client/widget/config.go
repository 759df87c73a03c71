package widget

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/go-playground/validator/v10"
)

// Config is supplied by the host form.
type Config struct {
	MaxFiles     int   `validate:"gt=0"`
	MaxSizeBytes int64 `validate:"gt=0"`
	// AcceptedTypes holds MIME patterns ("image/*"), exact MIME types or
	// extensions (".pdf"). Empty accepts anything.
	AcceptedTypes []string `validate:"omitempty,dive,required"`
	Label         string
	Compact       bool
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid widget config: %w", err)
	}
	return nil
}

// Accepts reports whether f passes the AcceptedTypes filter.
func (c Config) Accepts(f models.RawFile) bool {
	if len(c.AcceptedTypes) == 0 {
		return true
	}

	mime, _, _ := strings.Cut(strings.ToLower(f.MimeType), ";")
	mime = strings.TrimSpace(mime)
	ext := strings.ToLower(filepath.Ext(f.Name))

	for _, p := range c.AcceptedTypes {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case strings.HasPrefix(p, "."):
			if ext == p {
				return true
			}
		case strings.HasSuffix(p, "/*"):
			if mime != "" && strings.HasPrefix(mime, strings.TrimSuffix(p, "*")) {
				return true
			}
		case p == "*" || p == "*/*":
			return true
		default:
			if mime == p {
				return true
			}
		}
	}
	return false
}
