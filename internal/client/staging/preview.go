package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/filex"
)

// PreviewProvider creates and releases local preview handles.
//
// Create returns an empty ref when the kind has no local preview.
type PreviewProvider interface {
	Create(id string, f models.RawFile, kind filekind.Kind) (string, error)
	Release(ref string) error
}

// DirPreviews materializes image payloads as files under Dir. The returned
// ref is the absolute file path.
type DirPreviews struct {
	Dir string

	mu   sync.Mutex
	live map[string]struct{}
}

// NewDirPreviews creates dir when missing. An empty dir means "preview"
// under the working directory.
func NewDirPreviews(dir string) (*DirPreviews, error) {
	abs, err := filex.EnsureDir(dir, "preview")
	if err != nil {
		return nil, err
	}
	return &DirPreviews{Dir: abs, live: make(map[string]struct{})}, nil
}

func (p *DirPreviews) Create(id string, f models.RawFile, kind filekind.Kind) (string, error) {
	if kind != filekind.KindImage {
		return "", nil
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open payload: %w", err)
	}
	defer rc.Close()

	name := id + filepath.Ext(filex.SafeName(f.Name, ""))
	path, _, err := filex.WriteFile(p.Dir, name, rc)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.live[path] = struct{}{}
	p.mu.Unlock()

	return path, nil
}

func (p *DirPreviews) Release(ref string) error {
	p.mu.Lock()
	_, ok := p.live[ref]
	delete(p.live, ref)
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", ref, ErrPreviewReleased)
	}

	if err := os.Remove(ref); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}

// Live reports how many handles are currently held.
func (p *DirPreviews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

type noPreviews struct{}

func (noPreviews) Create(string, models.RawFile, filekind.Kind) (string, error) { return "", nil }
func (noPreviews) Release(string) error                                         { return nil }
