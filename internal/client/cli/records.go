package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/widget"
)

// Attachments lists the cached references of a record. "all" lists every
// record.
func (a *App) Attachments(ctx context.Context, args []string) error {
	record := a.currentRecord()
	if len(args) > 0 {
		record = args[0]
	}
	if record == "all" {
		record = ""
	}

	refs, err := a.attachments.List(ctx, record)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Fprintln(a.out, "no attachments")
		return nil
	}

	for _, r := range refs {
		kind := filekind.Resolve(r.OriginalName, r.MimeType)
		fmt.Fprintf(a.out, "%-36s %s %-30s %10s  %-10s %s\n",
			r.ID, filekind.Icon(kind), r.OriginalName, filekind.FormatSize(r.Size),
			r.RecordID, humanize.Time(r.CreatedAt))
	}
	return nil
}

// Show renders the preview panel of a staged or saved attachment.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	p, err := a.panel(ctx, args[0], nil)
	if err != nil {
		return err
	}
	return p.Render(a.out)
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("download <id> [dir]")
	}
	dir := a.config.DownloadDir
	if len(args) == 2 {
		dir = args[1]
	}

	p, err := a.panel(ctx, args[0], nil)
	if err != nil {
		return err
	}
	path, err := p.Download(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved to %s\n", path)
	return nil
}

// Delete asks the panel for a delete intent and carries it out: persisted
// files are removed from the server and the cache, local ones are unstaged.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}

	var derr error
	p, err := a.panel(ctx, args[0], func(in widget.DeleteIntent) {
		derr = a.handleDelete(ctx, in)
	})
	if err != nil {
		return err
	}
	p.Delete()
	return derr
}

func (a *App) handleDelete(ctx context.Context, in widget.DeleteIntent) error {
	w := a.session()
	if !in.Persisted {
		if _, err := w.Remove(in.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "unstaged %s\n", in.Name)
		return nil
	}

	if err := a.attachments.Delete(ctx, in.ID); err != nil {
		return err
	}
	if f, ok := lo.Find(w.Files(), func(f models.StagedFile) bool { return f.RemoteID == in.ID }); ok {
		if _, err := w.Remove(f.ID); err != nil {
			a.log.Warn(ctx, "error unstaging deleted file", "id", f.ID, "error", err)
		}
	}
	fmt.Fprintf(a.out, "deleted %s\n", in.Name)
	return nil
}

// panel finds id among the staged files first (by local or remote id) and
// then in the cache.
func (a *App) panel(ctx context.Context, id string, onDelete func(widget.DeleteIntent)) (*widget.PreviewPanel, error) {
	if f, ok := lo.Find(a.session().Files(), func(f models.StagedFile) bool {
		return f.ID == id || (f.RemoteID != "" && f.RemoteID == id)
	}); ok {
		return widget.NewStagedPanel(f, a.resolver, a.remote, onDelete), nil
	}

	ref, err := a.attachments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: %w", id, err)
	}
	return widget.NewReferencePanel(*ref, a.resolver, a.remote, onDelete), nil
}
