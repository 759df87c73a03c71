package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/widget"
	"github.com/dmitrijs2005/clubattach/internal/common"
)

// Record switches the host form to another record draft. Files staged for
// the previous record are discarded after confirmation.
func (a *App) Record(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "current record: %s\n", a.currentRecord())
		return nil
	}
	name := args[0]

	old := a.session()
	if old.Uploading() {
		return fmt.Errorf("cannot switch record while uploading")
	}

	unsaved, err := a.unsaved(ctx, old)
	if err != nil {
		return err
	}
	if n := len(pendingOrFailed(old.Files())) + len(unsaved); n > 0 {
		answer, err := GetSimpleText(a.reader, fmt.Sprintf("Discard %d unsaved file(s)? [y/N]", n), a.out)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") {
			return nil
		}
	}

	a.mu.Lock()
	a.record = name
	a.staged = 0
	a.mu.Unlock()

	w, err := a.newWidget()
	if err != nil {
		return err
	}
	old.Close()

	a.mu.Lock()
	a.widget = w
	a.mu.Unlock()

	a.log.Info(ctx, "record selected", "record", name)
	fmt.Fprintf(a.out, "record: %s\n", name)
	return nil
}

// Stage reads the files at args and hands them to the widget.
func (a *App) Stage(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usage("stage <path>...")
	}

	raws := make([]models.RawFile, 0, len(args))
	for _, p := range args {
		f, err := models.NewRawFileFromPath(p)
		if err != nil {
			fmt.Fprintf(a.out, "skipped %s: %v\n", p, err)
			continue
		}
		raws = append(raws, f)
	}

	sel := a.session().Select(raws)
	for _, f := range sel.Staged {
		fmt.Fprintf(a.out, "staged %s (%s)\n", f.Raw.Name, f.ID)
	}
	for _, r := range sel.Rejected {
		fmt.Fprintf(a.out, "rejected %s: %v\n", r.Name, r.Err)
	}
	return nil
}

func (a *App) Unstage(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("unstage <id>")
	}
	_, err := a.session().Remove(args[0])
	return err
}

// Staged renders the widget for the current record.
func (a *App) Staged(_ context.Context, _ []string) error {
	return a.session().Render(a.out)
}

func (a *App) Submit(ctx context.Context, _ []string) error {
	w := a.session()
	refs, err := w.Submit(ctx)
	return a.saveUploaded(ctx, w, refs, err)
}

func (a *App) Retry(ctx context.Context, _ []string) error {
	w := a.session()
	refs, err := w.Retry(ctx)
	return a.saveUploaded(ctx, w, refs, err)
}

// saveUploaded caches every uploaded file of the session that is not in the
// cache yet, including files from an earlier submit whose caching failed.
func (a *App) saveUploaded(ctx context.Context, w *widget.AttachmentWidget, refs []models.AttachmentReference, err error) error {
	if err != nil {
		fmt.Fprintln(a.out, "upload failed, type 'retry' to try again")
		return err
	}
	for _, r := range refs {
		fmt.Fprintf(a.out, "uploaded %s -> %s\n", r.OriginalName, r.ID)
	}

	unsaved, err := a.unsaved(ctx, w)
	if err != nil {
		return err
	}
	if len(unsaved) == 0 {
		if len(refs) == 0 {
			fmt.Fprintln(a.out, "nothing to upload")
		}
		return nil
	}

	record := a.currentRecord()
	if err := a.attachments.Attach(ctx, record, unsaved); err != nil {
		fmt.Fprintf(a.out, "%d uploaded file(s) not saved to %s, type 'submit' to save them\n", len(unsaved), record)
		return err
	}
	if earlier := len(unsaved) - len(refs); earlier > 0 {
		fmt.Fprintf(a.out, "saved %d earlier upload(s) to %s\n", earlier, record)
	}
	return nil
}

// unsaved returns the uploaded files of w that are missing from the cache.
func (a *App) unsaved(ctx context.Context, w *widget.AttachmentWidget) ([]models.AttachmentReference, error) {
	var out []models.AttachmentReference
	for _, ref := range w.Attachments() {
		_, err := a.attachments.Get(ctx, ref.ID)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrNotFound):
			out = append(out, ref)
		default:
			return nil, err
		}
	}
	return out, nil
}

func pendingOrFailed(files []models.StagedFile) []models.StagedFile {
	return lo.Filter(files, func(f models.StagedFile, _ int) bool {
		return f.Status == models.StatusPending || f.Status == models.StatusError
	})
}
