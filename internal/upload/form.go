package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insightdelivered/expense-insight/internal/models"
)

// ErrBusy is returned by Submit while a request is already in flight.
var ErrBusy = errors.New("analysis already in progress")

// Analyzer sends a file to the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, file models.UploadedFile) models.Outcome
}

// Form holds at most one selected file and the state around submitting it.
//
// States: empty -> file selected -> submitting -> empty (success, after the
// completion callback) or file selected with an error (failure).
type Form struct {
	mu         sync.Mutex
	previews   PreviewStore
	file       *models.UploadedFile
	previewID  string
	busy       bool
	errMsg     string
	generation int
}

// NewForm returns an empty form that creates previews in store.
func NewForm(store PreviewStore) *Form {
	return &Form{previews: store}
}

// Snapshot is a read-only copy of the form for rendering.
type Snapshot struct {
	File       *models.UploadedFile
	PreviewID  string
	Busy       bool
	BusyLabel  string
	Error      string
	Generation int // bumped when the input control is reset
}

// HasFile reports whether a file is held.
func (s Snapshot) HasFile() bool { return s.File != nil }

// IsImage reports whether the held file is an image.
func (s Snapshot) IsImage() bool { return s.File != nil && IsImage(s.File.Name) }

// SelectFile validates name and, when accepted, replaces the held file.
// Image files get a preview handle; the previous handle is released first.
// A rejected file leaves the current selection untouched and sets the error.
func (f *Form) SelectFile(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errMsg = ""
	kind := KindOf(name)
	if kind == KindUnsupported {
		f.errMsg = UnsupportedTypeMessage
		return fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}

	f.releasePreviewLocked()

	file := models.UploadedFile{
		Name:        name,
		ContentType: ContentType(name),
		Size:        int64(len(data)),
		Data:        data,
	}

	switch kind {
	case KindImage:
		id, err := f.previews.Create(data, file.ContentType)
		if err != nil {
			f.file = nil
			return fmt.Errorf("create preview: %w", err)
		}
		f.previewID = id
	case KindPDF:
		pages, err := CountPages(data)
		if err != nil {
			log.Debugf("page count for %s: %v", name, err)
		}
		file.Pages = pages
	}

	f.file = &file
	return nil
}

// RemoveFile clears the file, preview and error and resets the input control.
// Calling it on an empty form is harmless.
func (f *Form) RemoveFile() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearLocked()
}

// Close releases the preview. The form is empty afterwards.
func (f *Form) Close() {
	f.RemoveFile()
}

// Submit sends the held file. Without a file it returns an OutcomeNoop and
// issues no request. On success onComplete receives the result and the form
// is emptied; on failure the file is kept and the message becomes the error.
// A file selected or removed while the request was in flight is left alone.
func (f *Form) Submit(ctx context.Context, a Analyzer, onComplete func(models.AnalysisResult)) (models.Outcome, error) {
	f.mu.Lock()
	if f.file == nil {
		f.mu.Unlock()
		return models.Outcome{Kind: models.OutcomeNoop}, nil
	}
	if f.busy {
		f.mu.Unlock()
		return models.Outcome{}, ErrBusy
	}
	f.busy = true
	f.errMsg = ""
	held := f.file
	file := *held
	f.mu.Unlock()

	out := a.Analyze(ctx, file)

	if out.Kind == models.OutcomeSuccess && onComplete != nil {
		onComplete(out.Result)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.file != held {
		return out, nil
	}
	switch out.Kind {
	case models.OutcomeSuccess:
		f.clearLocked()
	case models.OutcomeFailure:
		f.errMsg = out.Message
	}
	return out, nil
}

// Snapshot copies the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		PreviewID:  f.previewID,
		Busy:       f.busy,
		Error:      f.errMsg,
		Generation: f.generation,
	}
	if f.file != nil {
		file := *f.file
		s.File = &file
		s.BusyLabel = BusyLabel(file.Name)
	}
	return s
}

// BusyLabel is the submit button text while a file is being analyzed.
func BusyLabel(name string) string {
	switch KindOf(name) {
	case KindPDF:
		return "Processing PDF..."
	case KindImage:
		return "Extracting & Analyzing..."
	default:
		return "Analyzing..."
	}
}

func (f *Form) clearLocked() {
	f.releasePreviewLocked()
	f.file = nil
	f.errMsg = ""
	f.generation++
}

func (f *Form) releasePreviewLocked() {
	if f.previewID != "" {
		f.previews.Revoke(f.previewID)
		f.previewID = ""
	}
}
