// Package manager is the admin-side controller shared by every content
// type: list, draft, save, delete and image association over one table.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/pkg/apperror"
)

var (
	ErrNoDraft      = errors.New("no draft open")
	ErrNotConfirmed = errors.New("delete not confirmed")
)

type Schema[T content.Record[T]] struct {
	Table string
	// Label names one row in notifications, e.g. "Project".
	Label string
	Order []content.Order
	// Singleton tables are saved with Upsert under the row's fixed key.
	Singleton bool
	// Template builds the empty draft given the current list.
	Template func(rows []T) T
	// ImageFolder is the storage folder for the row's image, empty if the
	// row has none.
	ImageFolder media.Folder
}

type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ImageUploader interface {
	UploadImage(ctx context.Context, folder media.Folder, file File) (string, error)
}

type Manager[T content.Record[T]] struct {
	table    content.Table[T]
	schema   Schema[T]
	confirm  Confirmer
	notify   Notifier
	uploader ImageUploader

	mu    sync.Mutex
	rows  []T
	draft *T
}

func New[T content.Record[T]](table content.Table[T], schema Schema[T], confirm Confirmer, notify Notifier, uploader ImageUploader) *Manager[T] {
	return &Manager[T]{
		table:    table,
		schema:   schema,
		confirm:  confirm,
		notify:   notify,
		uploader: uploader,
	}
}

// Rows returns a copy of the local list.
func (m *Manager[T]) Rows() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.rows))
	copy(out, m.rows)
	return out
}

// List replaces the local list with the table's rows. On error the
// previous list is kept.
func (m *Manager[T]) List(ctx context.Context) ([]T, error) {
	rows, err := m.table.Select(ctx, content.Query{Order: m.schema.Order})
	if err != nil {
		m.notify.Failure(fmt.Sprintf("Failed to load %s: %s", m.schema.Table, apperror.MessageOf(err)))
		return m.Rows(), err
	}

	m.mu.Lock()
	m.rows = rows
	m.mu.Unlock()
	return m.Rows(), nil
}

func (m *Manager[T]) BeginCreate() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.schema.Template(m.rows)
	m.draft = &d
	return d
}

// BeginEdit opens a draft copied from the listed row with the given id.
func (m *Manager[T]) BeginEdit(id int64) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Key() == id {
			d := r
			m.draft = &d
			return d, nil
		}
	}
	var zero T
	return zero, apperror.NewNotFound(m.schema.Label, strconv.FormatInt(id, 10))
}

func (m *Manager[T]) Draft() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		var zero T
		return zero, false
	}
	return *m.draft, true
}

// SetDraft replaces the open draft, or opens one.
func (m *Manager[T]) SetDraft(d T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = &d
}

func (m *Manager[T]) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = nil
}

// Save validates the draft and writes it: Update when it has a key, Insert
// otherwise (Upsert for singletons). Nothing is sent if validation fails.
// On failure the draft stays open.
func (m *Manager[T]) Save(ctx context.Context) (T, error) {
	var zero T
	draft, ok := m.Draft()
	if !ok {
		return zero, ErrNoDraft
	}

	if err := draft.Validate(); err != nil {
		m.notify.Failure(err.Error())
		return zero, apperror.NewValidation(err.Error())
	}

	var saved T
	var err error
	switch {
	case m.schema.Singleton:
		saved, err = m.table.Upsert(ctx, draft)
	case draft.Key() != 0:
		saved, err = m.table.Update(ctx, draft.Key(), draft)
	default:
		saved, err = m.table.Insert(ctx, draft)
	}
	if err != nil {
		m.notify.Failure(apperror.MessageOf(err))
		return zero, err
	}

	m.mu.Lock()
	m.merge(saved)
	m.draft = nil
	m.mu.Unlock()

	m.notify.Success(m.schema.Label + " saved")
	return saved, nil
}

func (m *Manager[T]) merge(row T) {
	for i, r := range m.rows {
		if r.Key() == row.Key() {
			m.rows[i] = row
			return
		}
	}
	m.rows = append(m.rows, row)
}

// Delete removes the row after explicit confirmation. Nothing is sent
// without it.
func (m *Manager[T]) Delete(ctx context.Context, id int64) error {
	ok, err := m.confirm.Confirm(ctx, fmt.Sprintf("Delete %s %d?", strings.ToLower(m.schema.Label), id))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmed
	}

	if err := m.table.Delete(ctx, id); err != nil {
		m.notify.Failure(apperror.MessageOf(err))
		return err
	}

	m.mu.Lock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.Key() != id {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	m.mu.Unlock()

	m.notify.Success(m.schema.Label + " deleted")
	return nil
}

// AttachImage uploads file and stores the public URL on the open draft. On
// failure the draft keeps whatever image it had and nothing is retried.
func (m *Manager[T]) AttachImage(ctx context.Context, file File) (string, error) {
	if m.schema.ImageFolder == "" || m.uploader == nil {
		return "", fmt.Errorf("%s has no image field", m.schema.Table)
	}
	if _, ok := m.Draft(); !ok {
		return "", ErrNoDraft
	}

	fail := func(err error) (string, error) {
		m.notify.Failure("Image upload failed: " + apperror.MessageOf(err))
		return "", err
	}

	if err := media.ValidateImage(file.ContentType, file.Size); err != nil {
		return fail(err)
	}
	url, err := m.uploader.UploadImage(ctx, m.schema.ImageFolder, file)
	if err != nil {
		return fail(err)
	}

	m.mu.Lock()
	if m.draft != nil {
		d := (*m.draft).WithImage(url)
		m.draft = &d
	}
	m.mu.Unlock()
	m.notify.Success("Image uploaded")
	return url, nil
}
