package service

import (
	"context"
	"errors"
	"io"
)

// ErrForeignObject is returned by Delete for URLs the uploader did not issue.
var ErrForeignObject = errors.New("object does not belong to this storage")

// Object describes one upload. Path is "<folder>/<name>.<ext>".
type Object struct {
	Path        string
	ContentType string
	Size        int64
}

type Uploader interface {
	// Upload stores the file and returns its public URL.
	Upload(ctx context.Context, file io.Reader, obj Object) (string, error)
	// Delete removes the object behind a public URL returned by Upload.
	Delete(ctx context.Context, publicURL string) error
}
