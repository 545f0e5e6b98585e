// Package media holds the rules for images attached to content rows.
package media

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

// MaxImageSize is the largest image accepted for upload.
const MaxImageSize = 5 << 20

var (
	ErrNotImage      = errors.New("file must be an image")
	ErrImageTooBig   = errors.New("image must be 5MB or smaller")
	ErrUnknownFolder = errors.New("unknown media folder")
)

type Folder string

const (
	FolderProjects       Folder = "projects"
	FolderCertifications Folder = "certifications"
	FolderAvatars        Folder = "avatars"
	FolderSkills         Folder = "skills"
)

var prefixes = map[Folder]string{
	FolderProjects:       "project",
	FolderCertifications: "cert",
	FolderAvatars:        "avatar",
	FolderSkills:         "skill",
}

func ParseFolder(s string) (Folder, error) {
	f := Folder(s)
	if _, ok := prefixes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFolder, s)
	}
	return f, nil
}

func ValidateImage(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	if size > MaxImageSize {
		return ErrImageTooBig
	}
	return nil
}

// ObjectPath names an upload by folder and time:
// "<folder>/<prefix>-<unix millis>.<ext>".
func ObjectPath(folder Folder, at time.Time, fileName, contentType string) string {
	return fmt.Sprintf("%s/%s-%d.%s", folder, prefixes[folder], at.UnixMilli(), extension(fileName, contentType))
}

func extension(fileName, contentType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), "."); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	if sub, ok := strings.CutPrefix(contentType, "image/"); ok && sub != "" {
		return sub
	}
	return "bin"
}
