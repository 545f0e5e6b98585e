package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	at := time.UnixMilli(1712345678901)
	assert.Equal(t, "projects/project-1712345678901.png", ObjectPath(FolderProjects, at, "Shot.PNG", "image/png"))
	assert.Equal(t, "avatars/avatar-1712345678901.webp", ObjectPath(FolderAvatars, at, "", "image/webp"))
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("image/jpeg", MaxImageSize))
	assert.ErrorIs(t, ValidateImage("image/jpeg", MaxImageSize+1), ErrImageTooBig)
	assert.ErrorIs(t, ValidateImage("text/plain", 10), ErrNotImage)
}

func TestParseFolder(t *testing.T) {
	f, err := ParseFolder("certifications")
	assert.NoError(t, err)
	assert.Equal(t, FolderCertifications, f)

	_, err = ParseFolder("../etc")
	assert.ErrorIs(t, err, ErrUnknownFolder)
}
