package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineConfirmer(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		c := newLineConfirmer(strings.NewReader(tc.input), &out, false)
		ok, err := c.Confirm(context.Background(), "Delete project 3?")
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "input %q", tc.input)
		assert.Equal(t, "Delete project 3? [y/N]: ", out.String())
	}
}

func TestLineConfirmer_AssumeYes(t *testing.T) {
	var out bytes.Buffer
	c := newLineConfirmer(strings.NewReader(""), &out, true)
	ok, err := c.Confirm(context.Background(), "Delete?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}

func TestLineConfirmer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newLineConfirmer(strings.NewReader("y\n"), &bytes.Buffer{}, false)
	ok, err := c.Confirm(ctx, "Delete?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestWriterNotifier(t *testing.T) {
	var out, errOut bytes.Buffer
	n := writerNotifier{out: &out, errOut: &errOut}
	n.Success("Project saved")
	n.Failure("Title is required")
	assert.Equal(t, "ok: Project saved\n", out.String())
	assert.Equal(t, "error: Title is required\n", errOut.String())
}

func TestTokenStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("FOLIO_TOKEN", "")

	assert.Empty(t, loadToken())
	require.NoError(t, saveToken("tok-1"))
	assert.Equal(t, "tok-1", loadToken())

	p, err := tokenPath()
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, strings.HasPrefix(p, filepath.Clean(dir)))

	t.Setenv("FOLIO_TOKEN", "from-env")
	assert.Equal(t, "from-env", loadToken())

	require.NoError(t, clearToken())
	require.NoError(t, clearToken())
	t.Setenv("FOLIO_TOKEN", "")
	assert.Empty(t, loadToken())
}

func TestReadDraft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"Demo","year":"2024"}`), 0o600))

	type row struct {
		Title string `json:"title"`
		Year  string `json:"year"`
	}
	got, err := readDraft[row](path)
	require.NoError(t, err)
	assert.Equal(t, row{Title: "Demo", Year: "2024"}, got)

	require.NoError(t, os.WriteFile(path, []byte(`{"titel":"typo"}`), 0o600))
	_, err = readDraft[row](path)
	assert.Error(t, err)
}
