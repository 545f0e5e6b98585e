package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

func TestFormRelay_PostsFormEncodedFields(t *testing.T) {
	var got http.Header
	var fields map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		require.NoError(t, r.ParseForm())
		fields = map[string]string{
			"name":    r.PostForm.Get("name"),
			"email":   r.PostForm.Get("email"),
			"subject": r.PostForm.Get("subject"),
			"message": r.PostForm.Get("message"),
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	r, err := NewFormRelay(srv.URL, srv.Client(), logger.NewNop())
	require.NoError(t, err)

	err = r.Relay(context.Background(), service.ContactMessage{
		Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Let's build",
	})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Let's build",
	}, fields)
}

func TestFormRelay_NonOKIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	r, err := NewFormRelay(srv.URL, srv.Client(), logger.NewNop())
	require.NoError(t, err)

	err = r.Relay(context.Background(), service.ContactMessage{Name: "Ada"})
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestNewFormRelay_RejectsBadURL(t *testing.T) {
	_, err := NewFormRelay("not a url", nil, logger.NewNop())
	assert.Error(t, err)
}
