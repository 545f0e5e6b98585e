package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/folio/internal/application/manager"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/pkg/apperror"
)

const testToken = "tok-123"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
}

func TestClient_LoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/auth/login", r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, gin401())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": testToken,
			"session":      map[string]any{"email": in["email"], "expires_at": time.Now().Add(time.Hour)},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	_, err := c.Login(context.Background(), "owner@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", apperror.MessageOf(err))
	assert.Empty(t, c.Token())

	s, err := c.Login(context.Background(), "owner@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, testToken, c.Token())
	assert.Equal(t, "owner@example.com", s.Email)
	assert.Equal(t, testToken, s.Token)
}

func gin401() map[string]string {
	return map[string]string{"error": "unauthorized", "message": "Invalid email or password"}
}

func TestClient_GetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusOK, map[string]any{"session": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": map[string]any{"email": "owner@example.com"}})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	s, err := c.GetSession(context.Background(), testToken)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "owner@example.com", s.Email)

	s, err = c.GetSession(context.Background(), "stale")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestClient_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", &http.Client{Timeout: time.Second})
	_, err := c.GetSession(context.Background(), testToken)
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestTable_CRUD(t *testing.T) {
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/projects":
			lastQuery = r.URL.RawQuery
			writeJSON(w, http.StatusOK, []project.Project{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/admin/projects":
			var p project.Project
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = 3
			writeJSON(w, http.StatusCreated, p)
		case r.Method == http.MethodPut && r.URL.Path == "/api/admin/projects/3":
			var p project.Project
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			writeJSON(w, http.StatusOK, p)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/admin/projects/3":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/admin/projects/9":
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "Project not found"})
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	c.SetToken(testToken)
	table := NewTable[project.Project](c, content.TableProjects)
	ctx := context.Background()

	assert.Equal(t, "projects", table.Name())

	rows, err := table.Select(ctx, content.Query{Eq: map[string]any{"is_featured": true}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "is_featured=true", lastQuery)

	created, err := table.Upsert(ctx, project.Project{Title: "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	created.Title = "C2"
	updated, err := table.Upsert(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "C2", updated.Title)

	require.NoError(t, table.Delete(ctx, 3))

	_, err = table.Get(ctx, 9)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "Project not found", apperror.MessageOf(err))
}

func TestProfileTable(t *testing.T) {
	stored := profile.Profile{}
	exists := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/profile", r.URL.Path)
		if r.Method == http.MethodPut {
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			stored = profile.Profile{ID: profile.SingletonID, DisplayName: in["display_name"]}
			exists = true
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": stored, "exists": exists})
	}))
	defer srv.Close()

	table := NewProfileTable(New(srv.URL, nil))
	ctx := context.Background()

	rows, err := table.Select(ctx, content.Query{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	saved, err := table.Upsert(ctx, profile.Profile{DisplayName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", saved.DisplayName)

	got, err := table.Get(ctx, profile.SingletonID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.DisplayName)

	assert.ErrorIs(t, table.Delete(ctx, profile.SingletonID), apperror.ErrPermission)
}

func TestClient_UploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, string(media.FolderProjects), r.FormValue("folder"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "shot.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "pngdata", string(body))
		writeJSON(w, http.StatusCreated, map[string]string{"url": "https://cdn.example.com/shot.png"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	c.SetToken(testToken)

	url, err := c.UploadImage(context.Background(), media.FolderProjects, manager.File{
		Name: "shot.png", ContentType: "image/png", Size: 7, Body: strings.NewReader("pngdata"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/shot.png", url)
}

func TestClient_WatchReportsSignOut(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/auth/session":
			writeJSON(w, http.StatusOK, map[string]any{"session": map[string]any{"email": "owner@example.com"}})
		case "/api/admin/live":
			requireBearer(t, r)
			conn, err := upgrader.Upgrade(w, r, nil)
			require.NoError(t, err)
			defer conn.Close()
			_ = conn.WriteJSON(map[string]string{"type": "change"})
			_ = conn.WriteJSON(map[string]string{"type": "session", "state": "unauthenticated", "redirect": "/admin/login"})
		}
	}))
	defer srv.Close()

	sub, err := New(srv.URL, nil).Watch(context.Background(), testToken)
	require.NoError(t, err)
	defer sub.Close()

	select {
	case s := <-sub.Changes():
		assert.Nil(t, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no session change received")
	}
}

func TestClient_WatchWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
	}))
	defer srv.Close()

	sub, err := New(srv.URL, nil).Watch(context.Background(), "stale")
	require.NoError(t, err)
	s, ok := <-sub.Changes()
	assert.True(t, ok)
	assert.Nil(t, s)
	_, ok = <-sub.Changes()
	assert.False(t, ok)
	assert.NoError(t, sub.Close())
}
