// Package apiclient talks to the folio REST API on behalf of the admin CLI.
// It implements the same table, session and upload contracts the server
// implements over Postgres, Redis and object storage.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/folio/internal/application/manager"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/apperror"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for the API at baseURL (e.g. http://localhost:8080).
// A nil httpClient gets a default with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeError maps an error response back onto the apperror taxonomy, so
// callers can errors.Is it and show the server's message.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	if body.Message == "" {
		body.Message = strings.TrimSpace(string(raw))
	}
	if body.Message == "" {
		body.Message = resp.Status
	}
	return apperror.FromHTTPStatus(resp.StatusCode, body.Message, fmt.Sprintf("%s %s: %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperror.NewInternal("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.NewUpstream("api unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewInternal("decode response", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return apperror.NewInternal("encode request", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

type sessionBody struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (b *sessionBody) toSession(token string) *session.Session {
	if b == nil {
		return nil
	}
	return &session.Session{OwnerID: b.OwnerID, Email: b.Email, ExpiresAt: b.ExpiresAt, Token: token}
}

// Login signs in and keeps the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var out struct {
		AccessToken string      `json:"access_token"`
		Session     sessionBody `json:"session"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/admin/auth/login", in, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return out.Session.toSession(out.AccessToken), nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/admin/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// GetSession asks the server whether token still names a live session.
func (c *Client) GetSession(ctx context.Context, token string) (*session.Session, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/admin/auth/session", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Del("Authorization")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	var out struct {
		Session *sessionBody `json:"session"`
	}
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return out.Session.toSession(token), nil
}

// UploadImage posts file to the media endpoint and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, folder media.Folder, file manager.File) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("folder", string(folder)); err != nil {
		return "", apperror.NewInternal("encode upload", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	h.Set("Content-Type", file.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", apperror.NewInternal("encode upload", err)
	}
	if _, err := io.Copy(part, io.LimitReader(file.Body, media.MaxImageSize+1)); err != nil {
		return "", apperror.NewInternal("read upload", err)
	}
	if err := w.Close(); err != nil {
		return "", apperror.NewInternal("encode upload", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/media", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
