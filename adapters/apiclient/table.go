package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/pkg/apperror"
)

// restTable is a content table served by the admin CRUD endpoints. The
// server applies its own ordering; Eq is sent as query parameters and Limit
// is applied locally.
type restTable[T content.Record[T]] struct {
	client *Client
	name   string
}

func NewTable[T content.Record[T]](c *Client, table string) content.Table[T] {
	return &restTable[T]{client: c, name: table}
}

func (t *restTable[T]) Name() string { return t.name }

func (t *restTable[T]) path(id int64) string {
	p := "/api/admin/" + t.name
	if id != 0 {
		p += "/" + strconv.FormatInt(id, 10)
	}
	return p
}

func (t *restTable[T]) Select(ctx context.Context, q content.Query) ([]T, error) {
	p := t.path(0)
	if len(q.Eq) > 0 {
		v := url.Values{}
		for col, val := range q.Eq {
			v.Set(col, fmt.Sprint(val))
		}
		p += "?" + v.Encode()
	}
	var rows []T
	if err := t.client.do(ctx, http.MethodGet, p, nil, &rows); err != nil {
		return nil, err
	}
	if q.Limit > 0 && uint64(len(rows)) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (t *restTable[T]) Get(ctx context.Context, id int64) (T, error) {
	var row T
	err := t.client.do(ctx, http.MethodGet, t.path(id), nil, &row)
	return row, err
}

func (t *restTable[T]) Insert(ctx context.Context, row T) (T, error) {
	var saved T
	err := t.client.do(ctx, http.MethodPost, t.path(0), row, &saved)
	return saved, err
}

func (t *restTable[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	var saved T
	err := t.client.do(ctx, http.MethodPut, t.path(id), row, &saved)
	return saved, err
}

func (t *restTable[T]) Delete(ctx context.Context, id int64) error {
	return t.client.do(ctx, http.MethodDelete, t.path(id), nil, nil)
}

func (t *restTable[T]) Upsert(ctx context.Context, row T) (T, error) {
	if row.Key() == 0 {
		return t.Insert(ctx, row)
	}
	return t.Update(ctx, row.Key(), row)
}

// profileTable maps the singleton profile endpoints onto the table
// contract. Only Select, Get and Upsert are meaningful.
type profileTable struct {
	client *Client
}

func NewProfileTable(c *Client) content.Table[profile.Profile] {
	return &profileTable{client: c}
}

type profileBody struct {
	Profile profile.Profile `json:"profile"`
	Exists  bool            `json:"exists"`
}

func (t *profileTable) Name() string { return content.TableProfile }

func (t *profileTable) Select(ctx context.Context, _ content.Query) ([]profile.Profile, error) {
	var out profileBody
	if err := t.client.do(ctx, http.MethodGet, "/api/admin/profile", nil, &out); err != nil {
		return nil, err
	}
	if !out.Exists {
		return []profile.Profile{}, nil
	}
	return []profile.Profile{out.Profile}, nil
}

func (t *profileTable) Get(ctx context.Context, id int64) (profile.Profile, error) {
	rows, err := t.Select(ctx, content.Query{})
	if err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 || rows[0].ID != id {
		return profile.Profile{}, apperror.NewNotFound("profile", strconv.FormatInt(id, 10))
	}
	return rows[0], nil
}

func (t *profileTable) Upsert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	in := map[string]string{
		"display_name": p.DisplayName,
		"headline":     p.Headline,
		"about_text":   p.AboutText,
		"avatar_url":   p.AvatarURL,
	}
	var out profileBody
	if err := t.client.do(ctx, http.MethodPut, "/api/admin/profile", in, &out); err != nil {
		return profile.Profile{}, err
	}
	return out.Profile, nil
}

func (t *profileTable) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	return t.Upsert(ctx, p)
}

func (t *profileTable) Update(ctx context.Context, _ int64, p profile.Profile) (profile.Profile, error) {
	return t.Upsert(ctx, p)
}

func (t *profileTable) Delete(context.Context, int64) error {
	return apperror.NewPermissionDenied("the profile cannot be deleted")
}
