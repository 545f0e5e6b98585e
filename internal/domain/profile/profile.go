package profile

import "time"

// SingletonID is the fixed key the profile row is upserted under.
const SingletonID int64 = 1

type Profile struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline"`
	AboutText   string    `json:"about_text"`
	AvatarURL   string    `json:"avatar_url"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

func New() Profile {
	return Profile{ID: SingletonID}
}

func (p Profile) Key() int64 { return p.ID }

func (p Profile) WithKey(id int64) Profile {
	p.ID = id
	return p
}

func (p Profile) Image() string { return p.AvatarURL }

func (p Profile) WithImage(url string) Profile {
	p.AvatarURL = url
	return p
}

// Validate accepts any profile; every field is optional.
func (p Profile) Validate() error { return nil }
