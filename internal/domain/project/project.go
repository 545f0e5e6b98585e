package project

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

type Project struct {
	ID           int64     `json:"id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	Year         string    `json:"year"`
	Competencies []string  `json:"competencies"`
	Tools        []string  `json:"tools"`
	LiveLink     string    `json:"live_link"`
	GithubLink   string    `json:"github_link"`
	IsFeatured   bool      `json:"is_featured"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

var (
	ErrTitleRequired = errors.New("Title is required")
	ErrInvalidYear   = errors.New("year must be a four digit year")
)

// New returns the empty draft used when creating a project.
func New(now time.Time, position int) Project {
	return Project{
		Year:         strconv.Itoa(now.Year()),
		Competencies: []string{},
		Tools:        []string{},
		Position:     position,
	}
}

func (p Project) Key() int64 { return p.ID }

func (p Project) WithKey(id int64) Project {
	p.ID = id
	return p
}

func (p Project) Image() string { return p.ImageURL }

func (p Project) WithImage(url string) Project {
	p.ImageURL = url
	return p
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Year != "" {
		if _, err := strconv.Atoi(p.Year); err != nil || len(p.Year) != 4 {
			return ErrInvalidYear
		}
	}
	return nil
}

// Normalize trims list entries, drops empty ones and lower-cases tool slugs.
func (p Project) Normalize() Project {
	p.Title = strings.TrimSpace(p.Title)
	p.Competencies = cleanList(p.Competencies, false)
	p.Tools = cleanList(p.Tools, true)
	return p
}

func cleanList(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out
}
