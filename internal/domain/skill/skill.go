package skill

import (
	"errors"
	"strings"
)

type Type string

const (
	TypeCore      Type = "core"
	TypeTechStack Type = "tech_stack"
)

type Skill struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	IconName string `json:"icon_name"`
	Position int    `json:"position"`
}

var (
	ErrNameRequired = errors.New("Name is required")
	ErrInvalidType  = errors.New("type must be 'core' or 'tech_stack'")
)

func New(position int) Skill {
	return Skill{Type: TypeTechStack, Position: position}
}

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeCore, TypeTechStack:
		return Type(s), nil
	}
	return "", ErrInvalidType
}

func (s Skill) Key() int64 { return s.ID }

func (s Skill) WithKey(id int64) Skill {
	s.ID = id
	return s
}

// Image is the icon when it points at an uploaded image rather than a slug.
func (s Skill) Image() string {
	if strings.HasPrefix(s.IconName, "http://") || strings.HasPrefix(s.IconName, "https://") {
		return s.IconName
	}
	return ""
}

func (s Skill) WithImage(url string) Skill {
	s.IconName = url
	return s
}

func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrNameRequired
	}
	if _, err := ParseType(string(s.Type)); err != nil {
		return err
	}
	return nil
}
