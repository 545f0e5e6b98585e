package certification

import (
	"errors"
	"strings"
	"time"
)

// IssueDateLayout is the format of Certification.IssueDate.
const IssueDateLayout = "2006-01-02"

type Certification struct {
	ID            int64     `json:"id,omitempty"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	Issuer        string    `json:"issuer"`
	IssueDate     string    `json:"issue_date"`
	CredentialURL string    `json:"credential_url"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

var (
	ErrImageRequired    = errors.New("Image is required")
	ErrInvalidIssueDate = errors.New("issue_date must use YYYY-MM-DD")
)

func New() Certification {
	return Certification{}
}

func (c Certification) Key() int64 { return c.ID }

func (c Certification) WithKey(id int64) Certification {
	c.ID = id
	return c
}

func (c Certification) Image() string { return c.ImageURL }

func (c Certification) WithImage(url string) Certification {
	c.ImageURL = url
	return c
}

func (c Certification) Validate() error {
	if strings.TrimSpace(c.ImageURL) == "" {
		return ErrImageRequired
	}
	if c.IssueDate != "" {
		if _, err := time.Parse(IssueDateLayout, c.IssueDate); err != nil {
			return ErrInvalidIssueDate
		}
	}
	return nil
}
