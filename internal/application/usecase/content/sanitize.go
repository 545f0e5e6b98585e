package content

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
)

var strict = bluemonday.StrictPolicy()

// maxUnwrap bounds how many layers of entity encoding plain decodes.
const maxUnwrap = 4

// plain strips all markup, leaving the text content. Entities are decoded
// and the result stripped again until nothing changes, so encoded tags never
// come back as markup. Input still changing after maxUnwrap passes is kept
// escaped.
func plain(s string) string {
	for i := 0; i < maxUnwrap; i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(strict.Sanitize(s))
}

func plainAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = plain(s)
	}
	return out
}

func CleanProject(p project.Project) project.Project {
	p.Title = plain(p.Title)
	p.Description = plain(p.Description)
	p.Year = strings.TrimSpace(p.Year)
	p.Competencies = plainAll(p.Competencies)
	p.Tools = plainAll(p.Tools)
	p.LiveLink = strings.TrimSpace(p.LiveLink)
	p.GithubLink = strings.TrimSpace(p.GithubLink)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	return p.Normalize()
}

func CleanSkill(s skill.Skill) skill.Skill {
	s.Name = plain(s.Name)
	s.IconName = strings.TrimSpace(s.IconName)
	if s.Type == "" {
		s.Type = skill.TypeTechStack
	}
	return s
}

func CleanCertification(c certification.Certification) certification.Certification {
	c.Title = plain(c.Title)
	c.Issuer = plain(c.Issuer)
	c.IssueDate = strings.TrimSpace(c.IssueDate)
	c.ImageURL = strings.TrimSpace(c.ImageURL)
	c.CredentialURL = strings.TrimSpace(c.CredentialURL)
	return c
}

func CleanProfile(p profile.Profile) profile.Profile {
	p.DisplayName = plain(p.DisplayName)
	p.Headline = plain(p.Headline)
	p.AboutText = plain(p.AboutText)
	p.AvatarURL = strings.TrimSpace(p.AvatarURL)
	return p
}
