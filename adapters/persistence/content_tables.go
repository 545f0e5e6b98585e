package persistence

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
	"github.com/khoahotran/folio/pkg/logger"
)

func NewProfileTable(db *pgxpool.Pool, log logger.Logger) content.Table[profile.Profile] {
	return newPostgresTable(db, tableDef[profile.Profile]{
		Name:     content.TableProfile,
		Resource: "profile",
		Writable: []string{"display_name", "headline", "about_text", "avatar_url"},
		ReadOnly: []string{"updated_at"},
		Touch:    "updated_at",
		Scan:     scanProfile,
		Values: func(p profile.Profile) []any {
			return []any{p.DisplayName, p.Headline, p.AboutText, p.AvatarURL}
		},
	}, log)
}

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(&p.ID, &p.DisplayName, &p.Headline, &p.AboutText, &p.AvatarURL, &p.UpdatedAt)
	return p, err
}

func NewProjectTable(db *pgxpool.Pool, log logger.Logger) content.Table[project.Project] {
	return newPostgresTable(db, tableDef[project.Project]{
		Name:     content.TableProjects,
		Resource: "project",
		Writable: []string{
			"title", "description", "image_url", "year", "competencies", "tools",
			"live_link", "github_link", "is_featured", "position",
		},
		ReadOnly: []string{"created_at", "updated_at"},
		Touch:    "updated_at",
		Scan:     scanProject,
		Values: func(p project.Project) []any {
			return []any{
				p.Title, p.Description, p.ImageURL, p.Year, nonNil(p.Competencies), nonNil(p.Tools),
				p.LiveLink, p.GithubLink, p.IsFeatured, p.Position,
			}
		},
	}, log)
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ImageURL,
		&p.Year,
		&p.Competencies,
		&p.Tools,
		&p.LiveLink,
		&p.GithubLink,
		&p.IsFeatured,
		&p.Position,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func NewSkillTable(db *pgxpool.Pool, log logger.Logger) content.Table[skill.Skill] {
	return newPostgresTable(db, tableDef[skill.Skill]{
		Name:     content.TableSkills,
		Resource: "skill",
		Writable: []string{"name", "type", "icon_name", "position"},
		Scan:     scanSkill,
		Values: func(s skill.Skill) []any {
			return []any{s.Name, string(s.Type), s.IconName, s.Position}
		},
	}, log)
}

func scanSkill(row pgx.Row) (skill.Skill, error) {
	var s skill.Skill
	var typ string
	err := row.Scan(&s.ID, &s.Name, &typ, &s.IconName, &s.Position)
	s.Type = skill.Type(typ)
	return s, err
}

func NewCertificationTable(db *pgxpool.Pool, log logger.Logger) content.Table[certification.Certification] {
	return newPostgresTable(db, tableDef[certification.Certification]{
		Name:     content.TableCertifications,
		Resource: "certification",
		Writable: []string{"title", "image_url", "issuer", "issue_date", "credential_url"},
		ReadOnly: []string{"created_at"},
		Scan:     scanCertification,
		Values: func(c certification.Certification) []any {
			return []any{c.Title, c.ImageURL, c.Issuer, c.IssueDate, c.CredentialURL}
		},
	}, log)
}

func scanCertification(row pgx.Row) (certification.Certification, error) {
	var c certification.Certification
	err := row.Scan(&c.ID, &c.Title, &c.ImageURL, &c.Issuer, &c.IssueDate, &c.CredentialURL, &c.CreatedAt)
	return c, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
