package manager

import (
	"time"

	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
)

func ProjectSchema(now func() time.Time) Schema[project.Project] {
	return Schema[project.Project]{
		Table: content.TableProjects,
		Label: "Project",
		Order: []content.Order{{Column: "position"}},
		Template: func(rows []project.Project) project.Project {
			return project.New(now(), len(rows))
		},
		ImageFolder: media.FolderProjects,
	}
}

func SkillSchema() Schema[skill.Skill] {
	return Schema[skill.Skill]{
		Table: content.TableSkills,
		Label: "Skill",
		Order: []content.Order{{Column: "position"}},
		Template: func(rows []skill.Skill) skill.Skill {
			return skill.New(len(rows))
		},
		ImageFolder: media.FolderSkills,
	}
}

func CertificationSchema() Schema[certification.Certification] {
	return Schema[certification.Certification]{
		Table: content.TableCertifications,
		Label: "Certification",
		Order: []content.Order{{Column: "issue_date", Desc: true}},
		Template: func([]certification.Certification) certification.Certification {
			return certification.New()
		},
		ImageFolder: media.FolderCertifications,
	}
}

// ProfileSchema edits the first profile row, or a fresh one under the
// fixed key if none exists.
func ProfileSchema() Schema[profile.Profile] {
	return Schema[profile.Profile]{
		Table:     content.TableProfile,
		Label:     "Profile",
		Order:     []content.Order{{Column: "id"}},
		Singleton: true,
		Template: func(rows []profile.Profile) profile.Profile {
			if len(rows) > 0 {
				return rows[0]
			}
			return profile.New()
		},
		ImageFolder: media.FolderAvatars,
	}
}
