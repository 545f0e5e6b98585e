// Package fallback holds the sample content shown by public views when the
// store is empty or unreachable.
package fallback

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
)

//go:embed data/*.json
var files embed.FS

func load[T any](name string) []T {
	raw, err := files.ReadFile("data/" + name + ".json")
	if err != nil {
		panic(fmt.Sprintf("fallback: missing %s: %v", name, err))
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("fallback: decode %s: %v", name, err))
	}
	return out
}

func Profile() []profile.Profile { return load[profile.Profile]("profile") }

func Projects() []project.Project { return load[project.Project]("projects") }

func Skills() []skill.Skill { return load[skill.Skill]("skills") }

func Certifications() []certification.Certification {
	return load[certification.Certification]("certifications")
}
