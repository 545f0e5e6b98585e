package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkill_Validate(t *testing.T) {
	assert.ErrorIs(t, Skill{Type: TypeCore}.Validate(), ErrNameRequired)
	assert.ErrorIs(t, Skill{Name: "Go", Type: "frontend"}.Validate(), ErrInvalidType)
	assert.NoError(t, Skill{Name: "Go", Type: TypeTechStack}.Validate())
	assert.Equal(t, TypeTechStack, New(0).Type)
}

func TestSkill_ImageOnlyForURLs(t *testing.T) {
	assert.Empty(t, Skill{IconName: "golang"}.Image())
	assert.Equal(t, "https://cdn.example/go.png", Skill{IconName: "https://cdn.example/go.png"}.Image())
}
