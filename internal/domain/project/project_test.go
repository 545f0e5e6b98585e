package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProject_Validate(t *testing.T) {
	assert.ErrorIs(t, Project{}.Validate(), ErrTitleRequired)
	assert.ErrorIs(t, Project{Title: "   "}.Validate(), ErrTitleRequired)
	assert.ErrorIs(t, Project{Title: "Demo", Year: "24"}.Validate(), ErrInvalidYear)
	assert.NoError(t, Project{Title: "Demo", Year: "2024"}.Validate())
	assert.NoError(t, Project{Title: "Demo"}.Validate())
}

func TestNew_DefaultsToCurrentYearAndPosition(t *testing.T) {
	p := New(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 3)
	assert.Equal(t, "2026", p.Year)
	assert.Equal(t, 3, p.Position)
	assert.Zero(t, p.Key())
	assert.NotNil(t, p.Tools)
}

func TestProject_Normalize(t *testing.T) {
	p := Project{
		Title:        "  Demo ",
		Competencies: []string{" API Design ", ""},
		Tools:        []string{" Go", "PostgreSQL ", " "},
	}.Normalize()

	assert.Equal(t, "Demo", p.Title)
	assert.Equal(t, []string{"API Design"}, p.Competencies)
	assert.Equal(t, []string{"go", "postgresql"}, p.Tools)
}
