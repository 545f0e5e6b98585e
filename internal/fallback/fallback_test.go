package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackSetsAreValid(t *testing.T) {
	require.NotEmpty(t, Profile())
	for _, p := range Projects() {
		assert.NoError(t, p.Validate(), p.Title)
	}
	for _, s := range Skills() {
		assert.NoError(t, s.Validate(), s.Name)
	}
	for _, c := range Certifications() {
		assert.NoError(t, c.Validate(), c.Title)
	}
	assert.NotEmpty(t, Projects())
	assert.NotEmpty(t, Skills())
	assert.NotEmpty(t, Certifications())
}

func TestFallbackReturnsFreshCopies(t *testing.T) {
	a := Projects()
	a[0].Title = "changed"
	assert.NotEqual(t, "changed", Projects()[0].Title)
}
