package certification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCertification_Validate(t *testing.T) {
	assert.ErrorIs(t, Certification{Title: "AWS"}.Validate(), ErrImageRequired)
	assert.ErrorIs(t, Certification{ImageURL: "https://x/y.png", IssueDate: "2024/01/02"}.Validate(), ErrInvalidIssueDate)
	assert.NoError(t, Certification{ImageURL: "https://x/y.png", IssueDate: "2024-01-02"}.Validate())
	assert.NoError(t, Certification{ImageURL: "https://x/y.png"}.Validate())
}
