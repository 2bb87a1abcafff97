package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CSCORE-2025/cscore-web/internal/errors"
	"github.com/CSCORE-2025/cscore-web/internal/models"
)

func TestValidAssignmentPasses(t *testing.T) {
	v := New()
	assignment := &models.AssignmentDefinition{
		ID:   1,
		Type: models.AssignmentQuiz,
		Questions: []models.Question{
			{ID: 1, Type: models.QuestionTrueFalse},
			{ID: 2, Type: models.QuestionProgramming},
		},
	}

	assert.NoError(t, v.Validate(assignment))
}

func TestUnknownQuestionTypeFails(t *testing.T) {
	v := New()
	assignment := &models.AssignmentDefinition{
		ID:   1,
		Type: models.AssignmentQuiz,
		Questions: []models.Question{
			{ID: 1, Type: "RIDDLE"},
		},
	}

	err := v.Validate(assignment)
	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "question_type", verrs[0].Rule)
	assert.Contains(t, verrs[0].Message, "valid question type")
}

func TestUnknownAssignmentTypeFails(t *testing.T) {
	v := New()
	assignment := &models.AssignmentDefinition{
		ID:   1,
		Type: "HOMEWORK",
		Questions: []models.Question{
			{ID: 1, Type: models.QuestionEssay},
		},
	}

	err := v.Validate(assignment)
	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "assignment_type", verrs[0].Rule)
}

func TestMissingAssignmentTypeAllowed(t *testing.T) {
	v := New()
	assignment := &models.AssignmentDefinition{
		ID: 1,
		Questions: []models.Question{
			{ID: 1, Type: models.QuestionEssay},
		},
	}

	assert.NoError(t, v.Validate(assignment))
}
