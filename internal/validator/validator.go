// Package validator wraps go-playground struct validation with the custom
// tags used by request payloads and ingested backend payloads.
package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/CSCORE-2025/cscore-web/internal/errors"
	"github.com/CSCORE-2025/cscore-web/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags and converts failures into the shared
// ValidationErrors type so handlers can render them consistently.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if verrs := apperrors.ToValidationErrors(err); len(verrs) > 0 {
			return verrs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("assignment_type", validateAssignmentType)

	// Use json field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionProgramming,
		models.QuestionEssay,
		models.QuestionMultipleChoice,
		models.QuestionTrueFalse,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateAssignmentType(fl validator.FieldLevel) bool {
	validTypes := []models.AssignmentType{
		models.AssignmentExercise,
		models.AssignmentExam,
		models.AssignmentProject,
		models.AssignmentQuiz,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}
