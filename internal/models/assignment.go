package models

import "time"

type QuestionType string

const (
	QuestionProgramming    QuestionType = "PROGRAMMING"
	QuestionEssay          QuestionType = "ESSAY"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
)

// HasOptions reports whether the question type carries a fixed option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

// MultiSelect reports whether more than one option may be selected at once.
// TRUE_FALSE keeps radio semantics.
func (t QuestionType) MultiSelect() bool {
	return t == QuestionMultipleChoice
}

type AssignmentType string

const (
	AssignmentExercise AssignmentType = "EXERCISE"
	AssignmentExam     AssignmentType = "EXAM"
	AssignmentProject  AssignmentType = "PROJECT"
	AssignmentQuiz     AssignmentType = "QUIZ"
)

type QuestionOption struct {
	ID   int64  `json:"id"`
	Text string `json:"optionText"`
}

// PublicTestCase is informational only; the grading backend owns the full set.
type PublicTestCase struct {
	ID             int64  `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Question is the student-facing view of one assignment question, as served by
// the CSCORE backend. Options are present only for choice types; UserAnswer and
// SelectedOptionIDs carry a previously saved draft when the student resumes.
type Question struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Type              QuestionType     `json:"questionType" validate:"required,question_type"`
	Points            float64          `json:"points"`
	OrderIndex        int              `json:"orderIndex"`
	Options           []QuestionOption `json:"options,omitempty"`
	PublicTestCases   []PublicTestCase `json:"publicTestCases,omitempty"`
	IsAnswered        bool             `json:"isAnswered"`
	UserAnswer        string           `json:"userAnswer,omitempty"`
	SelectedOptionIDs []int64          `json:"selectedOptionIds,omitempty"`
}

// AssignmentDefinition is the assignment as fetched for one student, questions
// included. TimeLimit is in minutes; zero means untimed.
type AssignmentDefinition struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Type             AssignmentType `json:"type" validate:"omitempty,assignment_type"`
	Description      string         `json:"description,omitempty"`
	Requirements     string         `json:"requirements,omitempty"`
	MaxScore         float64        `json:"maxScore"`
	TimeLimit        int            `json:"timeLimit"`
	StartTime        *time.Time     `json:"startTime,omitempty"`
	EndTime          *time.Time     `json:"endTime,omitempty"`
	TotalQuestions   int            `json:"totalQuestions"`
	TotalTestCases   int            `json:"totalTestCases"`
	IsSubmitted      bool           `json:"isSubmitted"`
	CurrentScore     *float64       `json:"currentScore,omitempty"`
	SubmissionStatus string         `json:"submissionStatus,omitempty"`
	Questions        []Question     `json:"questions" validate:"dive"`
}

// HasProgramming reports whether at least one question is programming-type,
// which switches the submission payload to code-only mode.
func (a *AssignmentDefinition) HasProgramming() bool {
	for _, q := range a.Questions {
		if q.Type == QuestionProgramming {
			return true
		}
	}
	return false
}

func (a *AssignmentDefinition) TotalPoints() float64 {
	var sum float64
	for _, q := range a.Questions {
		sum += q.Points
	}
	return sum
}
