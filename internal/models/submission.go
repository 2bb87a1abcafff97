package models

import "time"

// AnswerSubmission is one answer entry in the submit payload. Language is a
// best-effort classification tag for programming answers; it is advisory and
// never blocks submission.
type AnswerSubmission struct {
	QuestionID        int64   `json:"questionId"`
	Answer            string  `json:"answer"`
	SelectedOptionIDs []int64 `json:"selectedOptionIds,omitempty"`
	Language          string  `json:"language,omitempty"`
}

type SubmissionRequest struct {
	AssignmentID int64              `json:"assignmentId"`
	Answers      []AnswerSubmission `json:"answers"`
}

// SubmissionReceipt is the backend acknowledgement of a submitted attempt.
type SubmissionReceipt struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignmentId"`
	Status       string     `json:"status"`
	Score        *float64   `json:"score,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
}

// SubmissionSummary is one row of the teacher-facing submissions list for an
// assignment, as reported by the backend.
type SubmissionSummary struct {
	ID          int64      `json:"id"`
	StudentID   string     `json:"studentId"`
	StudentName string     `json:"studentName"`
	StudentCode string     `json:"studentCode,omitempty"`
	Status      string     `json:"status"`
	Score       *float64   `json:"score,omitempty"`
	Language    string     `json:"language,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}
