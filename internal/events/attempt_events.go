package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the attempt lifecycle events this service emits.
type EventType string

const (
	EventAttemptStarted      EventType = "attempt.started"
	EventAttemptSubmitted    EventType = "attempt.submitted"
	EventAttemptExpired      EventType = "attempt.expired"
	EventAttemptSubmitFailed EventType = "attempt.submit_failed"
)

// AttemptEvent is the envelope for all attempt lifecycle events.
type AttemptEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewAttemptEvent stamps the envelope; Data carries one of the payloads below.
func NewAttemptEvent(eventType EventType, data interface{}) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "cscore-web",
		Version:   "1.0",
		Data:      data,
	}
}

type AttemptStartedEvent struct {
	SessionID       string    `json:"session_id"`
	AssignmentID    int64     `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	CourseID        int64     `json:"course_id"`
	StudentID       string    `json:"student_id"`
	StartedAt       time.Time `json:"started_at"`
	TimeLimit       *int      `json:"time_limit,omitempty"` // minutes
}

type AttemptSubmittedEvent struct {
	SessionID     string    `json:"session_id"`
	AssignmentID  int64     `json:"assignment_id"`
	StudentID     string    `json:"student_id"`
	SubmissionID  int64     `json:"submission_id"`
	AnswerCount   int       `json:"answer_count"`
	AutoTriggered bool      `json:"auto_triggered"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type AttemptSubmitFailedEvent struct {
	SessionID     string    `json:"session_id"`
	AssignmentID  int64     `json:"assignment_id"`
	StudentID     string    `json:"student_id"`
	AutoTriggered bool      `json:"auto_triggered"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failed_at"`
}
