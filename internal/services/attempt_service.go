package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CSCORE-2025/cscore-web/internal/events"
	"github.com/CSCORE-2025/cscore-web/internal/gateway"
	"github.com/CSCORE-2025/cscore-web/internal/models"
	"github.com/CSCORE-2025/cscore-web/internal/session"
	"github.com/CSCORE-2025/cscore-web/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type StartAttemptRequest struct {
	CourseID     int64 `json:"courseId" validate:"required"`
	AssignmentID int64 `json:"assignmentId" validate:"required"`
}

type SetAnswerRequest struct {
	QuestionID int64  `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

type ToggleOptionRequest struct {
	QuestionID int64 `json:"questionId" validate:"required"`
	OptionID   int64 `json:"optionId" validate:"required"`
}

type NavigateRequest struct {
	Delta int `json:"delta"`
}

type SubmitAttemptRequest struct {
	Confirmed bool `json:"confirmed"`
}

// AssignmentInfo is the assignment header shown during an attempt.
type AssignmentInfo struct {
	ID             int64                 `json:"id"`
	Title          string                `json:"title"`
	Type           models.AssignmentType `json:"type"`
	MaxScore       float64               `json:"maxScore"`
	TimeLimit      int                   `json:"timeLimit"`
	TotalTestCases int                   `json:"totalTestCases"`
	EndTime        *time.Time            `json:"endTime,omitempty"`
}

// AttemptResponse is the full view of an attempt session. Processing marks
// the distinct "assignment has no questions yet" condition: the backend is
// still migrating the assignment to the multi-question format, which is not a
// load failure and must not be rendered as one.
type AttemptResponse struct {
	SessionID    string                        `json:"sessionId,omitempty"`
	Processing   bool                          `json:"processing,omitempty"`
	Course       models.CourseSummary          `json:"course"`
	Assignment   AssignmentInfo                `json:"assignment"`
	Questions    []models.Question             `json:"questions,omitempty"`
	Answers      map[int64]session.AnswerDraft `json:"answers,omitempty"`
	CurrentIndex int                           `json:"currentIndex"`
	TimeLeft     *int                          `json:"timeLeft,omitempty"`
	State        session.State                 `json:"state,omitempty"`
	AnsweredCnt  int                           `json:"answeredCount"`
	TotalPoints  float64                       `json:"totalPoints"`
	LastError    string                        `json:"lastError,omitempty"`
	Receipt      *models.SubmissionReceipt     `json:"receipt,omitempty"`
}

// ===== SERVICE =====

// AttemptService orchestrates loading, editing, timing and the exactly-once
// terminal submission of attempt sessions.
type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, user *models.User, token string) (*AttemptResponse, error)
	Get(ctx context.Context, sessionID string, user *models.User) (*AttemptResponse, error)
	SetAnswer(ctx context.Context, sessionID string, req *SetAnswerRequest, user *models.User) (*AttemptResponse, error)
	ToggleOption(ctx context.Context, sessionID string, req *ToggleOptionRequest, user *models.User) (*AttemptResponse, error)
	Navigate(ctx context.Context, sessionID string, req *NavigateRequest, user *models.User) (*AttemptResponse, error)
	TimeRemaining(ctx context.Context, sessionID string, user *models.User) (int, bool, error)
	Submit(ctx context.Context, sessionID string, req *SubmitAttemptRequest, user *models.User) (*AttemptResponse, error)
	Teardown(ctx context.Context, sessionID string, user *models.User) error
}

type attemptService struct {
	assignments   gateway.AssignmentGateway
	courses       gateway.CourseGateway
	sessions      *session.Manager
	publisher     events.EventPublisher
	logger        *slog.Logger
	validator     *validator.Validator
	submitTimeout time.Duration
}

func NewAttemptService(
	assignments gateway.AssignmentGateway,
	courses gateway.CourseGateway,
	sessions *session.Manager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	submitTimeout time.Duration,
) AttemptService {
	return &attemptService{
		assignments:   assignments,
		courses:       courses,
		sessions:      sessions,
		publisher:     publisher,
		logger:        logger,
		validator:     validator,
		submitTimeout: submitTimeout,
	}
}

// Start loads course metadata and the assignment definition concurrently;
// the two reads are independent but succeed or fail as a unit. On success it
// creates the session with one draft per question and starts the countdown.
func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, user *models.User, token string) (*AttemptResponse, error) {
	s.logger.Info("starting assignment attempt",
		"course_id", req.CourseID,
		"assignment_id", req.AssignmentID,
		"student_id", user.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		course     *models.CourseSummary
		assignment *models.AssignmentDefinition
		courseErr  error
		assignErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		course, courseErr = s.courses.GetForStudent(ctx, token, req.CourseID)
	}()
	go func() {
		defer wg.Done()
		assignment, assignErr = s.assignments.GetForStudent(ctx, token, req.AssignmentID)
	}()
	wg.Wait()

	if courseErr != nil || assignErr != nil {
		err := errors.Join(courseErr, assignErr)
		s.logger.Error("attempt load failed",
			"course_id", req.CourseID,
			"assignment_id", req.AssignmentID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	// The backend contract is checked on ingestion: a question type this
	// service cannot render must fail the load, not surface mid-attempt.
	if err := s.validator.Validate(assignment); err != nil {
		s.logger.Error("backend returned malformed assignment",
			"assignment_id", req.AssignmentID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	if assignment.IsSubmitted {
		return nil, ErrAlreadySubmitted
	}

	// An assignment with zero questions is still being migrated to the
	// multi-question format. Surface it as its own condition with the
	// assignment header intact, never as a load error.
	if len(assignment.Questions) == 0 {
		return &AttemptResponse{
			Processing: true,
			Course:     *course,
			Assignment: assignmentInfo(assignment),
		}, nil
	}

	attempt := session.New(session.Config{
		ID:            uuid.NewString(),
		StudentID:     user.ID,
		Token:         token,
		Course:        *course,
		Assignment:    assignment,
		Gateway:       s.assignments,
		SubmitTimeout: s.submitTimeout,
		Hooks: session.Hooks{
			OnSubmitted:    s.onSubmitted,
			OnSubmitFailed: s.onSubmitFailed,
		},
	})
	s.sessions.Add(attempt)

	var timeLimit *int
	if assignment.TimeLimit > 0 {
		limit := assignment.TimeLimit
		timeLimit = &limit
	}
	s.publish(ctx, events.NewAttemptEvent(events.EventAttemptStarted, events.AttemptStartedEvent{
		SessionID:       attempt.ID(),
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		CourseID:        course.ID,
		StudentID:       user.ID,
		StartedAt:       time.Now(),
		TimeLimit:       timeLimit,
	}))

	s.logger.Info("assignment attempt started",
		"session_id", attempt.ID(),
		"assignment_id", assignment.ID,
		"questions", len(assignment.Questions),
		"timed", attempt.Timed())

	return buildAttemptResponse(attempt.Snapshot()), nil
}

func (s *attemptService) Get(ctx context.Context, sessionID string, user *models.User) (*AttemptResponse, error) {
	attempt, err := s.owned(sessionID, user, "read")
	if err != nil {
		return nil, err
	}
	return buildAttemptResponse(attempt.Snapshot()), nil
}

func (s *attemptService) SetAnswer(ctx context.Context, sessionID string, req *SetAnswerRequest, user *models.User) (*AttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	attempt, err := s.owned(sessionID, user, "answer")
	if err != nil {
		return nil, err
	}
	if err := attempt.SetAnswer(req.QuestionID, req.Answer); err != nil {
		return nil, err
	}
	return buildAttemptResponse(attempt.Snapshot()), nil
}

func (s *attemptService) ToggleOption(ctx context.Context, sessionID string, req *ToggleOptionRequest, user *models.User) (*AttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	attempt, err := s.owned(sessionID, user, "answer")
	if err != nil {
		return nil, err
	}

	// Radio vs checkbox semantics follow the question type, not the client.
	multi := false
	snap := attempt.Snapshot()
	found := false
	for _, q := range snap.Assignment.Questions {
		if q.ID == req.QuestionID {
			multi = q.Type.MultiSelect()
			found = true
			break
		}
	}
	if !found {
		return nil, session.ErrUnknownQuestion
	}

	if err := attempt.ToggleOption(req.QuestionID, req.OptionID, multi); err != nil {
		return nil, err
	}
	return buildAttemptResponse(attempt.Snapshot()), nil
}

func (s *attemptService) Navigate(ctx context.Context, sessionID string, req *NavigateRequest, user *models.User) (*AttemptResponse, error) {
	attempt, err := s.owned(sessionID, user, "navigate")
	if err != nil {
		return nil, err
	}
	attempt.Navigate(req.Delta)
	return buildAttemptResponse(attempt.Snapshot()), nil
}

func (s *attemptService) TimeRemaining(ctx context.Context, sessionID string, user *models.User) (int, bool, error) {
	attempt, err := s.owned(sessionID, user, "read")
	if err != nil {
		return 0, false, err
	}
	remaining, timed := attempt.TimeRemaining()
	return remaining, timed, nil
}

// Submit performs the manual submission path. The confirmation flag is the
// explicit user step the UI requires; auto submission (time expired) runs
// inside the session and never passes through here.
func (s *attemptService) Submit(ctx context.Context, sessionID string, req *SubmitAttemptRequest, user *models.User) (*AttemptResponse, error) {
	attempt, err := s.owned(sessionID, user, "submit")
	if err != nil {
		return nil, err
	}
	if !req.Confirmed {
		return nil, ErrConfirmationRequired
	}

	s.logger.Info("submitting attempt", "session_id", sessionID, "student_id", user.ID)

	if _, err := attempt.Submit(ctx, false); err != nil {
		return nil, err
	}
	return buildAttemptResponse(attempt.Snapshot()), nil
}

// Teardown discards the session (navigation away). Drafts are lost by
// contract.
func (s *attemptService) Teardown(ctx context.Context, sessionID string, user *models.User) error {
	if _, err := s.owned(sessionID, user, "teardown"); err != nil {
		return err
	}
	s.sessions.Remove(sessionID)
	s.logger.Info("attempt session discarded", "session_id", sessionID, "student_id", user.ID)
	return nil
}

// ===== HOOKS / HELPERS =====

func (s *attemptService) onSubmitted(a *session.Attempt, autoTriggered bool, receipt *models.SubmissionReceipt) {
	// A submitted attempt is terminal: drop the session so its timer can
	// never fire again and a stale tab cannot mutate it.
	s.sessions.Remove(a.ID())

	snap := a.Snapshot()
	eventType := events.EventAttemptSubmitted
	if autoTriggered {
		eventType = events.EventAttemptExpired
	}
	var submissionID int64
	if receipt != nil {
		submissionID = receipt.ID
	}
	s.publish(context.Background(), events.NewAttemptEvent(eventType, events.AttemptSubmittedEvent{
		SessionID:     snap.ID,
		AssignmentID:  snap.Assignment.ID,
		StudentID:     snap.StudentID,
		SubmissionID:  submissionID,
		AnswerCount:   snap.AnsweredCount(),
		AutoTriggered: autoTriggered,
		SubmittedAt:   time.Now(),
	}))

	s.logger.Info("attempt submitted",
		"session_id", snap.ID,
		"assignment_id", snap.Assignment.ID,
		"auto_triggered", autoTriggered)
}

func (s *attemptService) onSubmitFailed(a *session.Attempt, autoTriggered bool, err error) {
	snap := a.Snapshot()
	s.publish(context.Background(), events.NewAttemptEvent(events.EventAttemptSubmitFailed, events.AttemptSubmitFailedEvent{
		SessionID:     snap.ID,
		AssignmentID:  snap.Assignment.ID,
		StudentID:     snap.StudentID,
		AutoTriggered: autoTriggered,
		Reason:        err.Error(),
		FailedAt:      time.Now(),
	}))

	s.logger.Error("attempt submission failed",
		"session_id", snap.ID,
		"assignment_id", snap.Assignment.ID,
		"auto_triggered", autoTriggered,
		"error", err)
}

func (s *attemptService) publish(ctx context.Context, event *events.AttemptEvent) {
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish attempt event", "event_type", event.Type, "error", err)
	}
}

func (s *attemptService) owned(sessionID string, user *models.User, action string) (*session.Attempt, error) {
	attempt, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if attempt.StudentID() != user.ID {
		return nil, NewPermissionError(user.ID, "attempt", action, "not owned by student")
	}
	return attempt, nil
}

func assignmentInfo(a *models.AssignmentDefinition) AssignmentInfo {
	return AssignmentInfo{
		ID:             a.ID,
		Title:          a.Title,
		Type:           a.Type,
		MaxScore:       a.MaxScore,
		TimeLimit:      a.TimeLimit,
		TotalTestCases: a.TotalTestCases,
		EndTime:        a.EndTime,
	}
}

func buildAttemptResponse(snap session.Snapshot) *AttemptResponse {
	resp := &AttemptResponse{
		SessionID:    snap.ID,
		Course:       snap.Course,
		Assignment:   assignmentInfo(snap.Assignment),
		Questions:    snap.Assignment.Questions,
		Answers:      snap.Answers,
		CurrentIndex: snap.CurrentIndex,
		State:        snap.State,
		AnsweredCnt:  snap.AnsweredCount(),
		TotalPoints:  snap.Assignment.TotalPoints(),
		Receipt:      snap.Receipt,
	}
	if snap.Timed {
		timeLeft := snap.TimeLeft
		resp.TimeLeft = &timeLeft
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	return resp
}
