package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSCORE-2025/cscore-web/internal/events"
	"github.com/CSCORE-2025/cscore-web/internal/models"
	"github.com/CSCORE-2025/cscore-web/internal/session"
	"github.com/CSCORE-2025/cscore-web/internal/validator"
)

type fakeAssignmentGateway struct {
	assignment *models.AssignmentDefinition
	getErr     error

	receipt     *models.SubmissionReceipt
	submitErr   error
	submitCalls int
	lastSubmit  *models.SubmissionRequest

	submissions []models.SubmissionSummary
}

func (f *fakeAssignmentGateway) GetForStudent(ctx context.Context, token string, assignmentID int64) (*models.AssignmentDefinition, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.assignment, nil
}

func (f *fakeAssignmentGateway) Submit(ctx context.Context, token string, req *models.SubmissionRequest) (*models.SubmissionReceipt, error) {
	f.submitCalls++
	f.lastSubmit = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.receipt, nil
}

func (f *fakeAssignmentGateway) ListSubmissions(ctx context.Context, token string, assignmentID int64) ([]models.SubmissionSummary, error) {
	return f.submissions, nil
}

type fakeCourseGateway struct {
	course *models.CourseSummary
	getErr error
}

func (f *fakeCourseGateway) GetForStudent(ctx context.Context, token string, courseID int64) (*models.CourseSummary, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.course, nil
}

func (f *fakeCourseGateway) ListForStudent(ctx context.Context, token string) ([]models.CourseSummary, error) {
	return []models.CourseSummary{*f.course}, nil
}

func testAssignment() *models.AssignmentDefinition {
	return &models.AssignmentDefinition{
		ID:        42,
		Title:     "Sorting Algorithms",
		Type:      models.AssignmentExercise,
		MaxScore:  10,
		TimeLimit: 30,
		Questions: []models.Question{
			{ID: 1, Title: "Bubble sort", Type: models.QuestionProgramming, Points: 5},
			{ID: 2, Title: "Quick sort", Type: models.QuestionProgramming, Points: 5},
		},
	}
}

func testQuizAssignment() *models.AssignmentDefinition {
	return &models.AssignmentDefinition{
		ID:    43,
		Title: "Complexity Quiz",
		Type:  models.AssignmentQuiz,
		Questions: []models.Question{
			{ID: 1, Type: models.QuestionTrueFalse, Points: 1, Options: []models.QuestionOption{
				{ID: 10, Text: "True"}, {ID: 11, Text: "False"},
			}},
			{ID: 2, Type: models.QuestionMultipleChoice, Points: 2, Options: []models.QuestionOption{
				{ID: 20, Text: "O(n)"}, {ID: 21, Text: "O(n log n)"}, {ID: 22, Text: "O(n^2)"},
			}},
		},
	}
}

func testUser() *models.User {
	return &models.User{ID: "student-1", Username: "alice", Role: models.RoleStudent}
}

type serviceFixture struct {
	service     AttemptService
	sessions    *session.Manager
	publisher   *events.MockEventPublisher
	assignments *fakeAssignmentGateway
	courses     *fakeCourseGateway
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assignments := &fakeAssignmentGateway{
		assignment: testAssignment(),
		receipt:    &models.SubmissionReceipt{ID: 100, Status: "PENDING"},
	}
	courses := &fakeCourseGateway{
		course: &models.CourseSummary{ID: 7, Name: "Data Structures", Code: "CS201"},
	}
	sessions := session.NewManager(time.Hour, logger)
	t.Cleanup(sessions.Shutdown)
	publisher := events.NewMockEventPublisher(logger)

	return &serviceFixture{
		service:     NewAttemptService(assignments, courses, sessions, publisher, logger, validator.New(), 0),
		sessions:    sessions,
		publisher:   publisher,
		assignments: assignments,
		courses:     courses,
	}
}

func (f *serviceFixture) start(t *testing.T) *AttemptResponse {
	t.Helper()
	resp, err := f.service.Start(context.Background(), &StartAttemptRequest{
		CourseID:     7,
		AssignmentID: 42,
	}, testUser(), "token")
	require.NoError(t, err)
	return resp
}

func TestStartCreatesSession(t *testing.T) {
	f := newServiceFixture(t)

	resp := f.start(t)

	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.Processing)
	assert.Equal(t, "Data Structures", resp.Course.Name)
	assert.Equal(t, "Sorting Algorithms", resp.Assignment.Title)
	assert.Len(t, resp.Questions, 2)
	assert.Len(t, resp.Answers, 2)
	assert.Equal(t, session.StateEditing, resp.State)
	require.NotNil(t, resp.TimeLeft)
	assert.Equal(t, 30*60, *resp.TimeLeft)

	_, ok := f.sessions.Get(resp.SessionID)
	assert.True(t, ok)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptStarted, published[0].Type)
}

func TestStartFailsWhenEitherLoadFails(t *testing.T) {
	f := newServiceFixture(t)
	f.courses.getErr = errors.New("upstream down")

	_, err := f.service.Start(context.Background(), &StartAttemptRequest{
		CourseID:     7,
		AssignmentID: 42,
	}, testUser(), "token")

	require.ErrorIs(t, err, ErrLoadFailed)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestStartRejectsMalformedAssignment(t *testing.T) {
	f := newServiceFixture(t)
	f.assignments.assignment.Questions[0].Type = "RIDDLE"

	_, err := f.service.Start(context.Background(), &StartAttemptRequest{
		CourseID:     7,
		AssignmentID: 42,
	}, testUser(), "token")

	require.ErrorIs(t, err, ErrLoadFailed)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestStartRejectsSubmittedAssignment(t *testing.T) {
	f := newServiceFixture(t)
	f.assignments.assignment.IsSubmitted = true

	_, err := f.service.Start(context.Background(), &StartAttemptRequest{
		CourseID:     7,
		AssignmentID: 42,
	}, testUser(), "token")

	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestStartReportsProcessingWithoutQuestions(t *testing.T) {
	f := newServiceFixture(t)
	f.assignments.assignment.Questions = nil

	resp, err := f.service.Start(context.Background(), &StartAttemptRequest{
		CourseID:     7,
		AssignmentID: 42,
	}, testUser(), "token")

	require.NoError(t, err)
	assert.True(t, resp.Processing)
	assert.Empty(t, resp.SessionID)
	assert.Equal(t, "Sorting Algorithms", resp.Assignment.Title)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestSubmitRequiresConfirmation(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.start(t)

	_, err := f.service.Submit(context.Background(), resp.SessionID, &SubmitAttemptRequest{Confirmed: false}, testUser())

	require.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Zero(t, f.assignments.submitCalls)
}

func TestSubmitRemovesSessionAndPublishes(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.start(t)
	f.publisher.ClearEvents()

	_, err := f.service.SetAnswer(context.Background(), resp.SessionID, &SetAnswerRequest{
		QuestionID: 1,
		Answer:     "print('sorted')",
	}, testUser())
	require.NoError(t, err)

	final, err := f.service.Submit(context.Background(), resp.SessionID, &SubmitAttemptRequest{Confirmed: true}, testUser())
	require.NoError(t, err)

	assert.Equal(t, session.StateSubmitted, final.State)
	require.NotNil(t, final.Receipt)
	assert.Equal(t, int64(100), final.Receipt.ID)

	_, ok := f.sessions.Get(resp.SessionID)
	assert.False(t, ok)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptSubmitted, published[0].Type)
}

func TestSubmitFailurePublishesAndKeepsSession(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.start(t)
	f.publisher.ClearEvents()
	f.assignments.submitErr = errors.New("backend rejected submission")

	_, err := f.service.SetAnswer(context.Background(), resp.SessionID, &SetAnswerRequest{
		QuestionID: 1,
		Answer:     "print('sorted')",
	}, testUser())
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), resp.SessionID, &SubmitAttemptRequest{Confirmed: true}, testUser())
	require.Error(t, err)

	_, ok := f.sessions.Get(resp.SessionID)
	assert.True(t, ok)

	view, err := f.service.Get(context.Background(), resp.SessionID, testUser())
	require.NoError(t, err)
	assert.Equal(t, session.StateFailed, view.State)
	assert.Contains(t, view.LastError, "backend rejected submission")

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptSubmitFailed, published[0].Type)
}

func TestOwnershipEnforced(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.start(t)

	intruder := &models.User{ID: "student-2", Username: "bob", Role: models.RoleStudent}
	_, err := f.service.Get(context.Background(), resp.SessionID, intruder)

	var pe *PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "student-2", pe.UserID)
}

func TestGetUnknownSession(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Get(context.Background(), "no-such-session", testUser())

	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestToggleOptionFollowsQuestionType(t *testing.T) {
	f := newServiceFixture(t)
	f.assignments.assignment = testQuizAssignment()
	resp := f.start(t)

	// TRUE_FALSE keeps radio semantics: the second toggle replaces the first.
	_, err := f.service.ToggleOption(context.Background(), resp.SessionID, &ToggleOptionRequest{QuestionID: 1, OptionID: 10}, testUser())
	require.NoError(t, err)
	view, err := f.service.ToggleOption(context.Background(), resp.SessionID, &ToggleOptionRequest{QuestionID: 1, OptionID: 11}, testUser())
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, view.Answers[1].SelectedOptionIDs)

	// MULTIPLE_CHOICE accumulates.
	_, err = f.service.ToggleOption(context.Background(), resp.SessionID, &ToggleOptionRequest{QuestionID: 2, OptionID: 20}, testUser())
	require.NoError(t, err)
	view, err = f.service.ToggleOption(context.Background(), resp.SessionID, &ToggleOptionRequest{QuestionID: 2, OptionID: 21}, testUser())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{20, 21}, view.Answers[2].SelectedOptionIDs)
}

func TestToggleOptionUnknownQuestion(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.start(t)

	_, err := f.service.ToggleOption(context.Background(), resp.SessionID, &ToggleOptionRequest{QuestionID: 99, OptionID: 1}, testUser())

	require.ErrorIs(t, err, session.ErrUnknownQuestion)
}

func TestTeardownDiscardsSession(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.start(t)

	require.NoError(t, f.service.Teardown(context.Background(), resp.SessionID, testUser()))

	_, ok := f.sessions.Get(resp.SessionID)
	assert.False(t, ok)
}
