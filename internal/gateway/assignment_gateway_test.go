package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSCORE-2025/cscore-web/internal/models"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewClient(srv.URL, 5*time.Second, logger)
}

func TestGetForStudent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/student/assignments/42", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.AssignmentDefinition{
			ID:        42,
			Title:     "Linked lists",
			Type:      models.AssignmentExercise,
			TimeLimit: 30,
			Questions: []models.Question{
				{ID: 1, Type: models.QuestionProgramming, Points: 10},
			},
		})
	})

	gw := NewAssignmentGateway(testClient(t, handler))
	assignment, err := gw.GetForStudent(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), assignment.ID)
	assert.Equal(t, 30, assignment.TimeLimit)
	require.Len(t, assignment.Questions, 1)
	assert.Equal(t, models.QuestionProgramming, assignment.Questions[0].Type)
}

func TestSubmitSendsPayload(t *testing.T) {
	var got models.SubmissionRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/student/assignments/submit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(models.SubmissionReceipt{ID: 7, AssignmentID: got.AssignmentID, Status: "SUBMITTED"})
	})

	gw := NewAssignmentGateway(testClient(t, handler))
	receipt, err := gw.Submit(context.Background(), "tok", &models.SubmissionRequest{
		AssignmentID: 42,
		Answers: []models.AnswerSubmission{
			{QuestionID: 1, Answer: "print(1)", Language: "PYTHON"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), receipt.ID)
	assert.Equal(t, int64(42), got.AssignmentID)
	require.Len(t, got.Answers, 1)
	assert.Equal(t, "PYTHON", got.Answers[0].Language)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.True(t, IsUnauthorized(err))
			},
		},
		{
			name:   "server error surfaces message",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var ue *UpstreamError
				require.ErrorAs(t, err, &ue)
				assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
				assert.Contains(t, ue.Message, "grading backend unavailable")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"message": "grading backend unavailable"})
			})
			gw := NewAssignmentGateway(testClient(t, handler))
			_, err := gw.GetForStudent(context.Background(), "tok", 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCourseGateway(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/student/courses/10":
			json.NewEncoder(w).Encode(models.CourseSummary{ID: 10, Name: "Algorithms", Code: "CS301"})
		case "/api/student/courses":
			json.NewEncoder(w).Encode([]models.CourseSummary{{ID: 10}, {ID: 11}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	gw := NewCourseGateway(testClient(t, handler))

	course, err := gw.GetForStudent(context.Background(), "tok", 10)
	require.NoError(t, err)
	assert.Equal(t, "CS301", course.Code)

	courses, err := gw.ListForStudent(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}
