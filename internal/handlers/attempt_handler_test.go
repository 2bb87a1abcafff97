package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSCORE-2025/cscore-web/internal/auth"
	"github.com/CSCORE-2025/cscore-web/internal/models"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/session"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

type stubVerifier struct {
	user *models.User
	err  error
}

func (v *stubVerifier) Verify(token string) (*models.User, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.user, nil
}

type stubAttemptService struct {
	startResp  *services.AttemptResponse
	startErr   error
	submitResp *services.AttemptResponse
	submitErr  error
}

func (s *stubAttemptService) Start(ctx context.Context, req *services.StartAttemptRequest, user *models.User, token string) (*services.AttemptResponse, error) {
	return s.startResp, s.startErr
}

func (s *stubAttemptService) Get(ctx context.Context, sessionID string, user *models.User) (*services.AttemptResponse, error) {
	return nil, services.ErrAttemptNotFound
}

func (s *stubAttemptService) SetAnswer(ctx context.Context, sessionID string, req *services.SetAnswerRequest, user *models.User) (*services.AttemptResponse, error) {
	return nil, nil
}

func (s *stubAttemptService) ToggleOption(ctx context.Context, sessionID string, req *services.ToggleOptionRequest, user *models.User) (*services.AttemptResponse, error) {
	return nil, nil
}

func (s *stubAttemptService) Navigate(ctx context.Context, sessionID string, req *services.NavigateRequest, user *models.User) (*services.AttemptResponse, error) {
	return nil, nil
}

func (s *stubAttemptService) TimeRemaining(ctx context.Context, sessionID string, user *models.User) (int, bool, error) {
	return 90, true, nil
}

func (s *stubAttemptService) Submit(ctx context.Context, sessionID string, req *services.SubmitAttemptRequest, user *models.User) (*services.AttemptResponse, error) {
	return s.submitResp, s.submitErr
}

func (s *stubAttemptService) Teardown(ctx context.Context, sessionID string, user *models.User) error {
	return nil
}

func newTestRouter(attempts services.AttemptService, verifier auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(verifier, logger))
	NewAttemptHandler(attempts, logger).RegisterRoutes(api)
	return router
}

func studentVerifier() auth.Verifier {
	return &stubVerifier{user: &models.User{ID: "student-1", Role: models.RoleStudent}}
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartRequiresToken(t *testing.T) {
	router := newTestRouter(&stubAttemptService{}, studentVerifier())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attempts", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartRejectsInvalidToken(t *testing.T) {
	router := newTestRouter(&stubAttemptService{}, &stubVerifier{err: errors.New("expired")})

	w := doRequest(router, http.MethodPost, "/api/v1/attempts", gin.H{"courseId": 1, "assignmentId": 2})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartReturnsCreated(t *testing.T) {
	service := &stubAttemptService{
		startResp: &services.AttemptResponse{
			SessionID: "session-1",
			State:     session.StateEditing,
		},
	}
	router := newTestRouter(service, studentVerifier())

	w := doRequest(router, http.MethodPost, "/api/v1/attempts", gin.H{"courseId": 1, "assignmentId": 2})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "session-1", data["sessionId"])
}

func TestStartReturnsAcceptedWhileProcessing(t *testing.T) {
	service := &stubAttemptService{
		startResp: &services.AttemptResponse{Processing: true},
	}
	router := newTestRouter(service, studentVerifier())

	w := doRequest(router, http.MethodPost, "/api/v1/attempts", gin.H{"courseId": 1, "assignmentId": 2})

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestStartMapsLoadFailure(t *testing.T) {
	service := &stubAttemptService{startErr: services.ErrLoadFailed}
	router := newTestRouter(service, studentVerifier())

	w := doRequest(router, http.MethodPost, "/api/v1/attempts", gin.H{"courseId": 1, "assignmentId": 2})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSubmitMapsConfirmationRequired(t *testing.T) {
	service := &stubAttemptService{submitErr: services.ErrConfirmationRequired}
	router := newTestRouter(service, studentVerifier())

	w := doRequest(router, http.MethodPost, "/api/v1/attempts/session-1/submit", gin.H{"confirmed": false})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmation_required", resp.Error)
}

func TestSubmitMapsEmptySubmission(t *testing.T) {
	service := &stubAttemptService{submitErr: session.ErrEmptySubmission}
	router := newTestRouter(service, studentVerifier())

	w := doRequest(router, http.MethodPost, "/api/v1/attempts/session-1/submit", gin.H{"confirmed": true})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "empty_submission", resp.Error)
}

func TestGetMapsNotFound(t *testing.T) {
	router := newTestRouter(&stubAttemptService{}, studentVerifier())

	w := doRequest(router, http.MethodGet, "/api/v1/attempts/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimeRemaining(t *testing.T) {
	router := newTestRouter(&stubAttemptService{}, studentVerifier())

	w := doRequest(router, http.MethodGet, "/api/v1/attempts/session-1/time", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["timed"])
	assert.Equal(t, float64(90), data["timeLeft"])
}
