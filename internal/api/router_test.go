package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bounty-backend/internal/api/handlers"
	"bounty-backend/internal/api/middleware"
	"bounty-backend/internal/apperr"
	"bounty-backend/internal/metrics"
	"bounty-backend/internal/models"
	"bounty-backend/internal/notify"
	"bounty-backend/internal/service"
	"bounty-backend/internal/store/memory"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    apperr.Code     `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	users  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Nop()
	store := memory.NewStore()
	m := metrics.New()
	tokens := service.NewTokenIssuer("router-test-secret-0123", time.Hour)
	users := service.NewUserService(store, tokens, zerolog.Nop())
	engine := workflow.NewEngine(store, workflow.PublisherPolicy{}, notify.NewLogSink(zerolog.Nop()), m, zerolog.Nop(), workflow.Config{})

	h := &Handlers{
		User:         handlers.NewUserHandler(users, log),
		Task:         handlers.NewTaskHandler(engine, log),
		Assignment:   handlers.NewAssignmentHandler(engine, log),
		Review:       handlers.NewReviewHandler(engine, log),
		Reward:       handlers.NewRewardHandler(engine, log),
		Notification: handlers.NewNotificationHandler(engine, log),
		Status:       handlers.NewStatusHandler(service.NewStatusService(store, zerolog.Nop()), log),
	}
	router := NewRouter(h, users, store, m, Options{RequestTimeout: 5 * time.Second, MetricsPath: "/metrics"}, log)
	return &testServer{router: router, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

// login 注册并登录，返回令牌和用户 ID
func (s *testServer) login(t *testing.T, username string, role models.UserRole) (string, int64) {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/user/register", "", map[string]any{
		"username": username,
		"password": "correct-horse",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(t, http.MethodPost, "/api/user/login", "", map[string]any{
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	var res struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token, res.User.ID
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRouter_HappyPath(t *testing.T) {
	s := newTestServer(t)
	pubToken, _ := s.login(t, "alice", models.RolePublisher)
	workerToken, workerID := s.login(t, "bob", models.RoleUser)

	code, env := s.do(t, http.MethodPost, "/api/tasks/publish", pubToken, map[string]any{
		"title":         "label images",
		"description":   "label 100 images",
		"reward_amount": "25.50",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	task := decode[models.Task](t, env)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Equal(t, "25.5", task.RewardAmount.String())

	code, env = s.do(t, http.MethodPost, "/api/assignment/accept", workerToken, map[string]any{"task_id": task.ID})
	require.Equal(t, http.StatusCreated, code, env.Message)
	snap := decode[workflow.Snapshot](t, env)
	require.NotNil(t, snap.Assignment)
	require.NotNil(t, snap.Review)
	asgID := snap.Assignment.ID
	assert.Equal(t, models.AssignmentTaskPending, snap.Assignment.Status)

	code, env = s.do(t, http.MethodPost, "/api/review/submit", pubToken, map[string]any{
		"assignment_id": asgID,
		"review_type":   models.ReviewTypeAcceptance,
		"review_result": models.ReviewResultApproved,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	snap = decode[workflow.Snapshot](t, env)
	assert.Equal(t, models.AssignmentTaskReceive, snap.Assignment.Status)
	assert.Equal(t, models.TaskStatusInProgress, snap.Task.Status)

	code, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/assignment/submit/%d", asgID), workerToken,
		map[string]any{"submit_content": "done"})
	require.Equal(t, http.StatusOK, code, env.Message)
	snap = decode[workflow.Snapshot](t, env)
	require.NotNil(t, snap.Review)
	assert.Equal(t, models.AssignmentSubmissionPending, snap.Assignment.Status)

	code, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/review/%d", snap.Review.ID), pubToken, map[string]any{
		"review_result": models.ReviewResultApproved,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	snap = decode[workflow.Snapshot](t, env)
	assert.Equal(t, models.AssignmentTaskCompleted, snap.Assignment.Status)
	assert.Equal(t, models.TaskStatusCompleted, snap.Task.Status)
	require.NotNil(t, snap.Reward)
	assert.Equal(t, models.RewardStatusPending, snap.Reward.Status)
	assert.Equal(t, "25.5", snap.Reward.Amount.String())

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/reward/user/%d", workerID), workerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Len(t, decode[[]models.Reward](t, env), 1)

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/review/assignment/%d", asgID), pubToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Len(t, decode[[]models.Review](t, env), 2)

	code, env = s.do(t, http.MethodGet, "/api/notifications?unread=true", workerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	notices := decode[[]models.Notification](t, env)
	require.Len(t, notices, 2)

	code, env = s.do(t, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", notices[0].ID), workerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/notifications?unread=true", workerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Len(t, decode[[]models.Notification](t, env), 1)
}

func TestRouter_Errors(t *testing.T) {
	s := newTestServer(t)
	pubToken, _ := s.login(t, "carol", models.RolePublisher)
	workerToken, _ := s.login(t, "dave", models.RoleUser)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   apperr.Code
	}{
		{"missing token", http.MethodGet, "/api/tasks", "", nil, http.StatusUnauthorized, apperr.CodeInvalidToken},
		{"garbage token", http.MethodGet, "/api/tasks", "not-a-jwt", nil, http.StatusUnauthorized, apperr.CodeInvalidToken},
		{"bad id", http.MethodGet, "/api/tasks/abc", pubToken, nil, http.StatusBadRequest, apperr.CodeInvalidParameter},
		{"unknown task", http.MethodGet, "/api/tasks/999", pubToken, nil, http.StatusNotFound, apperr.CodeTaskNotFound},
		{"worker cannot publish", http.MethodPost, "/api/tasks/publish", workerToken,
			map[string]any{"title": "x", "reward_amount": 1}, http.StatusForbidden, apperr.CodeTaskPermissionDenied},
		{"invalid amount", http.MethodPost, "/api/tasks/publish", pubToken,
			map[string]any{"title": "x", "reward_amount": 0}, http.StatusBadRequest, apperr.CodeInvalidRewardAmount},
		{"missing body field", http.MethodPost, "/api/assignment/accept", workerToken,
			map[string]any{}, http.StatusBadRequest, apperr.CodeInvalidParameter},
		{"invalid status filter", http.MethodGet, "/api/tasks?status=nope", pubToken, nil, http.StatusBadRequest, apperr.CodeInvalidParameter},
		{"status requires admin", http.MethodGet, "/api/admin/status", pubToken, nil, http.StatusForbidden, apperr.CodePermissionDenied},
		{"bad credentials", http.MethodPost, "/api/user/login", "",
			map[string]any{"username": "carol", "password": "wrong-password"}, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"unknown route", http.MethodGet, "/api/nope", pubToken, nil, http.StatusNotFound, apperr.CodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, code, env.Message)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, apperr.CodeOK, env.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_RequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	generated := rec.Header().Get(middleware.RequestIDHeader)
	assert.NotEmpty(t, generated)

	const id = "0b8a5d3e-8f2c-4a51-9c55-6f1f8e0f7a10"
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(middleware.RequestIDHeader))
}
