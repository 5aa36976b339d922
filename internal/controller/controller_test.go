package controller

import (
	"bytes"
	"encoding/json"
	"hiring_tool_backend/internal/config"
	"hiring_tool_backend/internal/middleware"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/pkg/logger"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	runner *service.AssessmentRunner
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	logger.InitNop()

	store := repository.NewMemoryKVStore()
	users := repository.NewUserRepository(store, bcrypt.MinCost)
	todos := repository.NewTodoRepository(store)
	results := repository.NewMemoryResultRepository()

	auth := service.NewAuthService(users, store, 0)
	storage := service.NewStorageService(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	userSvc := service.NewUserService(users, storage, auth)
	practice, err := service.NewPracticeService()
	require.NoError(t, err)
	runner := service.NewAssessmentRunner(practice, results, nil, auth, time.Second)
	t.Cleanup(runner.Shutdown)

	authCtl := NewAuthController(auth, userSvc)
	practiceCtl := NewPracticeController(practice)
	assessmentCtl := NewAssessmentController(runner, service.NewResultService(results, practice, auth), nil)
	todoCtl := NewTodoController(service.NewTodoService(todos))
	dashboardCtl := NewDashboardController(service.NewStreakService(todos, 5, 0))
	healthCtl := NewHealthController(nil, store)

	r := gin.New()
	r.GET("/api/health", healthCtl.HealthCheck)
	r.POST("/api/auth/signup", authCtl.SignUp)
	r.POST("/api/auth/login", authCtl.Login)
	r.GET("/api/auth/status", authCtl.Status)

	api := r.Group("/api", middleware.AuthMiddleware(auth))
	api.POST("/auth/logout", authCtl.Logout)
	api.GET("/profile", authCtl.GetProfile)
	api.GET("/practice/assessments", practiceCtl.ListAssessments)
	api.GET("/practice/assessments/:id", practiceCtl.GetAssessment)
	api.GET("/practice/questions", practiceCtl.GetQuestions)
	api.GET("/practice/typing/lessons", practiceCtl.ListTypingLessons)
	api.POST("/practice/typing/lessons/:id/score", practiceCtl.ScoreTyping)
	api.POST("/assessments/session", assessmentCtl.Start)
	api.GET("/assessments/session", assessmentCtl.Current)
	api.DELETE("/assessments/session", assessmentCtl.Close)
	api.POST("/assessments/session/answer", assessmentCtl.SelectAnswer)
	api.POST("/assessments/session/next", assessmentCtl.Next)
	api.POST("/assessments/session/submit", assessmentCtl.Submit)
	api.POST("/assessments/session/retake", assessmentCtl.Retake)
	api.GET("/assessments/results", assessmentCtl.ListResults)
	api.GET("/assessments/results/overview", assessmentCtl.Overview)
	api.GET("/assessments/results/analytics", assessmentCtl.Analytics)
	api.GET("/assessments/recommended", assessmentCtl.Recommended)
	api.GET("/assessments/results/:id/certificate", assessmentCtl.Certificate)
	api.GET("/todos", todoCtl.List)
	api.POST("/todos", todoCtl.Create)
	api.PATCH("/todos/:id/toggle", todoCtl.Toggle)
	api.DELETE("/todos/:id", todoCtl.Delete)
	api.GET("/dashboard/streak", dashboardCtl.GetStreak)

	return &testServer{router: r, runner: runner}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func signUpBody() map[string]string {
	return map[string]string{
		"name":        "Ada Lovelace",
		"email":       "ada@example.com",
		"password":    "Abcdefg1",
		"username":    "ada",
		"country":     "UK",
		"role":        "Engineer",
		"institution": "Analytical Engines",
	}
}

func (s *testServer) signUp(t *testing.T) string {
	w, env := s.do(t, http.MethodPost, "/api/auth/signup", "", signUpBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.signUp(t)

	w, env = s.do(t, http.MethodPost, "/api/auth/signup", "", signUpBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DuplicateEmail", env.Kind)
	assert.Equal(t, "User with this email already exists", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.NotContains(t, profile, "passwordHash")

	w, _ = s.do(t, http.MethodGet, "/api/profile", "token_0_forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/auth/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		LoggedIn bool `json:"loggedIn"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.LoggedIn)

	// 退出后旧令牌失效
	w, _ = s.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "InvalidCredentials", env.Kind)

	w, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "Abcdefg1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignUpValidationMessage(t *testing.T) {
	s := newTestServer(t)
	body := signUpBody()
	body["password"] = "abcdefgh"

	w, env := s.do(t, http.MethodPost, "/api/auth/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WeakInput", env.Kind)
	assert.Equal(t, "Password must contain uppercase letters", env.Message)
}

func TestAssessmentSessionFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t)

	w, env := s.do(t, http.MethodGet, "/api/assessments/session", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NoActiveSession", env.Kind)

	w, _ = s.do(t, http.MethodPost, "/api/assessments/session", token, map[string]string{"assessmentId": "999"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/assessments/session", token, map[string]string{"assessmentId": "1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snap struct {
		CurrentIndex   int    `json:"currentIndex"`
		TotalQuestions int    `json:"totalQuestions"`
		RemainingTime  string `json:"remainingTime"`
		Question       struct {
			ID      string                   `json:"id"`
			Options []map[string]interface{} `json:"options"`
		} `json:"question"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Equal(t, "30:00", snap.RemainingTime)
	assert.Equal(t, "1", snap.Question.ID)
	for _, o := range snap.Question.Options {
		assert.NotContains(t, o, "isCorrect")
	}

	w, _ = s.do(t, http.MethodPost, "/api/assessments/session/answer", token, map[string]string{"optionId": "b"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/assessments/session/retake", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/assessments/session/submit", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var submitted struct {
		State  string `json:"state"`
		Result struct {
			CorrectAnswers int     `json:"correctAnswers"`
			Score          float64 `json:"score"`
			Passed         bool    `json:"passed"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.Equal(t, "submitted", submitted.State)
	assert.Equal(t, 1, submitted.Result.CorrectAnswers)
	assert.False(t, submitted.Result.Passed)

	w, env = s.do(t, http.MethodGet, "/api/assessments/results", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []struct {
		ID     string `json:"id"`
		Passed bool   `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)

	w, env = s.do(t, http.MethodGet, "/api/assessments/results/"+records[0].ID+"/certificate", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Certificate is only available for passed results", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/assessments/results/overview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview struct {
		CompletedCount int `json:"completedCount"`
		TotalAttempts  int `json:"totalAttempts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, 1, overview.CompletedCount)
	assert.Equal(t, 1, overview.TotalAttempts)

	w, _ = s.do(t, http.MethodPost, "/api/assessments/session/retake", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/assessments/session", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/assessments/session", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPracticeEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t)

	w, env := s.do(t, http.MethodGet, "/api/practice/assessments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 15)

	w, _ = s.do(t, http.MethodGet, "/api/practice/assessments/42", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/practice/questions?topic=Unknown", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var qs []interface{}
	require.NoError(t, json.Unmarshal(env.Data, &qs))
	assert.Empty(t, qs)
}

func TestTypingEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t)

	w, env := s.do(t, http.MethodGet, "/api/practice/typing/lessons", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lessons []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &lessons))
	assert.Len(t, lessons, 6)

	w, env = s.do(t, http.MethodPost, "/api/practice/typing/lessons/1/score", token,
		map[string]interface{}{"input": "a s d f", "elapsedMs": 6000})
	require.Equal(t, http.StatusOK, w.Code)
	var score struct {
		Accuracy  int  `json:"accuracy"`
		WPM       int  `json:"wpm"`
		Completed bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &score))
	assert.Equal(t, 20, score.Accuracy)
	assert.Equal(t, 14, score.WPM)
	assert.False(t, score.Completed)

	w, _ = s.do(t, http.MethodPost, "/api/practice/typing/lessons/abc/score", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/practice/typing/lessons/99/score", token, map[string]interface{}{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsAndRecommendedEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t)

	w, env := s.do(t, http.MethodGet, "/api/assessments/results/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var analytics struct {
		WeakAreas        []string `json:"weakAreas"`
		ImprovementTrend string   `json:"improvementTrend"`
		TotalAttempts    int      `json:"totalAttempts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &analytics))
	assert.Empty(t, analytics.WeakAreas)
	assert.Equal(t, "Stable", analytics.ImprovementTrend)

	// 提交一次空白作答，Python 成为弱项
	w, _ = s.do(t, http.MethodPost, "/api/assessments/session", token, map[string]string{"assessmentId": "1"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/assessments/session/submit", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/assessments/results/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &analytics))
	assert.Equal(t, []string{"Python"}, analytics.WeakAreas)
	assert.Equal(t, 1, analytics.TotalAttempts)

	w, env = s.do(t, http.MethodGet, "/api/assessments/recommended?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recommended []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &recommended))
	require.Len(t, recommended, 2)
	assert.Equal(t, "1", recommended[0]["id"])
	assert.Equal(t, "2", recommended[1]["id"])
}

func TestOverlongPasswordSignUpIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	body := signUpBody()
	body["password"] = "Abcdefg1" + strings.Repeat("x", 70)

	w, env := s.do(t, http.MethodPost, "/api/auth/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WeakInput", env.Kind)
}

func TestTodoAndStreakEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t)
	today := time.Now().Format("2006-01-02")

	w, env := s.do(t, http.MethodPost, "/api/todos", token, map[string]string{"date": today, "text": "mock interview"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var todo struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &todo))

	w, env = s.do(t, http.MethodPost, "/api/todos", token, map[string]string{"date": "yesterday", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/todos/"+todo.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var todos []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &todos))
	require.Len(t, todos, 1)
	assert.Equal(t, true, todos[0]["completed"])

	w, env = s.do(t, http.MethodGet, "/api/dashboard/streak", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var streak struct {
		Streak             int     `json:"streak"`
		ProgressPercentage float64 `json:"progressPercentage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &streak))
	assert.Equal(t, 1, streak.Streak)
	assert.InDelta(t, 20.0, streak.ProgressPercentage, 0.001)

	w, _ = s.do(t, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
