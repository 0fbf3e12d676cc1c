package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-reminders/internal/models"
	"github.com/adanyl0v/todo-reminders/internal/monitor"
	"github.com/adanyl0v/todo-reminders/internal/services"
	"github.com/adanyl0v/todo-reminders/internal/storage"
)

const (
	testUsername = "admin123"
	testPassword = "admin@123"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	router *gin.Engine
	repo   *storage.MemoryRepository
	feed   *monitor.Feed
	token  string
}

func newTestServer(t *testing.T, health HealthChecker) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := storage.NewMemoryRepository()
	if health == nil {
		health = repo
	}
	identities, err := services.NewStaticIdentityStore(testUsername, testPassword, "")
	require.NoError(t, err)

	feed := monitor.NewFeed(10)
	h := New(
		zerolog.Nop(),
		services.NewAuthService(zerolog.Nop(), identities, "todo-test", []byte("secret"), time.Hour),
		services.NewTaskService(zerolog.Nop(), repo),
		feed,
		health,
	)

	router := gin.New()
	RegisterRoutes(router, h)

	s := &testServer{router: router, repo: repo, feed: feed}
	rec := s.do(t, http.MethodPost, "/login", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	s.token = resp.Token
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithToken(t, method, path, body, s.token)
}

func (s *testServer) doWithToken(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHandleLogin(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("wrong password", func(t *testing.T) {
		rec := s.doWithToken(t, http.MethodPost, "/login", map[string]string{
			"username": testUsername,
			"password": "nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := s.doWithToken(t, http.MethodPost, "/login", map[string]string{
			"username": "someone",
			"password": testPassword,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.doWithToken(t, http.MethodPost, "/login", "{", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAuthMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/todos", map[string]string{"text": "keep me"})
	require.Equal(t, http.StatusCreated, rec.Code)
	seeded := decode[taskResponse](t, rec)

	headers := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic " + s.token},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "tampered token", header: "Bearer " + s.token + "x"},
	}
	requests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodPost, path: "/todos", body: `{"text":"sneaky"}`},
		{method: http.MethodPut, path: "/todos/" + seeded.ID, body: `{"text":"changed","completed":true}`},
		{method: http.MethodDelete, path: "/todos/" + seeded.ID},
	}
	for _, r := range requests {
		for _, h := range headers {
			t.Run(r.method+" "+h.name, func(t *testing.T) {
				req := httptest.NewRequest(r.method, r.path, bytes.NewReader([]byte(r.body)))
				req.Header.Set("Content-Type", "application/json")
				if h.header != "" {
					req.Header.Set("Authorization", h.header)
				}
				rec := httptest.NewRecorder()
				s.router.ServeHTTP(rec, req)

				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			})
		}
	}

	tasks, err := s.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, seeded.ID, tasks[0].ID)
	assert.Equal(t, "keep me", tasks[0].Text)
	assert.False(t, tasks[0].Completed)
	assert.True(t, seeded.UpdatedAt.Equal(tasks[0].UpdatedAt))
}

func TestHandleTasks(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, text := range []string{"A", "B", "C"} {
		rec = s.do(t, http.MethodPost, "/todos", map[string]string{"text": text})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]taskResponse](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].Text)
	assert.Equal(t, "B", list[1].Text)
	assert.Equal(t, "A", list[2].Text)
	for _, task := range list {
		assert.NotEmpty(t, task.ID)
		assert.False(t, task.Completed)
		assert.False(t, task.Notified)
	}
}

func TestHandleCreateTask(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/todos", map[string]string{
		"text":    "Pay rent",
		"dueDate": "2024-03-01",
		"dueTime": "09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[taskResponse](t, rec)
	assert.Equal(t, "Pay rent", task.Text)
	assert.Equal(t, "2024-03-01", task.DueDate)
	assert.Equal(t, "09:00", task.DueTime)
	assert.False(t, task.Notified)

	cases := []struct {
		name string
		body any
	}{
		{name: "blank text", body: map[string]string{"text": "   "}},
		{name: "bad date", body: map[string]string{"text": "x", "dueDate": "03/01/2024"}},
		{name: "bad time", body: map[string]string{"text": "x", "dueTime": "9am"}},
		{name: "malformed json", body: "{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/todos", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleUpdateTask(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/todos", map[string]string{
		"text":    "Call mom",
		"dueDate": "2024-03-01",
		"dueTime": "09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[taskResponse](t, rec)

	marked, err := s.repo.MarkNotified(context.Background(), created.ID, models.Reminder{Date: "2024-03-01", Time: "09:00"}, time.Now())
	require.NoError(t, err)
	require.True(t, marked)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[taskResponse](t, rec)
	assert.True(t, updated.Completed)
	assert.True(t, updated.Notified)
	assert.Equal(t, "Call mom", updated.Text)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"dueTime": "10:30"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode[taskResponse](t, rec)
	assert.Equal(t, "10:30", updated.DueTime)
	assert.False(t, updated.Notified)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"dueDate": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[taskResponse](t, rec).DueDate)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"dueTime": "25:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/todos/does-not-exist", map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Todo not found"}`, rec.Body.String())
}

func TestHandleUpdateTask_NotifiedIsServerOwned(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/todos", map[string]string{
		"text":    "Renew passport",
		"dueDate": "2999-01-01",
		"dueTime": "09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[taskResponse](t, rec)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"completed": true, "notified": true})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[taskResponse](t, rec)
	assert.True(t, updated.Completed)
	assert.False(t, updated.Notified)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"completed": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/todos/"+created.ID, map[string]any{"notified": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := s.repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Notified)
	assert.False(t, stored.Completed)
}

func TestHandleDeleteTask(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/todos", map[string]string{"text": "Temp"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[taskResponse](t, rec)

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodDelete, "/todos/"+created.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Todo deleted"}`, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/todos", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleGetTaskStats(t *testing.T) {
	s := newTestServer(t, nil)

	for _, text := range []string{"a", "b"} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/todos", map[string]string{"text": text}).Code)
	}
	list := decode[[]taskResponse](t, s.do(t, http.MethodGet, "/todos", nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/todos/"+list[0].ID, map[string]any{"completed": true}).Code)

	rec := s.do(t, http.MethodGet, "/todos/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":2,"completed":1,"pending":1}`, rec.Body.String())
}

func TestHandleGetAlerts(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alerts":[],"last":0}`, rec.Body.String())

	ctx := context.Background()
	firedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.feed.Alert(ctx, monitor.Alert{TaskID: "1", Text: "first", FiredAt: firedAt}))
	require.NoError(t, s.feed.Alert(ctx, monitor.Alert{TaskID: "2", Text: "second", FiredAt: firedAt}))

	resp := decode[alertsResponse](t, s.do(t, http.MethodGet, "/alerts", nil))
	require.Len(t, resp.Alerts, 2)
	assert.Equal(t, uint64(2), resp.Last)

	resp = decode[alertsResponse](t, s.do(t, http.MethodGet, "/alerts?after=1", nil))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "second", resp.Alerts[0].Text)

	resp = decode[alertsResponse](t, s.do(t, http.MethodGet, "/alerts?after=57", nil))
	require.Len(t, resp.Alerts, 2)
	assert.Equal(t, "first", resp.Alerts[0].Text)
	assert.Equal(t, uint64(2), resp.Last)

	rec = s.do(t, http.MethodGet, "/alerts?after=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doWithToken(t, http.MethodGet, "/alerts", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.doWithToken(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s = newTestServer(t, pingFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))
	rec = s.doWithToken(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()

	router := gin.New()
	router.Use(NewMetricsMiddleware(reg))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	count, err := testutil.GatherAndCount(reg, "todo_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
