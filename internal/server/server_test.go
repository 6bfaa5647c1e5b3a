package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"interviewai/internal/app"
	"interviewai/internal/evalclient"
	"interviewai/pkg/domain"
	"interviewai/pkg/store"
)

type testEnv struct {
	srv      *httptest.Server
	memStore *store.MemoryStore
	app      *app.App
}

func newTestEnv(t *testing.T, evaluator app.Evaluator, cfg Config) *testEnv {
	t.Helper()
	memStore := store.NewMemoryStore()
	a, err := app.New(app.Config{
		JWTSecret:   "unit-test-secret-0123456789",
		Store:       memStore,
		ResetTokens: store.NewMemoryResetTokenStore(),
		Evaluator:   evaluator,
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	redis := miniredis.RunT(t)
	cfg.App = a
	cfg.RedisAddr = redis.Addr()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, memStore: memStore, app: a}
}

type stubAppEvaluator struct{}

func (stubAppEvaluator) Evaluate(_ context.Context, _, _, _ string) (domain.Evaluation, error) {
	return domain.Evaluation{}, nil
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func (e *testEnv) register(t *testing.T, name, email string) {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d body %v", email, status, body)
	}
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d body %v", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: missing token in %v", email, body)
	}
	return token
}

func (e *testEnv) promoteToAdmin(t *testing.T, email string) {
	t.Helper()
	user, ok, err := e.memStore.GetUserByEmail(email)
	if err != nil || !ok {
		t.Fatalf("fetch %s: ok=%v err=%v", email, ok, err)
	}
	user.Role = domain.RoleAdmin
	if err := e.memStore.SaveUser(user); err != nil {
		t.Fatalf("promote %s: %v", email, err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{})
	status, body := env.do(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", status, body)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{})

	env.register(t, "Ada", "ada@example.com")

	// duplicate email
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada2", "email": "ada@example.com", "password": "secret1",
	})
	if status != http.StatusBadRequest {
		t.Errorf("duplicate register = %d %v", status, body)
	}

	// missing field
	status, _ = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "x@example.com", "password": "secret1",
	})
	if status != http.StatusBadRequest {
		t.Errorf("missing name = %d", status)
	}

	token := env.login(t, "ada@example.com")

	// bad password
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-pass",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad password login = %d", status)
	}

	// profile requires and honors the token
	status, body = env.do(t, http.MethodGet, "/api/users/profile", token, nil)
	if status != http.StatusOK || body["email"] != "ada@example.com" {
		t.Errorf("profile = %d %v", status, body)
	}
	if _, leaked := body["passwordHash"]; leaked {
		t.Error("profile leaks password hash")
	}
	if status, _ = env.do(t, http.MethodGet, "/api/users/profile", "", nil); status != http.StatusUnauthorized {
		t.Errorf("profile without token = %d", status)
	}
	if status, _ = env.do(t, http.MethodGet, "/api/users/profile", "garbage", nil); status != http.StatusUnauthorized {
		t.Errorf("profile with garbage token = %d", status)
	}
}

func TestPasswordResetOverHTTP(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{})
	env.register(t, "Ada", "ada@example.com")

	status, body := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "ada@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("forgot-password = %d %v", status, body)
	}
	token, _ := body["resetToken"].(string)
	if token == "" {
		t.Fatal("no reset token issued for a known account")
	}

	// unknown account: same status, no token
	status, body = env.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "ghost@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("forgot-password unknown = %d", status)
	}
	if _, ok := body["resetToken"]; ok {
		t.Error("reset token issued for unknown account")
	}

	status, _ = env.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "ada@example.com", "resetToken": "bogus", "newPassword": "newsecret",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bogus token reset = %d", status)
	}

	status, _ = env.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "ada@example.com", "resetToken": token, "newPassword": "newsecret",
	})
	if status != http.StatusOK {
		t.Errorf("reset = %d", status)
	}

	// old password rejected, new accepted
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("old password after reset = %d", status)
	}
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "newsecret",
	})
	if status != http.StatusOK {
		t.Errorf("new password after reset = %d", status)
	}
}

func TestInterviewEndpoints(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{})
	env.register(t, "Ada", "ada@example.com")
	env.register(t, "Eve", "eve@example.com")
	owner := env.login(t, "ada@example.com")
	intruder := env.login(t, "eve@example.com")

	status, created := env.do(t, http.MethodPost, "/api/interviews", owner, map[string]any{
		"role": "Backend", "level": "medium", "questions": []string{"Q1", "Q2"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create = %d %v", status, created)
	}
	id, _ := created["id"].(string)
	if id == "" || created["status"] != "pending" {
		t.Fatalf("created = %v", created)
	}

	status, _ = env.do(t, http.MethodPost, "/api/interviews", owner, map[string]any{
		"role": "Backend", "questions": []string{"Q1"},
	})
	if status != http.StatusBadRequest {
		t.Errorf("create missing level = %d", status)
	}

	status, listBody := env.do(t, http.MethodGet, "/api/interviews", owner, nil)
	if status != http.StatusOK {
		t.Fatalf("list = %d", status)
	}
	if items, _ := listBody["interviews"].([]any); len(items) != 1 {
		t.Errorf("list = %v", listBody)
	}

	status, _ = env.do(t, http.MethodGet, "/api/interviews/"+id, intruder, nil)
	if status != http.StatusForbidden {
		t.Errorf("get as non-owner = %d", status)
	}
	status, _ = env.do(t, http.MethodGet, "/api/interviews/00000000-0000-0000-0000-000000000000", owner, nil)
	if status != http.StatusNotFound {
		t.Errorf("get unknown = %d", status)
	}

	status, updated := env.do(t, http.MethodPut, "/api/interviews/"+id, owner, map[string]any{
		"level": "hard",
	})
	if status != http.StatusOK || updated["level"] != "hard" || updated["role"] != "Backend" {
		t.Errorf("update = %d %v", status, updated)
	}

	status, _ = env.do(t, http.MethodDelete, "/api/interviews/"+id, owner, nil)
	if status != http.StatusOK {
		t.Errorf("delete = %d", status)
	}
	status, _ = env.do(t, http.MethodGet, "/api/interviews/"+id, owner, nil)
	if status != http.StatusNotFound {
		t.Errorf("get after delete = %d", status)
	}
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/evaluate" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"relevance":8,"clarity":7,"completeness":6,"confidence":9,"overallScore":7.5}`)
	}))
	defer gateway.Close()

	env := newTestEnv(t, evalclient.NewClient(gateway.URL), Config{})
	env.register(t, "Ada", "ada@example.com")
	token := env.login(t, "ada@example.com")

	_, created := env.do(t, http.MethodPost, "/api/interviews", token, map[string]any{
		"role": "Backend", "level": "medium", "questions": []string{"Q1"},
	})
	id, _ := created["id"].(string)

	status, body := env.do(t, http.MethodPost, "/api/interviews/answer", token, map[string]string{
		"interviewId": id, "question": "Q1", "answerText": "channels and goroutines",
	})
	if status != http.StatusCreated {
		t.Fatalf("submit = %d %v", status, body)
	}
	score, _ := body["score"].(map[string]any)
	if score["overallScore"] != 7.5 || score["sentiment"] != "neutral" || score["feedback"] != "" {
		t.Errorf("score = %v", score)
	}

	status, _ = env.do(t, http.MethodPost, "/api/interviews/answer", token, map[string]string{
		"interviewId": "not-a-uuid", "question": "Q1", "answerText": "x",
	})
	if status != http.StatusBadRequest {
		t.Errorf("malformed id = %d", status)
	}
}

func TestSubmitAnswerGatewayDown(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	env := newTestEnv(t, evalclient.NewClient(gateway.URL), Config{})
	env.register(t, "Ada", "ada@example.com")
	token := env.login(t, "ada@example.com")
	_, created := env.do(t, http.MethodPost, "/api/interviews", token, map[string]any{
		"role": "Backend", "level": "medium", "questions": []string{"Q1"},
	})
	id, _ := created["id"].(string)

	status, _ := env.do(t, http.MethodPost, "/api/interviews/answer", token, map[string]string{
		"interviewId": id, "question": "Q1", "answerText": "x",
	})
	if status != http.StatusBadGateway {
		t.Fatalf("gateway failure = %d, want 502", status)
	}
}

func TestAnalyticsEnvelope(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{})
	env.register(t, "Ada", "ada@example.com")
	token := env.login(t, "ada@example.com")

	status, body := env.do(t, http.MethodGet, "/api/analytics/overview", token, nil)
	if status != http.StatusOK {
		t.Fatalf("overview = %d", status)
	}
	if body["success"] != true {
		t.Errorf("missing success envelope: %v", body)
	}
	data, _ := body["data"].(map[string]any)
	if data["totalAttempts"] != float64(0) {
		t.Errorf("empty overview data = %v", data)
	}

	status, _ = env.do(t, http.MethodGet, "/api/analytics/scores-trend?limit=abc", token, nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad limit = %d", status)
	}

	// per-interview analytics views 404 on empty history
	status, _ = env.do(t, http.MethodGet, "/api/interviews/analytics/scores-over-time", token, nil)
	if status != http.StatusNotFound {
		t.Errorf("empty scores-over-time = %d", status)
	}
	status, _ = env.do(t, http.MethodGet, "/api/interviews/analytics/dashboard", token, nil)
	if status != http.StatusNotFound {
		t.Errorf("empty dashboard chart = %d", status)
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{})
	env.register(t, "Root", "root@example.com")
	env.register(t, "Ada", "ada@example.com")
	env.promoteToAdmin(t, "root@example.com")
	admin := env.login(t, "root@example.com")
	user := env.login(t, "ada@example.com")

	if status, _ := env.do(t, http.MethodGet, "/api/admin/users", user, nil); status != http.StatusForbidden {
		t.Errorf("admin list as user = %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/admin/users", "", nil); status != http.StatusUnauthorized {
		t.Errorf("admin list unauthenticated = %d", status)
	}

	status, _ := env.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("admin list = %d", status)
	}

	// create some activity for ada, then inspect and delete her
	_, created := env.do(t, http.MethodPost, "/api/interviews", user, map[string]any{
		"role": "Backend", "level": "medium", "questions": []string{"Q1"},
	})
	if created["id"] == nil {
		t.Fatal("interview not created")
	}

	adaUser, ok, _ := env.memStore.GetUserByEmail("ada@example.com")
	if !ok {
		t.Fatal("ada missing")
	}
	status, detail := env.do(t, http.MethodGet, "/api/admin/users/"+adaUser.ID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("user detail = %d", status)
	}
	stats, _ := detail["stats"].(map[string]any)
	if stats["totalInterviews"] != float64(1) {
		t.Errorf("detail stats = %v", stats)
	}

	status, adminStats := env.do(t, http.MethodGet, "/api/admin/stats", admin, nil)
	if status != http.StatusOK || adminStats["totalUsers"] != float64(2) || adminStats["totalInterviews"] != float64(1) {
		t.Errorf("admin stats = %d %v", status, adminStats)
	}

	status, _ = env.do(t, http.MethodDelete, "/api/admin/users/"+adaUser.ID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("delete user = %d", status)
	}
	status, _ = env.do(t, http.MethodGet, "/api/admin/users/"+adaUser.ID, admin, nil)
	if status != http.StatusNotFound {
		t.Errorf("detail after delete = %d", status)
	}

	status, interviews := env.do(t, http.MethodGet, "/api/admin/interviews", admin, nil)
	_ = interviews
	if status != http.StatusOK {
		t.Errorf("admin interviews = %d", status)
	}
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, stubAppEvaluator{}, Config{LoginRateLimitPerMinute: 1})
	env.register(t, "Ada", "ada@example.com")

	status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	if status != http.StatusOK {
		t.Fatalf("first login = %d", status)
	}
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	if status != http.StatusTooManyRequests {
		t.Fatalf("second login = %d, want 429", status)
	}
}
