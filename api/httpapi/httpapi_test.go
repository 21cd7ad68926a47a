package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mem "learnkit/adapters/memory"
	"learnkit/catalog"
	"learnkit/core"
	"learnkit/engine"
	"learnkit/realtime"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	cat := catalog.Sample()
	svc := engine.NewProgressService(mem.New(), cat, engine.NewEventBus(engine.DispatchSync))
	t.Cleanup(func() { svc.Close() })
	srv := httptest.NewServer(NewMux(svc, cat, realtime.NewHub(), opts))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCompleteStageEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Post(srv.URL+"/users/alice/stages/read?course=go_basics&lesson=hello", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var res engine.ProgressResult
	decodeBody(t, resp, &res)
	if res.EarnedXP != 20 {
		t.Errorf("EarnedXP = %d, want 20 (catalog reward)", res.EarnedXP)
	}
	if res.User.Streak != 1 {
		t.Errorf("Streak = %d, want 1", res.User.Streak)
	}
}

func TestCompleteStageExplicitXP(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Post(srv.URL+"/users/alice/stages/practice?course=go_basics&lesson=hello&xp=75", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var res engine.ProgressResult
	decodeBody(t, resp, &res)
	if res.EarnedXP != 75 {
		t.Errorf("EarnedXP = %d, want 75", res.EarnedXP)
	}
}

func TestCompleteLessonEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Post(srv.URL+"/users/bob/lessons/complete?course=go_basics&lesson=hello&xp=100&score=95", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var res engine.ProgressResult
	decodeBody(t, resp, &res)
	if res.EarnedXP != 120 {
		t.Errorf("EarnedXP = %d, want 120 (20%% bonus)", res.EarnedXP)
	}
	if len(res.NewAchievements) == 0 {
		t.Error("expected first-lesson achievement")
	}
}

func TestGetProgress(t *testing.T) {
	srv := newTestServer(t, Options{})

	if _, err := http.Post(srv.URL+"/users/alice/stages/read?course=go_basics&lesson=hello", "", nil); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/users/alice")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var p core.UserProgress
	decodeBody(t, resp, &p)
	if p.XP != 20 || p.Level != 1 {
		t.Errorf("progress = xp %d level %d, want xp 20 level 1", p.XP, p.Level)
	}
}

func TestGetProgressUnknownUser(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/users/ghost")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t, Options{})

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"unknown course", "/users/alice/stages/read?course=nope&lesson=hello", http.StatusNotFound},
		{"bad stage", "/users/alice/stages/bogus?course=go_basics&lesson=hello", http.StatusBadRequest},
		{"negative xp", "/users/alice/stages/read?course=go_basics&lesson=hello&xp=-5", http.StatusBadRequest},
		{"non-numeric xp", "/users/alice/stages/read?course=go_basics&lesson=hello&xp=abc", http.StatusBadRequest},
		{"bad lesson id", "/users/alice/stages/read?course=go_basics&lesson=a-b", http.StatusBadRequest},
		{"score out of range", "/users/alice/lessons/complete?course=go_basics&lesson=hello&score=101", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, err := http.Post(srv.URL+tc.url, "", nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.want)
		}
	}
}

func TestQuizScoreEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})

	body := strings.NewReader(`{"answers":[0,1]}`)
	resp, err := http.Post(srv.URL+"/quizzes/score?course=go_basics&lesson=hello", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var res core.QuizResult
	decodeBody(t, resp, &res)
	if res.Score != 100 || !res.Passed {
		t.Errorf("result = score %d passed %v, want 100 true", res.Score, res.Passed)
	}
}

func TestCoursesEndpoints(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/courses")
	if err != nil {
		t.Fatal(err)
	}
	var courses []catalog.Course
	decodeBody(t, resp, &courses)
	if len(courses) != 1 || courses[0].ID != "go_basics" {
		t.Fatalf("courses = %+v, want single go_basics", courses)
	}

	resp, err = http.Get(srv.URL + "/courses/go_basics")
	if err != nil {
		t.Fatal(err)
	}
	var course catalog.Course
	decodeBody(t, resp, &course)
	if len(course.Lessons) != 3 {
		t.Errorf("lessons = %d, want 3", len(course.Lessons))
	}

	resp, err = http.Get(srv.URL + "/courses/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown course status = %d, want 404", resp.StatusCode)
	}
}

func TestAccessEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/users/newbie/access?course=go_basics")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var access []engine.LessonAccess
	decodeBody(t, resp, &access)
	if len(access) != 3 {
		t.Fatalf("access entries = %d, want 3", len(access))
	}
	if !access[0].Unlocked {
		t.Error("first lesson should be unlocked for a new user")
	}
	if access[1].Unlocked {
		t.Error("second lesson should be locked for a new user")
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var status map[string]any
	decodeBody(t, resp, &status)
	if status["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", status["status"])
	}
}

func TestPathPrefix(t *testing.T) {
	srv := newTestServer(t, Options{PathPrefix: "/api"})

	resp, err := http.Get(srv.URL + "/api/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("prefixed healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv := newTestServer(t, Options{APIKeys: []string{"secret1"}})

	resp, err := http.Get(srv.URL + "/courses")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no key status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/courses", nil)
	req.Header.Set("Authorization", "Bearer secret1")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bearer key status = %d, want 200", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/courses", nil)
	req.Header.Set("X-API-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong key status = %d, want 401", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitEnabled: true, RateLimitRPM: 60, RateLimitBurst: 3})

	var limited bool
	for i := 0; i < 5; i++ {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Error("expected at least one 429 after exhausting burst")
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Options{AllowCORSOrigin: "*"})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/courses", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
