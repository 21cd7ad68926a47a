package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestClient_CompleteStageGetProgressHealth(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api", WithAPIKey("k1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()

	res, err := client.CompleteStage(ctx, "alice", "go_basics", "hello", "read", 0)
	if err != nil {
		t.Fatalf("complete stage: %v", err)
	}
	if res.EarnedXP != 20 || res.User.XP != 20 {
		t.Fatalf("unexpected result: %+v", res)
	}

	progress, err := client.GetProgress(ctx, "alice")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if progress.UserID != "alice" || progress.XP != 20 {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	health, err := client.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Fatalf("health: %+v err=%v", health, err)
	}
}

func TestClient_SubmitQuiz(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	res, err := client.SubmitQuiz(context.Background(), "go_basics", "hello", []int{0, 1})
	if err != nil {
		t.Fatalf("submit quiz: %v", err)
	}
	if res.Score != 100 || !res.Passed {
		t.Fatalf("unexpected quiz result: %+v", res)
	}
}

func TestClient_GetAccess(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	access, err := client.GetAccess(context.Background(), "alice", "go_basics")
	if err != nil {
		t.Fatalf("get access: %v", err)
	}
	if len(access) != 2 || !access[0].Unlocked || access[1].Unlocked {
		t.Fatalf("unexpected access: %+v", access)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.GetProgress(context.Background(), "ghost")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestClient_SubscribeEvents(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	events, err := client.SubscribeEvents(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Type != "stage_completed" {
			t.Fatalf("unexpected event type: %s", evt.Type)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

// test server implementing the minimal API surface expected by the SDK.
func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","checks":{"storage":"ok"}}`))
	})
	mux.HandleFunc("/api/quizzes/score", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score":100,"passed":true,"correct_count":2,"total_questions":2,"results":[]}`))
	})
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		// /api/users/{id}[/stages/{stage}|/lessons/complete|/access]
		path := r.URL.Path[len("/api/users/"):]
		parts := strings.Split(path, "/")
		if len(parts) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		userID := parts[0]
		if userID == "ghost" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","message":"progress for ghost not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if len(parts) == 1 && r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"user_id":"` + userID + `","xp":20,"level":1,"streak":1,"completed_lessons":{},"stage_progress":{},"achievements":{}}`))
			return
		}
		if len(parts) >= 2 && parts[1] == "stages" && r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"user":{"user_id":"` + userID + `","xp":20,"level":1,"streak":1},"earned_xp":20,"leveled_up":false,"new_level":null,"new_achievements":[],"all_stages_complete":false}`))
			return
		}
		if len(parts) >= 2 && parts[1] == "access" && r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"lesson":"go_basics-hello","title":"Hello","unlocked":true,"completed":false},{"lesson":"go_basics-types","title":"Types","unlocked":false,"completed":false}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	upgrader := websocket.Upgrader{}
	mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(Event{ID: "1", Type: "stage_completed", UserID: "alice", Lesson: "go_basics-hello", Stage: "read", XP: 20, TotalXP: 20})
		time.Sleep(200 * time.Millisecond)
	})

	return httptest.NewServer(mux)
}
