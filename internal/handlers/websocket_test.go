package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blog-backend/internal/repository/memory"
	"blog-backend/internal/services"

	"github.com/gorilla/websocket"
)

func TestFeedEventStream(t *testing.T) {
	users := memory.NewUsers()
	posts := memory.NewPosts()
	images := memory.NewImages()
	auth := services.NewAuthService(users, "test-secret")
	feed := services.NewFeedService(posts, users, images)
	hub := services.NewHub()
	router := NewRouter(auth, feed, hub, t.TempDir())

	srv := httptest.NewServer(router)
	defer srv.Close()

	token, _ := signupAndLogin(t, router, "a@x.com", "A", "pass1")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the hub to register the connection.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rr := doMultipart(t, router, "POST", "/feed/post", map[string]string{
		"title": "Title", "content": "Content body",
	}, "image", "f.png", token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create post: %d %s", rr.Code, rr.Body.String())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}

	var event services.FeedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Channel != "posts" || event.Action != services.FeedActionCreate {
		t.Fatalf("event = %+v, want posts/create", event)
	}
	if event.Post == nil || event.Post.Title != "Title" {
		t.Fatalf("event post = %+v, want the created post", event.Post)
	}
}

func TestFeedEventStreamRejectsBadToken(t *testing.T) {
	router := newTestServer(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial with a bad token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response = %+v, want 401", resp)
	}
}
