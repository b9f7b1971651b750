package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestDebugSessionAuthenticated(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/debug" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": true, "user_id": 7})
	}))
	defer srv.Close()

	session, err := client.DebugSession(context.Background())
	if err != nil {
		t.Fatalf("DebugSession failed: %s", err)
	}
	if !session.Authenticated || session.UserID != 7 {
		t.Errorf("Expected authenticated user 7, got %+v", session)
	}
}

func TestBootstrapSessionFailureIsUnauthenticated(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no session"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	if session := client.BootstrapSession(context.Background()); session.Authenticated {
		t.Error("Expected an unauthenticated session on server failure")
	}

	srv.Close()
	if session := client.BootstrapSession(context.Background()); session.Authenticated {
		t.Error("Expected an unauthenticated session on network failure")
	}
}

func TestListMessagesQuery(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages/conversations/5/messages" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("page") != "3" || query.Get("per_page") != "100" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []interface{}{},
			"pagination": map[string]interface{}{
				"total_items":  250,
				"total_pages":  3,
				"current_page": 3,
				"per_page":     100,
				"has_prev":     true,
				"prev_page":    2,
			},
		})
	}))
	defer srv.Close()

	page, err := client.ListMessages(context.Background(), 5, 3, 100)
	if err != nil {
		t.Fatalf("ListMessages failed: %s", err)
	}
	if page.Pagination.CurrentPage != 3 || page.Pagination.PrevPage == nil || *page.Pagination.PrevPage != 2 {
		t.Errorf("Unexpected cursor %+v", page.Pagination)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"not a participant"}`))
	}))
	defer srv.Close()

	_, err := client.ListConversations(context.Background())
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("Expected *ServerError, got %T", err)
	}
	if serverErr.Status != http.StatusForbidden || serverErr.Message != "not a participant" {
		t.Errorf("Unexpected error %+v", serverErr)
	}
}

func TestNetworkErrorOnDeadServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL, time.Second)
	srv.Close()

	_, err := client.ListConversations(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %T", err)
	}
}

func TestSendMessageBody(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Unexpected method %s", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["content"] != "hello" {
			t.Errorf("Unexpected body %v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 9, "conversation_id": 5, "content": "hello"})
	}))
	defer srv.Close()

	message, err := client.SendMessage(context.Background(), 5, "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %s", err)
	}
	if message.ID != 9 || message.Content != "hello" {
		t.Errorf("Unexpected message %+v", message)
	}
}

func TestCreateConversationOmitsEmptyName(t *testing.T) {
	var received struct {
		Name           *string `json:"name"`
		ParticipantIDs []int64 `json:"participant_ids"`
	}
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 3})
	}))
	defer srv.Close()

	if _, err := client.CreateConversation(context.Background(), "", []int64{20}); err != nil {
		t.Fatalf("CreateConversation failed: %s", err)
	}
	if received.Name != nil {
		t.Errorf("Expected a null name for a direct conversation, got %q", *received.Name)
	}
	if len(received.ParticipantIDs) != 1 || received.ParticipantIDs[0] != 20 {
		t.Errorf("Unexpected participants %v", received.ParticipantIDs)
	}

	if _, err := client.CreateConversation(context.Background(), "gophers", []int64{20, 21}); err != nil {
		t.Fatalf("CreateConversation failed: %s", err)
	}
	if received.Name == nil || *received.Name != "gophers" {
		t.Error("Expected the group name to be carried")
	}
}

func TestLeaveConversationRoute(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/messages/conversations/5/participants/me" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := client.LeaveConversation(context.Background(), 5); err != nil {
		t.Fatalf("LeaveConversation failed: %s", err)
	}
}

func TestSessionCookiePersists(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
			json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": true, "user_id": 7})
		case "/users/debug":
			if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "abc" {
				t.Error("Expected the session cookie on subsequent requests")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": true, "user_id": 7})
		}
	}))
	defer srv.Close()

	if _, err := client.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login failed: %s", err)
	}
	if _, err := client.DebugSession(context.Background()); err != nil {
		t.Fatalf("DebugSession failed: %s", err)
	}
}
