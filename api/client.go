package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charly05tr/devconnect/models"
)

// Client talks to the DevConnect REST backend. All methods return a
// *NetworkError when the request could not be performed and a *ServerError
// on a non-OK status.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// DebugSession probes the identity-check endpoint.
func (c *Client) DebugSession(ctx context.Context) (models.Session, error) {
	var session models.Session
	err := c.do(ctx, http.MethodGet, "/users/debug", nil, &session)
	return session, err
}

// BootstrapSession resolves the startup session exactly once. Any failure,
// network or server, yields an unauthenticated session. No retry.
func (c *Client) BootstrapSession(ctx context.Context) models.Session {
	session, err := c.DebugSession(ctx)
	if err != nil {
		return models.Session{Authenticated: false}
	}
	return session
}

func (c *Client) Login(ctx context.Context, username, password string) (models.Session, error) {
	body := map[string]string{"username": username, "password": password}
	var session models.Session
	err := c.do(ctx, http.MethodPost, "/users/login", body, &session)
	return session, err
}

func (c *Client) Register(ctx context.Context, username, password string) (models.Session, error) {
	body := map[string]string{"username": username, "password": password}
	var session models.Session
	err := c.do(ctx, http.MethodPost, "/users/register", body, &session)
	return session, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/users/logout", nil, nil)
}

func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := c.do(ctx, http.MethodGet, "/messages/conversations", nil, &conversations)
	return conversations, err
}

// CreateConversation starts a direct conversation (name empty, one
// participant) or a group (named, two or more participants).
func (c *Client) CreateConversation(ctx context.Context, name string, participantIDs []int64) (models.Conversation, error) {
	body := struct {
		Name           *string `json:"name"`
		ParticipantIDs []int64 `json:"participant_ids"`
	}{ParticipantIDs: participantIDs}
	if name != "" {
		body.Name = &name
	}
	var conversation models.Conversation
	err := c.do(ctx, http.MethodPost, "/messages/conversations", body, &conversation)
	return conversation, err
}

// MessagesPage is one backward-pageable slice of a conversation's history.
type MessagesPage struct {
	Messages   []models.Message  `json:"messages"`
	Pagination models.Pagination `json:"pagination"`
}

func (c *Client) ListMessages(ctx context.Context, conversationID int64, page, perPage int) (MessagesPage, error) {
	path := fmt.Sprintf("/messages/conversations/%d/messages?page=%d&per_page=%d", conversationID, page, perPage)
	var result MessagesPage
	err := c.do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// SendMessage posts a message. Delivery to the sender's own view happens via
// the realtime channel echo, not this response.
func (c *Client) SendMessage(ctx context.Context, conversationID int64, content string) (models.Message, error) {
	body := map[string]string{"content": content}
	var message models.Message
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/messages/conversations/%d/messages", conversationID), body, &message)
	return message, err
}

func (c *Client) AddParticipant(ctx context.Context, conversationID, userID int64) (models.Participant, error) {
	body := map[string]int64{"user_id": userID}
	var participant models.Participant
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/messages/conversations/%d/participants", conversationID), body, &participant)
	return participant, err
}

// LeaveConversation removes the current user from the conversation.
func (c *Client) LeaveConversation(ctx context.Context, conversationID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/conversations/%d/participants/me", conversationID), nil, nil)
}

func (c *Client) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/users/search?term="+url.QueryEscape(term), nil, &users)
	return users, err
}

func (c *Client) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/profile/%d", userID), nil, &profile)
	return profile, err
}

func (c *Client) UpdateProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	var updated models.Profile
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/profile/%d", profile.UserID), profile, &updated)
	return updated, err
}

// MatchFeed returns candidate profiles for swiping.
func (c *Client) MatchFeed(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := c.do(ctx, http.MethodGet, "/matches/feed", nil, &profiles)
	return profiles, err
}

// SwipeResult reports whether a like produced a mutual match.
type SwipeResult struct {
	Matched bool          `json:"matched"`
	Match   *models.Match `json:"match,omitempty"`
}

func (c *Client) Swipe(ctx context.Context, targetUserID int64, liked bool) (SwipeResult, error) {
	body := struct {
		TargetUserID int64 `json:"target_user_id"`
		Liked        bool  `json:"liked"`
	}{targetUserID, liked}
	var result SwipeResult
	err := c.do(ctx, http.MethodPost, "/matches/swipe", body, &result)
	return result, err
}

func (c *Client) ListMatches(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	err := c.do(ctx, http.MethodGet, "/matches", nil, &matches)
	return matches, err
}

func (c *Client) UserProjects(ctx context.Context, userID int64) ([]models.Project, error) {
	var projects []models.Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/user_projects/%d", userID), nil, &projects)
	return projects, err
}

func (c *Client) UpdateUserProjects(ctx context.Context, userID int64, projects []models.Project) ([]models.Project, error) {
	var updated []models.Project
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/user_projects/%d", userID), projects, &updated)
	return updated, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Status: resp.StatusCode, Message: extractErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServerError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// extractErrorMessage pulls the error string from a JSON error body,
// accepting both {"error": ...} and {"message": ...} shapes.
func extractErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
