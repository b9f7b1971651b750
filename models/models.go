package models

import "time"

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Participant struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Sender is nil on system messages.
type Sender struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         *Sender   `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is a direct chat (no name, exactly two participants) or a
// group chat (named, two or more participants). A set deleted_at hides it
// from the list; conversations are never hard-deleted client-side.
type Conversation struct {
	ID           int64         `json:"id"`
	Name         *string       `json:"name"`
	Participants []Participant `json:"participants"`
	LastMessage  *Message      `json:"last_message,omitempty"`
	DeletedAt    *time.Time    `json:"deleted_at,omitempty"`
}

func (c *Conversation) IsGroup() bool {
	return c.Name != nil && *c.Name != ""
}

func (c *Conversation) Deleted() bool {
	return c.DeletedAt != nil
}

// DisplayName returns the group name, or the other participant's name for
// direct conversations.
func (c *Conversation) DisplayName(currentUserID int64) string {
	if c.IsGroup() {
		return *c.Name
	}
	for _, p := range c.Participants {
		if p.UserID != currentUserID {
			return p.Username
		}
	}
	return "Conversation"
}

// Pagination mirrors the backend's forward-indexed page cursor. One instance
// exists per open conversation and is reset when the selection changes.
type Pagination struct {
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
}

type Session struct {
	Authenticated bool  `json:"authenticated"`
	UserID        int64 `json:"user_id"`
}

type Profile struct {
	UserID    int64    `json:"user_id"`
	Username  string   `json:"username"`
	FullName  string   `json:"full_name"`
	Bio       string   `json:"bio"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	GithubURL string   `json:"github_url,omitempty"`
}

// Project is a linked GitHub repository shown on a profile.
type Project struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RepoURL     string `json:"repo_url"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars"`
}

// Match is a mutual like between two users.
type Match struct {
	ID        int64     `json:"id"`
	Profile   Profile   `json:"profile"`
	MatchedAt time.Time `json:"matched_at"`
}
