package api

import "time"

// Wire shapes for the narrative backend's JSON API. Payloads are parsed at
// this boundary; the store and controller only ever see typed values.

// TokenResponse is returned by the auth endpoints.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// User describes the authenticated account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Story is a playable world definition.
type Story struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	Tags        []string  `json:"tags"`
	PlayCount   int       `json:"play_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoryList is a paginated story listing.
type StoryList struct {
	Stories  []Story `json:"stories"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// CreateStoryRequest is the body for story creation.
type CreateStoryRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags,omitempty"`
}

// Character is a playable or non-player character within a story.
type Character struct {
	ID      string `json:"id"`
	StoryID string `json:"story_id"`
	Name    string `json:"name"`
	Kind    string `json:"character_type"`
	Summary string `json:"description"`
}

// CharacterList is a paginated character listing.
type CharacterList struct {
	Characters []Character `json:"characters"`
	Total      int         `json:"total"`
}

// Location is a place within a story world. Listings return the summary
// shape; the nested world-building fields stay server-side.
type Location struct {
	ID       string `json:"id"`
	StoryID  string `json:"story_id"`
	Name     string `json:"name"`
	Summary  string `json:"description"`
	Kind     string `json:"location_type"`
	ParentID string `json:"parent_id"`
	Visible  bool   `json:"is_visible"`
}

// LocationList is a location listing for one story.
type LocationList struct {
	Locations []Location `json:"locations"`
	Total     int        `json:"total"`
	StoryID   string     `json:"story_id"`
}

// SessionSummary is one row of a session listing.
type SessionSummary struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	TurnCount int       `json:"turn_count"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionList is a paginated session listing.
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ListSessionsFilter narrows a session listing.
type ListSessionsFilter struct {
	StoryID string
	Status  string
	Page    int
}

// CreateSessionRequest is the body for session creation.
type CreateSessionRequest struct {
	StoryID     string `json:"story_id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public"`
}

// sessionResponse is the backend's full session shape. Only the fields the
// client consumes are decoded.
type sessionResponse struct {
	ID        string `json:"id"`
	StoryID   string `json:"story_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	TurnCount int    `json:"turn_count"`
}

// wireEvent is one transcript event as the backend serializes it.
type wireEvent struct {
	ID            string    `json:"id"`
	EventType     string    `json:"event_type"`
	Content       string    `json:"content"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	CreatedAt     time.Time `json:"created_at"`
}

// eventsPage is one page of the event history.
type eventsPage struct {
	Events   []wireEvent `json:"events"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// actionRequest is the body for a turn submission.
type actionRequest struct {
	Action string `json:"action"`
}

// actionResponse is the backend's answer to a turn submission. The
// narrative may be empty when the engine accepted the action without
// producing narration.
type actionResponse struct {
	Success   bool   `json:"success"`
	Narrative string `json:"narrative"`
}

// apiError is the backend's error body.
type apiError struct {
	Detail string `json:"detail"`
}
