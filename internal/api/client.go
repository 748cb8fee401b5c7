// Package api is the typed HTTP client for the narrative backend. It
// implements the session transport consumed by the play loop plus the CRUD
// surface (auth, stories, characters, session listings).
//
// Every call is a single attempt with a per-call timeout; retries, credential
// clearing, and redirects are the caller's policy, not the transport's.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/emberveil/storyweave/internal/credential"
	"github.com/emberveil/storyweave/internal/platform/errors"
	"github.com/emberveil/storyweave/internal/platform/timeouts"
	"github.com/emberveil/storyweave/internal/play"
)

// eventPageSize is the page size used when draining the event history.
const eventPageSize = 100

// Client issues requests against the narrative backend, attaching the
// stored bearer credential.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials credential.Accessor
	tracer      trace.Tracer
	timeout     time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout. Turn submissions
// keep their own longer cap.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the backend at baseURL. The credential
// accessor supplies the bearer token for authenticated calls.
func NewClient(baseURL string, credentials credential.Accessor, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		credentials: credentials,
		tracer:      otel.Tracer("storyweave/api"),
		timeout:     timeouts.APIRequest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one backend call.
type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	out     any
	timeout time.Duration
	// anonymous calls skip the Authorization header (login only).
	anonymous bool
}

func (c *Client) do(ctx context.Context, req request) error {
	timeout := req.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, req.method+" "+req.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", req.path),
		),
	)
	defer span.End()

	err := c.roundTrip(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.CodeOf(err).String())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, req request, span trace.Span) error {
	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.anonymous {
		cred, ok, err := c.credentials.Get()
		if err != nil {
			return fmt.Errorf("read credential: %w", err)
		}
		if !ok {
			return errors.New(errors.CodeCredentialMissing, "no stored credential")
		}
		httpReq.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(errors.CodeTransport, "call backend", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if req.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return errors.Wrap(errors.CodeTransport, "decode response body", err)
	}
	return nil
}

// decodeError maps a non-2xx response to a domain error, carrying the
// backend's detail message when the body parses.
func decodeError(resp *http.Response) error {
	code := errors.CodeForHTTPStatus(resp.StatusCode)
	message := fmt.Sprintf("backend returned %d", resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err == nil && len(raw) > 0 {
		var detail apiError
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
			message = detail.Detail
		}
	}
	return errors.WithMetadata(code, message, map[string]string{
		"status": strconv.Itoa(resp.StatusCode),
	})
}

// --- play.Transport ---

// FetchSession returns the session handle for the play view.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (play.Session, error) {
	var resp sessionResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/sessions/" + sessionID,
		out:    &resp,
	})
	if err != nil {
		return play.Session{}, err
	}
	return play.Session{
		ID:        resp.ID,
		Title:     resp.Title,
		Status:    play.SessionStatus(resp.Status),
		TurnCount: resp.TurnCount,
	}, nil
}

// StartSession starts a waiting session. Callers treat failures as
// non-fatal; a session that is already active rejects this harmlessly.
func (c *Client) StartSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/sessions/" + sessionID + "/start",
	})
}

// FetchEvents drains the session's event history, oldest first, following
// pagination until the final short page.
func (c *Client) FetchEvents(ctx context.Context, sessionID string) ([]play.Event, error) {
	var events []play.Event
	for page := 1; ; page++ {
		var resp eventsPage
		err := c.do(ctx, request{
			method: http.MethodGet,
			path:   "/sessions/" + sessionID + "/events",
			query: url.Values{
				"page":      {strconv.Itoa(page)},
				"page_size": {strconv.Itoa(eventPageSize)},
			},
			out: &resp,
		})
		if err != nil {
			return nil, err
		}
		for _, we := range resp.Events {
			events = append(events, toPlayEvent(we))
		}
		if len(resp.Events) < eventPageSize {
			return events, nil
		}
	}
}

// SubmitAction submits one player action and returns the narrative
// continuation. The text is validated here defensively even though the
// controller checks it first.
func (c *Client) SubmitAction(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.CodeValidation, "action text is empty")
	}
	var resp actionResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/sessions/" + sessionID + "/action",
		body:    actionRequest{Action: text},
		out:     &resp,
		timeout: timeouts.SubmitAction,
	})
	if err != nil {
		return "", err
	}
	return resp.Narrative, nil
}

// EndSession ends the session.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/sessions/" + sessionID + "/end",
	})
}

// PauseSession suspends an active session.
func (c *Client) PauseSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/sessions/" + sessionID + "/pause",
	})
}

// ResumeSession reactivates a paused session.
func (c *Client) ResumeSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/sessions/" + sessionID + "/resume",
	})
}

func toPlayEvent(we wireEvent) play.Event {
	origin := play.OriginPlayer
	if we.IsAIGenerated {
		origin = play.OriginAI
	}
	return play.Event{
		ID:        we.ID,
		Kind:      play.Kind(we.EventType),
		Text:      we.Content,
		Origin:    origin,
		CreatedAt: we.CreatedAt,
	}
}

// --- auth ---

// Login exchanges credentials for a token pair. It is the only anonymous
// call in the client.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var resp TokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body: map[string]string{
			"email":    email,
			"password": password,
		},
		out:       &resp,
		anonymous: true,
	})
	return resp, err
}

// Logout invalidates the session server-side. Best-effort: callers clear
// the local credential regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/logout",
	})
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/me",
		out:    &user,
	})
	return user, err
}

// --- stories / characters / session listings ---

// ListStories returns one page of the caller's stories.
func (c *Client) ListStories(ctx context.Context, page int) (StoryList, error) {
	if page < 1 {
		page = 1
	}
	var list StoryList
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/stories",
		query:  url.Values{"page": {strconv.Itoa(page)}},
		out:    &list,
	})
	return list, err
}

// GetStory returns one story by id.
func (c *Client) GetStory(ctx context.Context, storyID string) (Story, error) {
	var story Story
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/stories/" + storyID,
		out:    &story,
	})
	return story, err
}

// CreateStory creates a story and returns the backend's record.
func (c *Client) CreateStory(ctx context.Context, req CreateStoryRequest) (Story, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Story{}, errors.New(errors.CodeValidation, "story title is required")
	}
	var story Story
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/stories",
		body:   req,
		out:    &story,
	})
	return story, err
}

// ListCharacters returns the characters of a story.
func (c *Client) ListCharacters(ctx context.Context, storyID string) (CharacterList, error) {
	var list CharacterList
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/characters",
		query:  url.Values{"story_id": {storyID}},
		out:    &list,
	})
	return list, err
}

// ListLocations returns the locations of a story, optionally narrowed to
// one location type.
func (c *Client) ListLocations(ctx context.Context, storyID, locationType string) (LocationList, error) {
	query := url.Values{"story_id": {storyID}}
	if locationType != "" {
		query.Set("location_type", locationType)
	}
	var list LocationList
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/locations",
		query:  query,
		out:    &list,
	})
	return list, err
}

// ListSessions returns one page of sessions matching the filter.
func (c *Client) ListSessions(ctx context.Context, filter ListSessionsFilter) (SessionList, error) {
	query := url.Values{}
	if filter.StoryID != "" {
		query.Set("story_id", filter.StoryID)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	var list SessionList
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/sessions",
		query:  query,
		out:    &list,
	})
	return list, err
}

// CreateSession creates a play session for a story.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (SessionSummary, error) {
	if strings.TrimSpace(req.StoryID) == "" {
		return SessionSummary{}, errors.New(errors.CodeValidation, "story id is required")
	}
	var session SessionSummary
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/sessions",
		body:   req,
		out:    &session,
	})
	return session, err
}
