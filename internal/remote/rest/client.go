// Package rest implements the remote.Store contract over the backend's
// HTTP API: GoTrue-style auth endpoints and PostgREST-style row endpoints.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/remote"
)

const (
	// APITimeout is the per-call deadline for backend requests.
	APITimeout = 10 * time.Second

	restPrefix = "/rest/v1"
	authPrefix = "/auth/v1"
)

// Client implements remote.Store against an HTTP backend.
type Client struct {
	base    string
	anonKey string
	http    *http.Client
	cfg     *config.Config
	log     *slog.Logger

	mu      sync.Mutex
	session *config.StoredSession
	subs    map[int]remote.SessionFunc
	nextSub int
}

// New creates a client for the configured backend. The session persisted
// in the config directory, if any, is picked up lazily by GetSession.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.ValidateBackend(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:    strings.TrimRight(cfg.Endpoint, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{},
		cfg:     cfg,
		log:     logger,
		subs:    make(map[int]remote.SessionFunc),
	}, nil
}

// OnSessionChange implements remote.Store.
func (c *Client) OnSessionChange(fn remote.SessionFunc) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// notify delivers a session-change event to all current subscribers.
func (c *Client) notify(event remote.AuthEvent, session *remote.Session) {
	c.mu.Lock()
	fns := make([]remote.SessionFunc, 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(event, session)
	}
}

// taskRow is the wire shape of a task row.
type taskRow struct {
	ID        string    `json:"id,omitempty"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	List      string    `json:"list,omitempty"`
	DueDate   *string   `json:"due_date,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (r taskRow) task() remote.Task {
	t := remote.Task{
		ID:        r.ID,
		Owner:     r.Owner,
		Title:     r.Title,
		List:      r.List,
		Tags:      r.Tags,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
	}
	if r.DueDate != nil {
		t.Due = remote.Date(*r.DueDate)
	}
	return t
}

// listRow is the wire shape of a list row.
type listRow struct {
	ID    string `json:"id,omitempty"`
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (r listRow) list() remote.List {
	return remote.List{ID: r.ID, Owner: r.Owner, Name: r.Name, Color: r.Color}
}

// ListTasks implements remote.Store.
func (c *Client) ListTasks(ctx context.Context, owner string) ([]remote.Task, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("owner", "eq."+owner)
	q.Set("order", "created_at.desc")

	var rows []taskRow
	if err := c.do(ctx, http.MethodGet, restPrefix+"/tasks", q, nil, &rows, ""); err != nil {
		return nil, err
	}
	tasks := make([]remote.Task, len(rows))
	for i, r := range rows {
		tasks[i] = r.task()
	}
	return tasks, nil
}

// InsertTask implements remote.Store. The returned task carries the
// server-assigned id and creation timestamp.
func (c *Client) InsertTask(ctx context.Context, t remote.Task) (remote.Task, error) {
	row := taskRow{
		Owner:     t.Owner,
		Title:     t.Title,
		List:      t.List,
		Tags:      t.Tags,
		Completed: t.Completed,
	}
	if t.HasDue() {
		due := string(t.Due)
		row.DueDate = &due
	}

	var rows []taskRow
	if err := c.do(ctx, http.MethodPost, restPrefix+"/tasks", nil, row, &rows, "return=representation"); err != nil {
		return remote.Task{}, err
	}
	if len(rows) == 0 {
		return remote.Task{}, fmt.Errorf("insert task: %w", remote.ErrUnavailable)
	}
	return rows[0].task(), nil
}

// UpdateTask implements remote.Store. Only the non-nil fields are sent.
func (c *Client) UpdateTask(ctx context.Context, id string, fields remote.TaskFields) error {
	patch := map[string]any{}
	if fields.Title != nil {
		patch["title"] = *fields.Title
	}
	if fields.List != nil {
		patch["list"] = *fields.List
	}
	if fields.Completed != nil {
		patch["completed"] = *fields.Completed
	}
	if fields.Due != nil {
		patch["due_date"] = string(*fields.Due)
	}
	if fields.Tags != nil {
		patch["tags"] = *fields.Tags
	}
	if len(patch) == 0 {
		return nil
	}

	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.do(ctx, http.MethodPatch, restPrefix+"/tasks", q, patch, nil, "")
}

// ReassignTasks implements remote.Store as a single bulk update.
func (c *Client) ReassignTasks(ctx context.Context, owner, from, to string) error {
	q := url.Values{}
	q.Set("owner", "eq."+owner)
	q.Set("list", "eq."+from)
	return c.do(ctx, http.MethodPatch, restPrefix+"/tasks", q, map[string]any{"list": to}, nil, "")
}

// DeleteTask implements remote.Store.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.do(ctx, http.MethodDelete, restPrefix+"/tasks", q, nil, nil, "")
}

// ListLists implements remote.Store.
func (c *Client) ListLists(ctx context.Context, owner string) ([]remote.List, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("owner", "eq."+owner)

	var rows []listRow
	if err := c.do(ctx, http.MethodGet, restPrefix+"/lists", q, nil, &rows, ""); err != nil {
		return nil, err
	}
	lists := make([]remote.List, len(rows))
	for i, r := range rows {
		lists[i] = r.list()
	}
	return lists, nil
}

// InsertList implements remote.Store.
func (c *Client) InsertList(ctx context.Context, l remote.List) (remote.List, error) {
	row := listRow{Owner: l.Owner, Name: l.Name, Color: l.Color}

	var rows []listRow
	if err := c.do(ctx, http.MethodPost, restPrefix+"/lists", nil, row, &rows, "return=representation"); err != nil {
		return remote.List{}, err
	}
	if len(rows) == 0 {
		return remote.List{}, fmt.Errorf("insert list: %w", remote.ErrUnavailable)
	}
	return rows[0].list(), nil
}

// DeleteList implements remote.Store.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.do(ctx, http.MethodDelete, restPrefix+"/lists", q, nil, nil, "")
}

// do performs one backend request with the per-call deadline and decodes
// the JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, prefer string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	c.log.Debug("backend request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// bearer returns the access token of the current session, falling back to
// the anon key when signed out.
func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

// statusError maps HTTP status codes to the contract's sentinel errors.
func statusError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	msg := readErrorMessage(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", remote.ErrAuth, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", remote.ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", remote.ErrConflict, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", remote.ErrUnavailable, resp.StatusCode, msg)
	}
}

// readErrorMessage extracts a human-readable message from an error body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no details"
	}
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Msg != "":
			return body.Msg
		case body.ErrorDescription != "":
			return body.ErrorDescription
		}
	}
	return strings.TrimSpace(string(data))
}
