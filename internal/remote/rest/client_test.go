package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/remote"
	"taskdeck/internal/remote/rest"
)

func newClient(t *testing.T, handler http.Handler) (*rest.Client, *config.Config) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Endpoint: srv.URL, AnonKey: "anon-key", Dir: t.TempDir()}
	c, err := rest.New(cfg, nil)
	require.NoError(t, err)
	return c, cfg
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

type authRecord struct {
	event   remote.AuthEvent
	session *remote.Session
}

func recordEvents(c *rest.Client) *[]authRecord {
	var events []authRecord
	c.OnSessionChange(func(event remote.AuthEvent, session *remote.Session) {
		events = append(events, authRecord{event, session})
	})
	return &events
}

func TestNewRequiresBackendSettings(t *testing.T) {
	_, err := rest.New(&config.Config{Dir: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestSignInPersistsSessionAndNotifies(t *testing.T) {
	var gotGrant string
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		gotGrant = r.URL.Query().Get("grant_type")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "me@example.com", body["email"])
		assert.Equal(t, "hunter2", body["password"])

		writeJSON(t, w, map[string]any{
			"access_token":  "token-1",
			"token_type":    "bearer",
			"expires_in":    3600,
			"refresh_token": "refresh-1",
			"user":          map[string]string{"id": "user-1", "email": "me@example.com"},
		})
	}))
	events := recordEvents(c)

	s, err := c.SignIn(context.Background(), "me@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "password", gotGrant)
	assert.Equal(t, "user-1", s.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)

	require.Len(t, *events, 1)
	assert.Equal(t, remote.SignedIn, (*events)[0].event)

	stored, err := cfg.ReadSession()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "token-1", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
	assert.Equal(t, "user-1", stored.User.ID)
}

func TestSignInAuthFailure(t *testing.T) {
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(t, w, map[string]string{"error_description": "invalid credentials"})
	}))

	_, err := c.SignIn(context.Background(), "me@example.com", "wrong")
	assert.ErrorIs(t, err, remote.ErrAuth)
	assert.ErrorContains(t, err, "invalid credentials")
	assert.False(t, cfg.HasSession())
}

func TestSignUpForwardsRedirect(t *testing.T) {
	var gotRedirect string
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/signup", r.URL.Path)
		gotRedirect = r.URL.Query().Get("redirect_to")
		writeJSON(t, w, map[string]any{"id": "user-2"})
	}))

	require.NoError(t, c.SignUp(context.Background(), "new@example.com", "hunter2", "https://app.example.com/welcome"))
	assert.Equal(t, "https://app.example.com/welcome", gotRedirect)
}

func TestSignOutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(t, w, map[string]any{
			"access_token": "token-1",
			"expires_in":   3600,
			"user":         map[string]string{"id": "user-1"},
		})
	}))
	events := recordEvents(c)

	_, err := c.SignIn(context.Background(), "me@example.com", "hunter2")
	require.NoError(t, err)
	require.True(t, cfg.HasSession())

	// The failed remote invalidation is reported, but the local session
	// is gone regardless.
	err = c.SignOut(context.Background())
	assert.ErrorIs(t, err, remote.ErrUnavailable)
	assert.False(t, cfg.HasSession())
	require.Len(t, *events, 2)
	assert.Equal(t, remote.SignedOut, (*events)[1].event)
	assert.Nil(t, (*events)[1].session)
}

func TestSignOutIgnoresDeadServerSession(t *testing.T) {
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(t, w, map[string]string{"msg": "invalid token"})
			return
		}
		writeJSON(t, w, map[string]any{
			"access_token": "token-1",
			"expires_in":   3600,
			"user":         map[string]string{"id": "user-1"},
		})
	}))

	_, err := c.SignIn(context.Background(), "me@example.com", "hunter2")
	require.NoError(t, err)

	assert.NoError(t, c.SignOut(context.Background()),
		"a session already dead server-side is a successful sign-out")
	assert.False(t, cfg.HasSession())
}

func TestGetSessionLoadsFromDisk(t *testing.T) {
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	require.NoError(t, cfg.WriteSession(&config.StoredSession{
		Token: oauth2.Token{AccessToken: "token-1", Expiry: time.Now().Add(time.Hour)},
		User:  remote.User{ID: "user-1", Email: "me@example.com"},
	}))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "user-1", s.User.ID)
}

func TestGetSessionRecoversUserFromClaims(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "me@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	// Older session files carry no user record.
	require.NoError(t, cfg.WriteSession(&config.StoredSession{
		Token: oauth2.Token{AccessToken: signed, Expiry: time.Now().Add(time.Hour)},
	}))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "user-1", s.User.ID)
	assert.Equal(t, "me@example.com", s.User.Email)
}

func TestGetSessionMissingIsNil(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestGetSessionRefreshesExpired(t *testing.T) {
	var gotGrant, gotRefresh string
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		gotGrant = r.URL.Query().Get("grant_type")
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRefresh = body["refresh_token"]
		writeJSON(t, w, map[string]any{
			"access_token":  "token-2",
			"expires_in":    3600,
			"refresh_token": "refresh-2",
		})
	}))
	events := recordEvents(c)
	require.NoError(t, cfg.WriteSession(&config.StoredSession{
		Token: oauth2.Token{
			AccessToken:  "token-1",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(-time.Hour),
		},
		User: remote.User{ID: "user-1"},
	}))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "refresh-1", gotRefresh)
	assert.Equal(t, "user-1", s.User.ID, "user carried over when the grant omits it")

	stored, err := cfg.ReadSession()
	require.NoError(t, err)
	assert.Equal(t, "token-2", stored.AccessToken)
	assert.Equal(t, "refresh-2", stored.RefreshToken)

	require.Len(t, *events, 1)
	assert.Equal(t, remote.SignedIn, (*events)[0].event)
}

func TestGetSessionExpiredWithoutRefreshToken(t *testing.T) {
	c, cfg := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	require.NoError(t, cfg.WriteSession(&config.StoredSession{
		Token: oauth2.Token{AccessToken: "token-1", Expiry: time.Now().Add(-time.Hour)},
		User:  remote.User{ID: "user-1"},
	}))

	_, err := c.GetSession(context.Background())
	assert.ErrorIs(t, err, remote.ErrAuth)
}

func TestListTasksQuery(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/rest/v1/tasks", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "eq.user-1", q.Get("owner"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"),
			"anon key bearer before sign-in")

		due := "2024-06-01"
		writeJSON(t, w, []map[string]any{
			{"id": "t1", "owner": "user-1", "title": "a", "due_date": due, "tags": []string{"x"}},
			{"id": "t2", "owner": "user-1", "title": "b", "list": "Work", "completed": true},
		})
	}))

	tasks, err := c.ListTasks(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, remote.Date("2024-06-01"), tasks[0].Due)
	assert.Equal(t, []string{"x"}, tasks[0].Tags)
	assert.Equal(t, "Work", tasks[1].List)
	assert.True(t, tasks[1].Completed)
	assert.False(t, tasks[1].HasDue())
}

func TestInsertTaskReturnsServerRow(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var row map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "buy milk", row["title"])
		assert.Equal(t, "2024-06-01", row["due_date"])

		row["id"] = "t1"
		row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		writeJSON(t, w, []map[string]any{row})
	}))

	created, err := c.InsertTask(context.Background(), remote.Task{
		Owner: "user-1",
		Title: "buy milk",
		Due:   "2024-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestUpdateTaskSendsOnlySetFields(t *testing.T) {
	var patch map[string]any
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.t1", r.URL.Query().Get("id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		w.WriteHeader(http.StatusNoContent)
	}))

	completed := true
	err := c.UpdateTask(context.Background(), "t1", remote.TaskFields{Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"completed": true}, patch)
}

func TestReassignTasksBulkPatch(t *testing.T) {
	var patch map[string]any
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "eq.user-1", q.Get("owner"))
		assert.Equal(t, "eq.Work", q.Get("list"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.ReassignTasks(context.Background(), "user-1", "Work", "Personal"))
	assert.Equal(t, map[string]any{"list": "Personal"}, patch)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, remote.ErrAuth},
		{http.StatusForbidden, remote.ErrAuth},
		{http.StatusNotFound, remote.ErrNotFound},
		{http.StatusConflict, remote.ErrConflict},
		{http.StatusInternalServerError, remote.ErrUnavailable},
	}
	for _, tc := range cases {
		status := tc.status
		c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			writeJSON(t, w, map[string]string{"message": "nope"})
		}))
		err := c.DeleteTask(context.Background(), "t1")
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}
