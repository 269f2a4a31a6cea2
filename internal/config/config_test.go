package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/remote"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("TASKDECK_URL", "https://backend.example.com")
	t.Setenv("TASKDECK_ANON_KEY", "anon-key")

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://backend.example.com", cfg.Endpoint)
	assert.Equal(t, "anon-key", cfg.AnonKey)
	assert.NoError(t, cfg.ValidateBackend())
}

func TestNewDefaultsToXDGDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	cfg, err := config.New("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", config.AppName), cfg.Dir)
}

func TestValidateBackendMissingSettings(t *testing.T) {
	cfg := &config.Config{}
	assert.ErrorContains(t, cfg.ValidateBackend(), "TASKDECK_URL")

	cfg.Endpoint = "https://backend.example.com"
	assert.ErrorContains(t, cfg.ValidateBackend(), "TASKDECK_ANON_KEY")
}

func TestSessionRoundTrip(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	assert.False(t, cfg.HasSession())

	s, err := cfg.ReadSession()
	require.NoError(t, err)
	assert.Nil(t, s, "missing session is not an error")

	stored := &config.StoredSession{
		Token: oauth2.Token{
			AccessToken:  "token-1",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
		},
		User: remote.User{ID: "user-1", Email: "me@example.com"},
	}
	require.NoError(t, cfg.WriteSession(stored))
	assert.True(t, cfg.HasSession())

	info, err := os.Stat(cfg.SessionPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := cfg.ReadSession()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored.AccessToken, got.AccessToken)
	assert.Equal(t, stored.RefreshToken, got.RefreshToken)
	assert.Equal(t, stored.User, got.User)
	assert.True(t, got.Valid())

	require.NoError(t, cfg.RemoveSession())
	assert.False(t, cfg.HasSession())
}

func TestReadSessionRejectsGarbage(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	require.NoError(t, os.WriteFile(cfg.SessionPath(), []byte("not json"), 0600))

	_, err := cfg.ReadSession()
	assert.Error(t, err)
}
