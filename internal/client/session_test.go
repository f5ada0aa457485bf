package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/client"
	"github.com/sakif/pinboard/internal/model"
)

func TestSession_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := client.LoadSession(path)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Set("tok-123", &model.User{ID: "u1", Username: "alice"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := client.LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", reloaded.Token())
	assert.Equal(t, "alice", reloaded.User().Username)

	require.NoError(t, reloaded.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, reloaded.Clear(), "clearing twice is fine")
}

func TestSession_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := client.LoadSession(path)
	assert.Error(t, err)
}

func TestSession_UserIsACopy(t *testing.T) {
	s := client.NewSession()
	require.NoError(t, s.Set("t", &model.User{Username: "alice"}))

	u := s.User()
	u.Username = "mallory"
	assert.Equal(t, "alice", s.User().Username)
}
