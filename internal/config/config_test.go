package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test, matching the
// behavior of testing.T.Chdir, which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "movieDB", cfg.Mongo.Database)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Storage.Bucket)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MYFLIX_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("MYFLIX_AUTH_JWTSECRET", "supersecret")
	t.Setenv("MYFLIX_AUTH_TOKENTTL", "24h")
	t.Setenv("MYFLIX_STORAGE_BUCKET", "posters")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "supersecret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "posters", cfg.Storage.Bucket)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	dotenv := "# comment\nMYFLIX_MONGO_DATABASE=filmDB\nMYFLIX_AUTH_JWTSECRET=\"from-dotenv\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))

	t.Setenv("MYFLIX_MONGO_DATABASE", "")
	require.NoError(t, os.Unsetenv("MYFLIX_MONGO_DATABASE"))
	t.Setenv("MYFLIX_AUTH_JWTSECRET", "")
	require.NoError(t, os.Unsetenv("MYFLIX_AUTH_JWTSECRET"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "filmDB", cfg.Mongo.Database)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestDotEnvDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MYFLIX_MONGO_DATABASE=filmDB\n"), 0o600))
	t.Setenv("MYFLIX_MONGO_DATABASE", "realDB")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "realDB", cfg.Mongo.Database)
}
