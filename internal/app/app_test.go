package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/mockapi"
	"github.com/VolkanCARBUGA/VintedClone/internal/session"
)

// testOptions isolates every file the app touches inside a temp dir and
// points it at srv.
func testOptions(t *testing.T, apiURL string) Options {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VINTED_SESSION_FILE", filepath.Join(dir, "session.toml"))
	t.Setenv("VINTED_LOG_FILE", filepath.Join(dir, "vinted.log"))
	t.Setenv("VINTED_API_URL", "")
	return Options{
		ConfigPath: filepath.Join(dir, "config.toml"),
		PrefsPath:  filepath.Join(dir, "prefs.toml"),
		APIURL:     apiURL,
	}
}

func newAPI(t *testing.T) (*mockapi.Server, string) {
	t.Helper()
	srv := mockapi.New()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts.URL + "/api"
}

func TestOpen_AppliesOverrides(t *testing.T) {
	opts := testOptions(t, "http://example.test/api")
	opts.LogLevel = "debug"

	env, err := Open(opts)
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, "http://example.test/api", env.Config.APIURL)
	assert.Equal(t, "debug", env.Config.LogLevel)
	assert.FileExists(t, env.Config.LogFile)
	_, ok := env.Session.Current()
	assert.False(t, ok)
}

func TestLogin_PersistsSessionAcrossRuns(t *testing.T) {
	srv, url := newAPI(t)
	srv.SeedUser("bea", "bea@example.com", "secret1")
	opts := testOptions(t, url)
	ctx := context.Background()

	s, err := Login(ctx, opts, "bea@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bea", s.User.Username)

	who, profile, err := WhoAmI(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, s.Token, who.Token)
	require.NotNil(t, profile)
	assert.Equal(t, "bea", profile.Username)

	require.NoError(t, Logout(opts))
	_, _, err = WhoAmI(ctx, opts)
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, url := newAPI(t)
	srv.SeedUser("bea", "bea@example.com", "secret1")
	opts := testOptions(t, url)

	_, err := Login(context.Background(), opts, "bea@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, market.IsUnauthorized(err))

	_, _, err = WhoAmI(context.Background(), opts)
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
}

func TestRegister_SignsIn(t *testing.T) {
	_, url := newAPI(t)
	opts := testOptions(t, url)

	s, err := Register(context.Background(), opts, "ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	who, _, err := WhoAmI(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "ada", who.User.Username)
}

func TestForgotPassword(t *testing.T) {
	srv, url := newAPI(t)
	srv.SeedUser("bea", "bea@example.com", "secret1")
	opts := testOptions(t, url)

	require.NoError(t, ForgotPassword(context.Background(), opts, "bea@example.com"))
	assert.Error(t, ForgotPassword(context.Background(), opts, "  "))
}

func TestRun_RequiresSession(t *testing.T) {
	_, url := newAPI(t)
	err := Run(context.Background(), testOptions(t, url))
	require.ErrorIs(t, err, session.ErrNotSignedIn)
	assert.Contains(t, err.Error(), "vinted login")
}

func TestEnsureAPIAvailable(t *testing.T) {
	srv, url := newAPI(t)
	user := srv.SeedUser("bea", "bea@example.com", "secret1")
	ctx := context.Background()

	good, err := market.NewClient(url, market.WithTokenSource(staticToken(srv.IssueToken(user.ID))))
	require.NoError(t, err)
	assert.NoError(t, ensureAPIAvailable(ctx, good))

	revoked, err := market.NewClient(url, market.WithTokenSource(staticToken("revoked")))
	require.NoError(t, err)
	assert.ErrorIs(t, ensureAPIAvailable(ctx, revoked), session.ErrNotSignedIn)

	down := httptest.NewServer(mockapi.New())
	downURL := down.URL + "/api"
	down.Close()
	unreachable, err := market.NewClient(downURL)
	require.NoError(t, err)
	err = ensureAPIAvailable(ctx, unreachable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestLogPath(t *testing.T) {
	opts := testOptions(t, "")
	path, err := LogPath(opts)
	require.NoError(t, err)
	assert.Equal(t, "vinted.log", filepath.Base(path))
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
