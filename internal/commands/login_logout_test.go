package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
)

const oauthClientJSON = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

// authDir returns a config directory holding the given files.
func authDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func runAuthCommand(ctx context.Context, cmd commands.Command, cfg *config.Config) (stdout, stderr string, code int) {
	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(ctx, cfg, nil, nil, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	stdout, stderr, code := runAuthCommand(context.Background(), &commands.LoginCmd{}, cfg)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	for _, want := range []string{
		"error: oauth_client.json not found in " + cfg.Dir + "\n",
		"To push tasks to Google Tasks, you need OAuth credentials:",
		"tasks.googleapis.com",
		"   " + filepath.Join(cfg.Dir, "oauth_client.json") + "\n",
		"Then run 'todo login' again.\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected stderr to contain %q, got %q", want, stderr)
		}
	}
}

func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	token := `{"access_token":"a","token_type":"Bearer","refresh_token":"r","expiry":"2999-01-01T00:00:00Z"}`
	dir := authDir(t, map[string]string{"oauth_client.json": oauthClientJSON, "token.json": token})

	tests := []struct {
		quiet  bool
		stdout string
	}{
		{false, "already logged in\n"},
		{true, ""},
	}
	for _, tt := range tests {
		stdout, stderr, code := runAuthCommand(context.Background(), &commands.LoginCmd{}, &config.Config{Dir: dir, Quiet: tt.quiet})

		if code != exitcode.Success {
			t.Errorf("quiet=%v: expected exit code %d, got %d (stderr %q)", tt.quiet, exitcode.Success, code, stderr)
		}
		if stdout != tt.stdout {
			t.Errorf("quiet=%v: expected %q, got %q", tt.quiet, tt.stdout, stdout)
		}
	}
}

// A stored token that cannot be refreshed starts a new login; the
// cancelled context ends it before any browser round trip.
func TestLoginCommand_UnusableToken(t *testing.T) {
	tests := map[string]string{
		"no refresh token": `{"access_token":"expired","token_type":"Bearer"}`,
		"expired":          `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`,
		"corrupt":          `{"access_token":`,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			dir := authDir(t, map[string]string{"oauth_client.json": oauthClientJSON, "token.json": token})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			stdout, stderr, code := runAuthCommand(ctx, &commands.LoginCmd{}, &config.Config{Dir: dir})

			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if !strings.HasPrefix(stderr, "Open this URL in your browser:\n") &&
				stderr != "error: could not bind to local port for OAuth callback\n" {
				t.Errorf("expected a new login attempt, got %q", stderr)
			}
		})
	}
}

func TestLoginCommand_InvalidOAuthClient(t *testing.T) {
	dir := authDir(t, map[string]string{"oauth_client.json": `{"web":`})

	_, stderr, code := runAuthCommand(context.Background(), &commands.LoginCmd{}, &config.Config{Dir: dir})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid oauth_client.json: ") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestLogoutCommand(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		dataFile string
		quiet    bool
		removed  bool
		stdout   string
	}{
		{
			name:    "logged in",
			files:   map[string]string{"oauth_client.json": oauthClientJSON, "token.json": `{"refresh_token":"r"}`},
			removed: true,
		},
		{
			name:     "custom data file",
			files:    map[string]string{"token.json": `{"refresh_token":"r"}`},
			dataFile: "work.yaml",
			removed:  true,
		},
		{
			name:  "logged in quiet",
			files: map[string]string{"token.json": `{"refresh_token":"r"}`},
			quiet: true,
		},
		{
			name:   "not logged in",
			stdout: "not logged in\n",
		},
		{
			name:  "not logged in quiet",
			quiet: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := authDir(t, tt.files)
			cfg := &config.Config{Dir: dir, Quiet: tt.quiet, Settings: config.Settings{DataFile: tt.dataFile}}

			stdout, stderr, code := runAuthCommand(context.Background(), &commands.LogoutCmd{}, cfg)

			if code != exitcode.Success {
				t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if stderr != "" {
				t.Errorf("expected no stderr, got %q", stderr)
			}
			want := tt.stdout
			if tt.removed {
				want = "logged out; local tasks in " + cfg.DataPath() + " are kept\n"
			}
			if stdout != want {
				t.Errorf("expected %q, got %q", want, stdout)
			}
			if _, err := os.Stat(cfg.TokenPath()); !os.IsNotExist(err) {
				t.Error("token.json should not exist after logout")
			}
			if _, ok := tt.files["oauth_client.json"]; ok {
				if _, err := os.Stat(cfg.OAuthClientPath()); err != nil {
					t.Error("oauth_client.json should be kept")
				}
			}
		})
	}
}

func TestLogoutCommand_RemoveFails(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory in place of token.json cannot be removed with os.Remove.
	if err := os.MkdirAll(filepath.Join(dir, "token.json", "x"), 0700); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Dir: dir}

	stdout, stderr, code := runAuthCommand(context.Background(), &commands.LogoutCmd{}, cfg)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: failed to remove "+cfg.TokenPath()+": ") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
