package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/mockapi"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VINTED_SESSION_FILE", filepath.Join(dir, "session.toml"))
	t.Setenv("VINTED_LOG_FILE", filepath.Join(dir, "vinted.log"))
	t.Setenv("VINTED_API_URL", "")
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_HelpListsCommandsAndEnv(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "", "-h")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, want := range []string{"login", "whoami", "logs", "sell", "update-profile", "thread", "VINTED_API_URL"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("usage missing %q:\n%s", want, stderr)
		}
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "", "buy")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, `unknown command "buy"`) {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRun_LoginPromptsThenWhoAmI(t *testing.T) {
	dir := isolate(t)
	srv := mockapi.New()
	srv.SeedUser("bea", "bea@example.com", "secret1")
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	cfg := filepath.Join(dir, "config.toml")

	code, stdout, stderr := runCLI(t, "bea@example.com\nsecret1\n", "-config", cfg, "-api", ts.URL+"/api", "login")
	if code != 0 {
		t.Fatalf("login exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "Signed in as @bea.") {
		t.Fatalf("stdout = %q", stdout)
	}

	code, stdout, stderr = runCLI(t, "", "-config", cfg, "-api", ts.URL+"/api", "whoami")
	if code != 0 {
		t.Fatalf("whoami exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "@bea <bea@example.com>") {
		t.Fatalf("whoami stdout = %q", stdout)
	}

	code, _, _ = runCLI(t, "", "-config", cfg, "logout")
	if code != 0 {
		t.Fatalf("logout exit code = %d", code)
	}
	code, _, stderr = runCLI(t, "", "-config", cfg, "-api", ts.URL+"/api", "whoami")
	if code != 1 || !strings.Contains(stderr, "not signed in") {
		t.Fatalf("whoami after logout: code=%d stderr=%q", code, stderr)
	}
}

func TestRun_LogsFiltersByLevel(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "vinted.log")
	content := strings.Join([]string{
		`time=2024-05-01T12:00:00Z level=INFO msg=starting`,
		`time=2024-05-01T12:00:01Z level=WARN msg="poll failed" poller=conversations`,
		`time=2024-05-01T12:00:02Z level=DEBUG msg=tick`,
	}, "\n") + "\n"
	if err := os.WriteFile(logPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, "", "-config", filepath.Join(dir, "config.toml"), "logs", "-level", "warn")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "poll failed") || strings.Contains(stdout, "starting") || strings.Contains(stdout, "tick") {
		t.Fatalf("logs output = %q", stdout)
	}
}

func TestValueOrPrompt_EOFWithoutInput(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "", "-config", filepath.Join(t.TempDir(), "c.toml"), "login")
	if code != 1 || !strings.Contains(stderr, "read email") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestRun_SellThenProfileThenFollow(t *testing.T) {
	dir := isolate(t)
	srv := mockapi.New()
	srv.SeedUser("bea", "bea@example.com", "secret1")
	sam := srv.SeedUser("sam", "sam@example.com", "secret1")
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	base := []string{"-config", filepath.Join(dir, "config.toml"), "-api", ts.URL + "/api"}
	cli := func(args ...string) (int, string, string) {
		return runCLI(t, "", append(append([]string{}, base...), args...)...)
	}

	if code, _, stderr := cli("sell", "-title", "Wool coat"); code != 1 || !strings.Contains(stderr, "not signed in") {
		t.Fatalf("sell before login: code=%d stderr=%q", code, stderr)
	}
	if code, _, stderr := cli("login", "-email", "bea@example.com", "-password", "secret1"); code != 0 {
		t.Fatalf("login: code=%d stderr=%q", code, stderr)
	}

	code, _, stderr := cli("sell", "-title", "Wool coat", "-price", "80")
	if code != 1 || !strings.Contains(stderr, "category, description required") {
		t.Fatalf("incomplete sell: code=%d stderr=%q", code, stderr)
	}
	code, stdout, stderr := cli("sell", "-title", "Wool coat", "-price", "80", "-category", "Women", "-description", "Warm")
	if code != 0 || !strings.Contains(stdout, `Listed "Wool coat" for 80.00 TL`) {
		t.Fatalf("sell: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}

	code, stdout, _ = cli("profile")
	if code != 0 || !strings.HasPrefix(stdout, "@bea") || !strings.Contains(stdout, "1 active listings") {
		t.Fatalf("profile: code=%d stdout=%q", code, stdout)
	}

	code, stdout, stderr = cli("follow", sam.ID)
	if code != 0 || !strings.Contains(stdout, "Following @sam (1 followers).") {
		t.Fatalf("follow: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	code, stdout, _ = cli("profile", "-followers", sam.ID)
	if code != 0 || !strings.Contains(stdout, "Followers (1)") || !strings.Contains(stdout, "@bea") {
		t.Fatalf("profile -followers: code=%d stdout=%q", code, stdout)
	}
	code, stdout, _ = cli("unfollow", sam.ID)
	if code != 0 || !strings.Contains(stdout, "Not following @sam (0 followers).") {
		t.Fatalf("unfollow: code=%d stdout=%q", code, stdout)
	}
}

func TestRun_ThreadReply(t *testing.T) {
	dir := isolate(t)
	srv := mockapi.New()
	bea := srv.SeedUser("bea", "bea@example.com", "secret1")
	sam := srv.SeedUser("sam", "sam@example.com", "secret1")
	p := srv.SeedProduct(bea.ID, market.ProductInput{Title: "Lamp", Price: 12})
	convID := srv.SeedMessage(sam.ID, bea.ID, p.ID, "Does it work?")
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	base := []string{"-config", filepath.Join(dir, "config.toml"), "-api", ts.URL + "/api"}

	if code, _, stderr := runCLI(t, "", append(base, "login", "-email", "bea@example.com", "-password", "secret1")...); code != 0 {
		t.Fatalf("login: code=%d stderr=%q", code, stderr)
	}
	code, stdout, stderr := runCLI(t, "", append(base, "thread", "-send", "Yes, tested today", convID)...)
	if code != 0 {
		t.Fatalf("thread: code=%d stderr=%q", code, stderr)
	}
	for _, want := range []string{`@sam about "Lamp" (12.00 TL)`, "@sam: Does it work?", "you: Yes, tested today"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("thread output missing %q:\n%s", want, stdout)
		}
	}

	if code, _, _ := runCLI(t, "", append(base, "thread")...); code != 1 {
		t.Fatalf("thread without id: code=%d, want 1", code)
	}
}
