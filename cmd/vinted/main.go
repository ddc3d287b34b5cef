package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VolkanCARBUGA/VintedClone/internal/app"
	"github.com/VolkanCARBUGA/VintedClone/internal/config"
	"github.com/VolkanCARBUGA/VintedClone/internal/logtail"
)

const followInterval = 500 * time.Millisecond

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("vinted", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "override config path (default ~/.config/vinted/config.toml)")
	apiURL := global.String("api", "", "marketplace API root, e.g. http://localhost:5000/api")
	prefsPath := global.String("prefs", "", "override UI preferences path")
	logLevel := global.String("log-level", "", "debug, info, warn or error")
	global.Usage = func() { usage(global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		APIURL:     *apiURL,
		LogLevel:   *logLevel,
	}

	command, rest := "run", global.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	in := bufio.NewReader(stdin)
	var err error
	switch command {
	case "run":
		err = app.Run(ctx, opts)
	case "login":
		err = login(ctx, opts, rest, in, stdout, stderr)
	case "register":
		err = register(ctx, opts, rest, in, stdout, stderr)
	case "forgot-password":
		err = forgotPassword(ctx, opts, rest, in, stdout, stderr)
	case "logout":
		err = app.Logout(opts)
		if err == nil {
			fmt.Fprintln(stdout, "Signed out.")
		}
	case "whoami":
		err = whoami(ctx, opts, stdout)
	case "logs":
		err = logs(ctx, opts, rest, stdout, stderr)
	case "sell":
		err = sell(ctx, opts, rest, stdout, stderr)
	case "edit":
		err = edit(ctx, opts, rest, stdout, stderr)
	case "delist":
		err = delist(ctx, opts, rest, stdout)
	case "profile":
		err = showProfile(ctx, opts, rest, stdout, stderr)
	case "follow":
		err = setFollow(ctx, opts, rest, true, stdout)
	case "unfollow":
		err = setFollow(ctx, opts, rest, false, stdout)
	case "update-profile":
		err = updateProfile(ctx, opts, rest, stdout, stderr)
	case "thread":
		err = showThread(ctx, opts, rest, stdout, stderr)
	case "help":
		usage(global)
		return 0
	default:
		fmt.Fprintf(stderr, "vinted: unknown command %q\n\n", command)
		usage(global)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "vinted: %v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: vinted [flags] [command]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  run               open the marketplace TUI (default)")
	fmt.Fprintln(out, "  login             sign in and save the session")
	fmt.Fprintln(out, "  register          create an account and sign in")
	fmt.Fprintln(out, "  forgot-password   request a password reset email")
	fmt.Fprintln(out, "  logout            forget the saved session")
	fmt.Fprintln(out, "  whoami            show the signed-in account")
	fmt.Fprintln(out, "  logs              print the client log (-f to follow)")
	fmt.Fprintln(out, "  sell              publish a listing")
	fmt.Fprintln(out, "  edit <id>         change fields of one of your listings")
	fmt.Fprintln(out, "  delist <id>       remove one of your listings")
	fmt.Fprintln(out, "  profile [id]      show a profile and its listings (yours by default)")
	fmt.Fprintln(out, "  follow <id>       follow a user")
	fmt.Fprintln(out, "  unfollow <id>     stop following a user")
	fmt.Fprintln(out, "  update-profile    edit your username, bio, location or avatar")
	fmt.Fprintln(out, "  thread <id>       print a conversation (-send to reply first)")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
	if help := config.EnvHelp(); help != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, help)
	}
}

func login(ctx context.Context, opts app.Options, args []string, in *bufio.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := valueOrPrompt(*email, "Email: ", in, stdout)
	if err != nil {
		return err
	}
	p, err := valueOrPrompt(*password, "Password: ", in, stdout)
	if err != nil {
		return err
	}

	s, err := app.Login(ctx, opts, e, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Signed in as @%s.\n", s.User.Username)
	return nil
}

func register(ctx context.Context, opts app.Options, args []string, in *bufio.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("username", "", "public username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := valueOrPrompt(*username, "Username: ", in, stdout)
	if err != nil {
		return err
	}
	e, err := valueOrPrompt(*email, "Email: ", in, stdout)
	if err != nil {
		return err
	}
	p, err := valueOrPrompt(*password, "Password: ", in, stdout)
	if err != nil {
		return err
	}

	s, err := app.Register(ctx, opts, u, e, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Welcome, @%s. You are signed in.\n", s.User.Username)
	return nil
}

func forgotPassword(ctx context.Context, opts app.Options, args []string, in *bufio.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("forgot-password", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := valueOrPrompt(*email, "Email: ", in, stdout)
	if err != nil {
		return err
	}
	if err := app.ForgotPassword(ctx, opts, e); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "If the address is registered, a reset link is on its way.")
	return nil
}

func whoami(ctx context.Context, opts app.Options, stdout io.Writer) error {
	s, profile, err := app.WhoAmI(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "@%s <%s>\n", s.User.Username, s.User.Email)
	if profile != nil {
		fmt.Fprintf(stdout, "%d followers, %d following\n", profile.FollowerCount, profile.FollowingCount)
		if profile.Location != "" {
			fmt.Fprintln(stdout, profile.Location)
		}
	}
	return nil
}

func logs(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "keep printing new lines")
	lines := fs.Int("n", 200, "number of trailing lines (0 for all)")
	level := fs.String("level", "", "only show this level and above")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := app.LogPath(opts)
	if err != nil {
		return err
	}

	emit := func(line string) {
		if logtail.AtLeast(line, *level) {
			fmt.Fprintln(stdout, logtail.ColorizeLine(line))
		}
	}

	if *follow {
		err := logtail.Follow(ctx, path, *lines, followInterval, emit)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	backlog, err := logtail.Read(path, *lines)
	if err != nil {
		return err
	}
	if len(backlog) == 0 {
		fmt.Fprintf(stderr, "no log entries in %s\n", path)
	}
	var kept []string
	for _, line := range backlog {
		if logtail.AtLeast(line, *level) {
			kept = append(kept, line)
		}
	}
	for _, line := range logtail.ColorizeLines(kept) {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// valueOrPrompt returns value, or asks for it on stdin when it is empty.
func valueOrPrompt(value, prompt string, in *bufio.Reader, stdout io.Writer) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	fmt.Fprint(stdout, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
