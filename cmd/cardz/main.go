// Command cardz is a terminal client for the Formula Cardz service: browse
// your collection, hunt Dynasty one-of-ones, and watch upcoming drops.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/formulacardz/cardz/internal/collection"
	"github.com/formulacardz/cardz/internal/localstore"
	"github.com/formulacardz/cardz/internal/session"
	"github.com/formulacardz/cardz/internal/tui"
	"github.com/formulacardz/cardz/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

type config struct {
	APIURL   string `env:"CARDZ_API_URL" envDefault:"https://api.formulacardz.com"`
	DataDir  string `env:"CARDZ_DATA_DIR"`
	LogLevel string `env:"CARDZ_LOG_LEVEL" envDefault:"warn"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// dataDir returns the configured data directory, defaulting to ~/.cardz,
// created on first use.
func dataDir(cfg config) (string, error) {
	dir := cfg.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".cardz")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// newLogger writes structured logs to cardz.log inside the data directory.
// The terminal belongs to the TUI, so nothing is logged to stderr.
func newLogger(dir, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	f, err := os.OpenFile(filepath.Join(dir, "cardz.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
	}
	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), nil
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env config: %w", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("cardz " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			return runLogin(cfg, os.Args[2:])
		case "logout":
			return runLogout(cfg)
		case "whoami":
			return runWhoami(cfg)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printHelp()
			return nil
		}
	}

	dir, err := dataDir(cfg)
	if err != nil {
		return err
	}
	log, err := newLogger(dir, cfg.LogLevel)
	if err != nil {
		return err
	}

	store, err := localstore.Open(filepath.Join(dir, "cardz.db"))
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	c := client.New(cfg.APIURL, "")
	sessions := session.New(c, store, log, session.WithTokenSink(c.SetToken))
	if _, err := sessions.Restore(); err != nil {
		log.Warn().Err(err).Msg("session restore failed, starting anonymous")
	}

	coll := collection.New(c, sessions, log)
	app := tui.NewApp(sessions, c, c, coll)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// openSessions builds the session manager for the one-shot subcommands.
func openSessions(cfg config) (*session.Manager, *localstore.Store, *client.Client, error) {
	dir, err := dataDir(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(dir, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := localstore.Open(filepath.Join(dir, "cardz.db"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open local store: %w", err)
	}
	c := client.New(cfg.APIURL, "")
	return session.New(c, store, log, session.WithTokenSink(c.SetToken)), store, c, nil
}

func runLogin(cfg config, args []string) error {
	remember := false
	for _, a := range args {
		if a == "--remember" {
			remember = true
		}
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	sessions, store, _, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	sess, err := sessions.Login(context.Background(), email, string(pwBytes), remember)
	if err != nil {
		return err
	}
	days := 1
	if sess.RememberMe {
		days = 60
	}
	fmt.Printf("Signed in as %s. Session valid for %d day(s).\n", sess.Profile.Username, days)
	return nil
}

func runLogout(cfg config) error {
	sessions, store, _, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	sessions.Logout()
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cfg config) error {
	sessions, store, _, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	sess, err := sessions.Restore()
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("Not signed in. Run `cardz login` or launch `cardz` to sign in.")
		return nil
	}
	fmt.Printf("%s <%s>\n", sess.Profile.Username, sess.Profile.Email)
	if sess.Profile.HasPremium {
		fmt.Println("Premium member")
	}
	return nil
}

func printHelp() {
	fmt.Println(`cardz - Formula 1 trading card collection in your terminal

Usage:
  cardz              launch the interactive client
  cardz login        sign in from the command line (--remember for 60 days)
  cardz logout       clear the stored session
  cardz whoami       show the signed-in account
  cardz version      print the version

Environment:
  CARDZ_API_URL      API base URL
  CARDZ_DATA_DIR     data directory (default ~/.cardz)
  CARDZ_LOG_LEVEL    zerolog level written to cardz.log (default warn)`)
}
