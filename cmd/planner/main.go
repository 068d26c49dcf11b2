package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/evently/internal/client"
	"github.com/joshua-takyi/evently/internal/store"
)

const defaultAPIURL = "http://localhost:8080/api/v1"

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "planner:", err)
		os.Exit(1)
	}
}

// app is what every command gets: the SDK plus the owned stores.
type app struct {
	api    *client.Client
	auth   *store.AuthStore
	out    io.Writer
	logger *slog.Logger
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"signin":        {"signin -email E -password P", cmdSignIn},
	"signout":       {"signout", cmdSignOut},
	"whoami":        {"whoami", cmdWhoAmI},
	"events":        {"events [-page N] [-type T] [-location L]", cmdEvents},
	"spaces":        {"spaces [-page N]", cmdSpaces},
	"services":      {"services [-page N] [-category C]", cmdServices},
	"availability":  {"availability -space ID [-year Y] [-month M]", cmdAvailability},
	"book":          {"book -kind service|event_space -target ID -date YYYY-MM-DD -space S -phone P [-notes N]", cmdBook},
	"bookings":      {"bookings [-incoming] [-status S]", cmdBookings},
	"respond":       {"respond -id ID -status accepted|rejected", cmdRespond},
	"cancel":        {"cancel -id ID", cmdCancel},
	"notifications": {"notifications [-read-all]", cmdNotifications},
	"wishlist":      {"wishlist [-add ID -type event|service] [-remove ID]", cmdWishlist},
	"watch":         {"watch", cmdWatch},
}

func run(ctx context.Context, args []string, out io.Writer, logger *slog.Logger) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		printUsage(out)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}

	a, err := newApp(out, logger)
	if err != nil {
		return err
	}
	if err := a.auth.Restore(ctx); err != nil {
		logger.Warn("Could not restore session", "error", err)
	}
	return cmd.run(ctx, a, args[1:])
}

func newApp(out io.Writer, logger *slog.Logger) (*app, error) {
	baseURL := os.Getenv("EVENTLY_API_URL")
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	api, err := client.New(baseURL, client.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	path := os.Getenv("EVENTLY_SESSION_FILE")
	if path == "" {
		if path, err = store.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return &app{
		api:    api,
		auth:   store.NewAuthStore(api, store.NewFilePersister(path), logger),
		out:    out,
		logger: logger,
	}, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: planner <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range sortedCommands() {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func (a *app) requireSession() error {
	if !a.auth.SignedIn() {
		return errors.New("not signed in, run: planner signin -email E -password P")
	}
	return nil
}

// wsURL maps the REST base url onto the socket endpoint.
func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") + "/ws"
}
