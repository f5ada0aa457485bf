package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/pinboard/cmd/pinctl/output"
	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/client"
	"github.com/sakif/pinboard/internal/config"
)

var (
	// Global flags
	configFile  string
	apiURL      string
	sessionFile string
	verbose     bool
	jsonOutput  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pinctl",
	Short: "pinctl - follow boards and browse pins from the terminal",
	Long: `pinctl talks to a pinboard API server.

Log in once and the session is kept in a file, so later commands run as you.
Boards you follow are grouped into private follow streams; a stream's pins
can be listed board by board or merged by the server.

Configuration comes from flags, then PINBOARD_* environment variables, then
the file given with --config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		output.Error("%s", describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default from PINBOARD_API_URL or http://localhost:8080/api)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Where the login is kept (default in the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and failures")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// app is what every command needs: the API client and the stream
// repository sharing one store.
type app struct {
	client  *client.Client
	streams *client.Streams
	logger  *slog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.LoadClient(configFile)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if sessionFile != "" {
		cfg.SessionFile = sessionFile
	}
	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config directory: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "pinboard", "session.json")
	}

	level := slog.LevelError + 4 // silent unless --verbose
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	session, err := client.LoadSession(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	c := client.New(cfg.APIURL, session,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
		client.WithOnExpired(func() {
			output.Warning("session expired, run pinctl login")
		}),
	)
	return &app{
		client:  c,
		streams: client.NewStreams(c, client.NewStore()),
		logger:  logger,
	}, nil
}

// requireLogin fails early instead of letting the server answer 401.
func (a *app) requireLogin() error {
	if !a.client.Session().Authenticated() {
		return apperror.Unauthorized("not logged in, run pinctl login")
	}
	return nil
}

// printJSON writes v as indented JSON and reports whether --json was set.
func printJSON(v any) (bool, error) {
	if !jsonOutput {
		return false, nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

// describe turns API failures into their user-facing text and leaves
// everything else (flag errors, config errors) as is.
func describe(err error) string {
	var appErr *apperror.AppError
	switch {
	case errors.Is(err, client.ErrBusy):
		return client.Message(err)
	case errors.As(err, &appErr) && errors.Is(err, apperror.ErrUnauthorized) && appErr.Message != "":
		return appErr.Message
	case errors.As(err, &appErr):
		return client.Message(err)
	default:
		return err.Error()
	}
}
