package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/storage"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build information, set via ldflags.
var Version = "dev"

const tokenKey = "access-token"

func newApp() *cli.App {
	return &cli.App{
		Name:    "sessionctl",
		Usage:   "log in to a social backend and keep the session on disk",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"SESSIONCTL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "identity backend base URL (overrides identity.base_url)",
				EnvVars: []string{"SESSIONCTL_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "directory of the session database",
				EnvVars: []string{"SESSIONCTL_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: text, json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level to stderr",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			whoamiCommand(),
			refreshCommand(),
			logoutCommand(),
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "exchange credentials for a token and load the profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"SESSIONCTL_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			return withSession(c, func(ctx context.Context, s *session) error {
				login, err := s.loginClient()
				if err != nil {
					return err
				}
				token, err := login.Login(ctx, c.String("email"), c.String("password"))
				if err != nil {
					return err
				}
				if err := s.db.Set(ctx, tokenKey, []byte(token), storage.SetOptions{TTL: s.cfg.Persistence.Expiration}); err != nil {
					return fmt.Errorf("save token: %w", err)
				}

				st := s.store.FetchUser(ctx)
				if !st.IsLoggedIn {
					return errors.New("login accepted but the profile could not be loaded")
				}
				return printState(c, st)
			})
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the stored session without contacting the backend",
		Action: func(c *cli.Context) error {
			return withSession(c, func(_ context.Context, s *session) error {
				return printState(c, s.store.State())
			})
		},
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "reload the profile from the backend",
		Action: func(c *cli.Context) error {
			return withSession(c, func(ctx context.Context, s *session) error {
				return printState(c, s.store.FetchUser(ctx))
			})
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the session and the token",
		Action: func(c *cli.Context) error {
			return withSession(c, func(ctx context.Context, s *session) error {
				s.store.Logout(ctx)
				if err := s.db.Remove(ctx, tokenKey); err != nil {
					return fmt.Errorf("remove token: %w", err)
				}
				return printState(c, s.store.State())
			})
		},
	}
}

func printState(c *cli.Context, st goSession.State) error {
	out := c.App.Writer
	if c.String("output") == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	if !st.IsLoggedIn || st.User == nil {
		_, err := fmt.Fprintln(out, "not logged in")
		return err
	}
	_, err := fmt.Fprintf(out, "logged in as %s <%s> (id %s)\n", st.User.Name, st.User.Email, st.User.ID)
	return err
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func defaultDataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessionctl"), nil
}
