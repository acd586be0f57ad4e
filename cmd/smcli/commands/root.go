package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/sp1rit/smcli/internal/app"
	"github.com/sp1rit/smcli/internal/observability"
	"github.com/sp1rit/smcli/internal/resolve"
	"github.com/sp1rit/smcli/internal/vault"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	r := &runner{
		environ:      os.Environ,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		readPassword: readTerminalPassword,
	}
	return r.run(ctx, args)
}

// runner holds the process dependencies of one invocation.
type runner struct {
	environ      func() []string
	stdout       io.Writer
	stderr       io.Writer
	readPassword func() (string, error)
	// vault overrides the configured vault when set.
	vault vault.Vault

	app      *app.App
	shutdown observability.ShutdownFunc
}

func (r *runner) run(ctx context.Context, args []string) error {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "settings",
			Usage: "path to settings file (TOML)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug|info|warn|error)",
			Value: slog.LevelInfo.String(),
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (text|json|otel)",
			Value: string(app.DefaultConfigLogFormat),
		},
		&cli.StringFlag{
			Name:  "config-dir",
			Usage: "directory holding credential.yaml",
		},
		&cli.StringFlag{
			Name:  "vault--service",
			Usage: "secret store service name",
			Value: app.DefaultConfigVaultService,
		},
		&cli.DurationFlag{
			Name:  "vault--timeout",
			Usage: "timeout for a single secret store call",
			Value: app.DefaultConfigVaultTimeout,
		},
		&cli.BoolFlag{
			Name:  "vault--disabled",
			Usage: "never use the OS secret store",
		},
	}
	cmd := &cli.Command{
		Name:      "smcli",
		Usage:     "Schulmanager Online command line client",
		Writer:    r.stdout,
		ErrWriter: r.stderr,
		Flags:     flags,
		Before:    r.before,
		After:     r.after,
		Commands: []*cli.Command{
			r.credentialCommand(),
			r.identityCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func (r *runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, sources, err := loadConfig(cmd.String("settings"), cmd, r.environ)
	if err != nil {
		return ctx, fmt.Errorf("failed to load settings: %w", err)
	}

	// Set up observability before creating app
	r.shutdown, err = observability.Instrument(ctx, r.stderr, cfg.LogLevel, string(cfg.LogFormat))
	if err != nil {
		return ctx, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	for _, key := range slices.Sorted(maps.Keys(sources)) {
		slog.DebugContext(ctx, "setting loaded", "key", key, "source", sources[key])
	}
	for _, key := range sources.unknown() {
		slog.WarnContext(ctx, "ignoring unknown setting", "key", key, "source", sources[key])
	}

	var opts []app.Option
	if r.vault != nil {
		opts = append(opts, app.WithVault(r.vault))
	}
	r.app, err = app.New(cfg, opts...)
	if err != nil {
		return ctx, fmt.Errorf("failed to create app: %w", err)
	}

	return ctx, nil
}

func (r *runner) after(ctx context.Context, _ *cli.Command) error {
	if r.shutdown == nil {
		return nil
	}
	if err := r.shutdown(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to shut down observability layer: %w", err)
	}
	return nil
}

// credentialFlags declares one flag per credential field. They are local so that
// subcommands can reuse the names.
func credentialFlags() []cli.Flag {
	var flags []cli.Flag
	for _, f := range resolve.Fields() {
		flags = append(flags, &cli.StringFlag{
			Name:  f.Flag,
			Usage: fmt.Sprintf("%s (overrides $%s)", f.Name, f.Env),
			Local: true,
		})
	}
	return flags
}

// input collects the credential flags the user set explicitly.
func (r *runner) input(cmd *cli.Command) app.Input {
	flags := make(map[string]string)
	for _, f := range resolve.Fields() {
		if cmd.IsSet(f.Flag) {
			flags[f.Key] = cmd.String(f.Flag)
		}
	}
	return app.Input{Flags: flags, Environ: r.environ}
}

func readTerminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
