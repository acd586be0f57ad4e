package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/sp1rit/smcli/internal/app"
	"github.com/sp1rit/smcli/internal/credential"
)

func (r *runner) credentialCommand() *cli.Command {
	return &cli.Command{
		Name:  "credential",
		Usage: "store the credentials supplied through flags and SM_* environment variables",
		Flags: append(credentialFlags(),
			&cli.BoolFlag{
				Name:  "no-secret",
				Usage: "store the password in the config file instead of the OS secret store",
			},
			&cli.BoolFlag{
				Name:  "ask-password",
				Usage: "prompt for the password when only an email is supplied",
			},
		),
		Action: r.credentialUpdateAction,
		Commands: []*cli.Command{
			{
				Name:   "path",
				Usage:  "print the location of the credential config",
				Action: r.credentialPathAction,
			},
			{
				Name:  "clear",
				Usage: "remove stored credentials",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "office", Usage: "remove email and password"},
					&cli.BoolFlag{Name: "session", Usage: "remove session and session signature"},
					&cli.BoolFlag{Name: "token", Usage: "remove the JWT token"},
					&cli.BoolFlag{Name: "student", Usage: "remove student and class id"},
					&cli.BoolFlag{Name: "all", Usage: "remove everything"},
				},
				Action: r.credentialClearAction,
			},
		},
	}
}

func (r *runner) credentialUpdateAction(ctx context.Context, cmd *cli.Command) error {
	opts := app.UpdateOptions{Plaintext: cmd.Bool("no-secret")}
	if cmd.Bool("ask-password") {
		opts.PromptPassword = r.promptPassword
	}

	u, err := r.app.UpdateCredentials(ctx, r.app.Load(ctx), r.input(cmd), opts)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}

	if u.IsEmpty() {
		fmt.Fprintln(r.stdout, "no complete credentials supplied, nothing changed")
		return nil
	}

	var groups []string
	if u.Office != nil {
		where := "secret store"
		if u.Office.Plaintext {
			where = "config file"
		}
		groups = append(groups, fmt.Sprintf("office (password in %s)", where))
	}
	if u.Session != nil {
		groups = append(groups, "session")
	}
	if u.Token != nil {
		groups = append(groups, "token")
	}
	if u.Student != nil {
		groups = append(groups, "student")
	}
	fmt.Fprintf(r.stdout, "updated %s\n", strings.Join(groups, ", "))
	return nil
}

func (r *runner) promptPassword(email string) (string, error) {
	fmt.Fprintf(r.stderr, "Password for %s: ", email)
	password, err := r.readPassword()
	fmt.Fprintln(r.stderr)
	return password, err
}

func (r *runner) credentialPathAction(_ context.Context, _ *cli.Command) error {
	fmt.Fprintln(r.stdout, r.app.Store().Path())
	return nil
}

func (r *runner) credentialClearAction(ctx context.Context, cmd *cli.Command) error {
	c := credential.Clear{
		Office:  cmd.Bool("office"),
		Session: cmd.Bool("session"),
		Token:   cmd.Bool("token"),
		Student: cmd.Bool("student"),
	}
	if cmd.Bool("all") {
		c = credential.ClearAll
	}
	if c == (credential.Clear{}) {
		return errors.New("nothing to clear, pass --office, --session, --token, --student or --all")
	}

	if err := r.app.ClearCredentials(ctx, r.app.Load(ctx), c); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
