package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/sp1rit/smcli/internal/app"
	"github.com/sp1rit/smcli/internal/resolve"
)

func (r *runner) identityCommand() *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "resolve the credentials for an authentication scheme and show where they came from",
		Flags: append(credentialFlags(),
			&cli.StringFlag{
				Name:  "auth",
				Usage: "authentication scheme (o365|session|jwt)",
				Value: string(app.AuthSchemeOffice),
			},
			&cli.BoolFlag{
				Name:  "student",
				Usage: "also resolve the student and class id",
			},
			&cli.StringFlag{
				Name:  "check",
				Usage: "send an authenticated GET to this URL and report the response status (jwt only)",
			},
		),
		Action: r.identityAction,
	}
}

func (r *runner) identityAction(ctx context.Context, cmd *cli.Command) error {
	scheme, err := app.ParseAuthScheme(cmd.String("auth"))
	if err != nil {
		return err
	}

	id, err := r.app.ResolveIdentity(ctx, r.app.Load(ctx), scheme, r.input(cmd), cmd.Bool("student"))
	if err != nil {
		return err
	}

	line := func(f resolve.Field, value string) {
		fmt.Fprintf(r.stdout, "%-18s %s (%s)\n", f.Name+":", value, id.Sources[f.Key])
	}

	fmt.Fprintf(r.stdout, "%-18s %s\n", "Scheme:", id.Scheme)
	switch id.Scheme {
	case app.AuthSchemeOffice:
		line(resolve.FieldEmail, id.Email)
		line(resolve.FieldPassword, mask(id.Password))
	case app.AuthSchemeSession:
		line(resolve.FieldSession, mask(id.Session))
		line(resolve.FieldSessionSig, mask(id.SessionSig))
	case app.AuthSchemeToken:
		line(resolve.FieldToken, mask(id.Token))
	}
	if id.Student != nil {
		line(resolve.FieldStudentID, fmt.Sprint(id.Student.ID))
		line(resolve.FieldClassID, fmt.Sprint(id.Student.ClassID))
	}

	if target := cmd.String("check"); target != "" {
		return r.check(ctx, id, target)
	}
	return nil
}

// check requests target with the identity's bearer token. A 4xx or 5xx response is an error.
func (r *runner) check(ctx context.Context, id *app.Identity, target string) error {
	client, err := id.Client(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building check request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("check request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.DebugContext(ctx, "check request done", "url", target, "status", resp.StatusCode)
	fmt.Fprintf(r.stdout, "%-18s %s\n", "Check:", resp.Status)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("check request to %s was rejected: %s", target, resp.Status)
	}
	return nil
}

// mask hides a secret behind at most eight asterisks.
func mask(secret string) string {
	if secret == "" {
		return "(empty)"
	}
	return strings.Repeat("*", min(len(secret), 8))
}
