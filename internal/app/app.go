package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sp1rit/smcli/internal/credential"
	"github.com/sp1rit/smcli/internal/resolve"
	"github.com/sp1rit/smcli/internal/vault"
)

// App wires the credential store, the secret store and the resolution layer for
// one invocation.
type App struct {
	cfg   *Config
	store *credential.Store
	vault vault.Vault
}

// Option configures an App.
type Option func(*App)

// WithVault replaces the vault derived from the configuration.
func WithVault(v vault.Vault) Option {
	return func(a *App) {
		a.vault = v
	}
}

// New creates a new App instance.
func New(cfg *Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := credential.NewStore(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	a := &App{
		cfg:   cfg,
		store: store,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.vault == nil {
		v, err := cfg.Vault.NewVault()
		if err != nil {
			return nil, fmt.Errorf("failed to create vault: %w", err)
		}
		a.vault = v
	}

	return a, nil
}

// Store returns the credential store.
func (a *App) Store() *credential.Store {
	return a.store
}

// Load reads the record set for this invocation. See credential.Store.Load.
func (a *App) Load(ctx context.Context) *credential.RecordSet {
	return a.store.Load(ctx)
}

// Input carries the user supplied credential values.
type Input struct {
	// Flags holds explicitly set flag values keyed by resolve.Field.Key.
	Flags map[string]string
	// Environ returns the process environment, typically os.Environ.
	Environ func() []string
}

// ResolveIdentity resolves the credentials scheme needs from flags, environment and
// rs, in that order of precedence. With withStudent the student identity is resolved
// as well. A field no layer supplies fails with a *resolve.MissingFieldError.
func (a *App) ResolveIdentity(ctx context.Context, rs *credential.RecordSet, scheme AuthScheme, in Input, withStudent bool) (*Identity, error) {
	fields := scheme.fields()
	if fields == nil {
		return nil, fmt.Errorf("unsupported authentication scheme: %s", scheme)
	}
	if withStudent {
		fields = append(fields, resolve.FieldStudentID, resolve.FieldClassID)
	}

	r, err := resolve.New(
		resolve.WithFlags(in.Flags),
		resolve.WithEnviron(in.Environ),
		resolve.WithStored(credential.NewProvider(ctx, rs, a.vault, fields...)),
	)
	if err != nil {
		return nil, err
	}

	id := &Identity{
		Scheme:  scheme,
		Sources: make(map[string]resolve.Source, len(fields)),
	}
	required := func(f resolve.Field, dst *string) error {
		v, err := r.Required(f)
		if err != nil {
			return err
		}
		*dst = v.Raw
		id.Sources[f.Key] = v.Source
		return nil
	}

	switch scheme {
	case AuthSchemeOffice:
		if err := required(resolve.FieldEmail, &id.Email); err != nil {
			return nil, err
		}
		if err := required(resolve.FieldPassword, &id.Password); err != nil {
			return nil, err
		}
	case AuthSchemeSession:
		if err := required(resolve.FieldSession, &id.Session); err != nil {
			return nil, err
		}
		if err := required(resolve.FieldSessionSig, &id.SessionSig); err != nil {
			return nil, err
		}
	case AuthSchemeToken:
		if err := required(resolve.FieldToken, &id.Token); err != nil {
			return nil, err
		}
	}

	if withStudent {
		studentID, err := r.Required(resolve.FieldStudentID)
		if err != nil {
			return nil, err
		}
		classID, err := r.Required(resolve.FieldClassID)
		if err != nil {
			return nil, err
		}
		student, err := parseStudent(studentID, classID)
		if err != nil {
			return nil, err
		}
		id.Student = student
		id.Sources[resolve.FieldStudentID.Key] = studentID.Source
		id.Sources[resolve.FieldClassID.Key] = classID.Source
	}

	slog.DebugContext(ctx, "resolved identity", "scheme", scheme, "sources", id.Sources)
	return id, nil
}

// UpdateOptions tunes UpdateCredentials.
type UpdateOptions struct {
	// Plaintext stores the office password inline instead of in the secret store.
	Plaintext bool
	// PromptPassword, when set, is asked for the password if an email is supplied without one.
	PromptPassword func(email string) (string, error)
}

// UpdateCredentials collects the credential groups supplied through flags and
// environment (never from the stored config), replaces them in rs and saves rs.
// A group is only supplied when all of its fields are present; incomplete groups
// are logged and skipped. rs is saved even when no group was supplied.
func (a *App) UpdateCredentials(ctx context.Context, rs *credential.RecordSet, in Input, opts UpdateOptions) (credential.Update, error) {
	r, err := resolve.New(
		resolve.WithFlags(in.Flags),
		resolve.WithEnviron(in.Environ),
	)
	if err != nil {
		return credential.Update{}, err
	}

	values := make(map[string]resolve.Value)
	for _, f := range resolve.Fields() {
		v, ok, err := r.Lookup(f)
		if err != nil {
			return credential.Update{}, err
		}
		if ok {
			values[f.Key] = v
		}
	}

	if opts.PromptPassword != nil {
		email, hasEmail := values[resolve.FieldEmail.Key]
		if _, hasPassword := values[resolve.FieldPassword.Key]; hasEmail && !hasPassword {
			password, err := opts.PromptPassword(email.Raw)
			if err != nil {
				return credential.Update{}, fmt.Errorf("reading password: %w", err)
			}
			values[resolve.FieldPassword.Key] = resolve.Value{Field: resolve.FieldPassword, Raw: password, Source: resolve.SourceFlag}
		}
	}

	var u credential.Update

	if email, password, ok := group(ctx, values, "office", resolve.FieldEmail, resolve.FieldPassword); ok {
		u.Office = &credential.OfficeUpdate{
			Email:     email.Raw,
			Password:  password.Raw,
			Plaintext: opts.Plaintext,
		}
	}

	if session, sig, ok := group(ctx, values, "session", resolve.FieldSession, resolve.FieldSessionSig); ok {
		u.Session = &credential.SessionCredentials{
			Session:    session.Raw,
			SessionSig: sig.Raw,
		}
	}

	if token, ok := values[resolve.FieldToken.Key]; ok {
		raw := token.Raw
		u.Token = &raw
	}

	if id, classID, ok := group(ctx, values, "student", resolve.FieldStudentID, resolve.FieldClassID); ok {
		student, err := parseStudent(id, classID)
		if err != nil {
			return credential.Update{}, err
		}
		u.Student = student
	}

	if err := a.store.Update(ctx, rs, a.vault, u); err != nil {
		return credential.Update{}, err
	}

	return u, nil
}

// ClearCredentials removes the selected sub-records from rs and saves it. See
// credential.Store.Clear.
func (a *App) ClearCredentials(ctx context.Context, rs *credential.RecordSet, c credential.Clear) error {
	return a.store.Clear(ctx, rs, a.vault, c)
}

// group returns both values of a two-field group when both are present.
func group(ctx context.Context, values map[string]resolve.Value, name string, first, second resolve.Field) (resolve.Value, resolve.Value, bool) {
	a, hasFirst := values[first.Key]
	b, hasSecond := values[second.Key]

	switch {
	case hasFirst && hasSecond:
		return a, b, true
	case hasFirst:
		slog.WarnContext(ctx, "ignoring incomplete credentials", "group", name, "missing", second.Env)
	case hasSecond:
		slog.WarnContext(ctx, "ignoring incomplete credentials", "group", name, "missing", first.Env)
	}
	return resolve.Value{}, resolve.Value{}, false
}

func parseStudent(id, classID resolve.Value) (*credential.StudentIdentity, error) {
	studentID, err := id.Int()
	if err != nil {
		return nil, err
	}
	class, err := classID.Int()
	if err != nil {
		return nil, err
	}
	return &credential.StudentIdentity{ID: studentID, ClassID: class}, nil
}
