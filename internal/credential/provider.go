package credential

import (
	"context"
	"errors"
	"strconv"

	"github.com/knadh/koanf/v2"

	"github.com/sp1rit/smcli/internal/resolve"
	"github.com/sp1rit/smcli/internal/vault"
)

// Provider exposes stored values of a RecordSet as the stored layer of a
// resolve.Resolver. Only the requested fields are read, so the secret store is only
// queried when the password field is requested.
type Provider struct {
	ctx    context.Context
	rs     *RecordSet
	vault  vault.Vault
	fields []resolve.Field
}

// Compile-time check to ensure Provider implements koanf.Provider
var _ koanf.Provider = (*Provider)(nil)

// NewProvider creates a Provider for the given fields. Without fields every field is read.
func NewProvider(ctx context.Context, rs *RecordSet, v vault.Vault, fields ...resolve.Field) *Provider {
	if len(fields) == 0 {
		fields = resolve.Fields()
	}
	return &Provider{
		ctx:    ctx,
		rs:     rs,
		vault:  v,
		fields: fields,
	}
}

// ReadBytes is not supported.
func (p *Provider) ReadBytes() ([]byte, error) {
	return nil, errors.New("credential provider does not support this method")
}

// Read returns the stored values keyed by resolve.Field.Key. Absent values are omitted.
func (p *Provider) Read() (map[string]any, error) {
	out := make(map[string]any, len(p.fields))
	set := func(f resolve.Field, value *string) {
		if value != nil {
			out[f.Key] = *value
		}
	}
	setInt := func(f resolve.Field, value *int64) {
		if value != nil {
			out[f.Key] = strconv.FormatInt(*value, 10)
		}
	}

	want := make(map[string]bool, len(p.fields))
	for _, f := range p.fields {
		want[f.Key] = true
	}

	if p.rs.Office != nil {
		if want[resolve.FieldPassword.Key] {
			email, password := p.rs.OfficeKeys(p.ctx, p.vault)
			set(resolve.FieldPassword, password)
			if want[resolve.FieldEmail.Key] {
				set(resolve.FieldEmail, email)
			}
		} else if want[resolve.FieldEmail.Key] {
			email := p.rs.Office.Email
			set(resolve.FieldEmail, &email)
		}
	}

	session, sessionSig := p.rs.SessionKeys()
	if want[resolve.FieldSession.Key] {
		set(resolve.FieldSession, session)
	}
	if want[resolve.FieldSessionSig.Key] {
		set(resolve.FieldSessionSig, sessionSig)
	}

	if want[resolve.FieldToken.Key] {
		set(resolve.FieldToken, p.rs.TokenKey())
	}

	id, classID := p.rs.StudentKeys()
	if want[resolve.FieldStudentID.Key] {
		setInt(resolve.FieldStudentID, id)
	}
	if want[resolve.FieldClassID.Key] {
		setInt(resolve.FieldClassID, classID)
	}

	return out, nil
}
