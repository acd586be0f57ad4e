package credential

import (
	"context"
	"log/slog"

	"github.com/sp1rit/smcli/internal/vault"
)

// OfficeKeys returns the stored office email and password. A password that cannot be
// read from the secret store is logged and returned as nil rather than failing.
func (rs *RecordSet) OfficeKeys(ctx context.Context, v vault.Vault) (email, password *string) {
	if rs.Office == nil {
		return nil, nil
	}

	e := rs.Office.Email
	pw, err := rs.Office.Password.Resolve(ctx, v, e)
	if err != nil {
		slog.WarnContext(ctx, "stored office password unavailable", "email", e, "error", err)
		return &e, nil
	}
	return &e, &pw
}

// SessionKeys returns the stored session and signature. Parts missing from a legacy
// partial session record are returned as nil.
func (rs *RecordSet) SessionKeys() (session, sessionSig *string) {
	if rs.Session == nil {
		return nil, nil
	}

	if !rs.Session.noSession {
		s := rs.Session.Session
		session = &s
	}
	if !rs.Session.noSessionSig {
		sig := rs.Session.SessionSig
		sessionSig = &sig
	}
	return session, sessionSig
}

// TokenKey returns the stored bearer token.
func (rs *RecordSet) TokenKey() *string {
	if rs.Token == nil {
		return nil
	}
	token := *rs.Token
	return &token
}

// StudentKeys returns the stored student and class ids.
func (rs *RecordSet) StudentKeys() (id, classID *int64) {
	if rs.Student == nil {
		return nil, nil
	}
	i, c := rs.Student.ID, rs.Student.ClassID
	return &i, &c
}
