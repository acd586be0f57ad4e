package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/sp1rit/smcli/internal/vault"
)

// OfficeUpdate is newly supplied office login material.
type OfficeUpdate struct {
	Email    string `validate:"required,email"`
	Password string
	// Plaintext stores the password inline instead of in the secret store.
	Plaintext bool
}

// Update holds the groups to replace. Nil groups leave the stored sub-record untouched.
type Update struct {
	Office  *OfficeUpdate
	Session *SessionCredentials
	Token   *string
	Student *StudentIdentity
}

// IsEmpty reports whether no group is supplied.
func (u Update) IsEmpty() bool {
	return u.Office == nil && u.Session == nil && u.Token == nil && u.Student == nil
}

// Validate checks the supplied groups.
func (u Update) Validate() error {
	validate := validator.New()
	if u.Office != nil {
		if err := validate.Struct(u.Office); err != nil {
			return fmt.Errorf("office credentials: %w", err)
		}
	}
	if u.Student != nil {
		if err := validate.Struct(u.Student); err != nil {
			return fmt.Errorf("student identity: %w", err)
		}
	}
	return nil
}

// Apply replaces every sub-record supplied in u. Sub-records are replaced wholesale,
// never merged field by field. Nothing is changed when validation or storing the
// office password fails.
func (rs *RecordSet) Apply(ctx context.Context, v vault.Vault, u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}

	var office *OfficeCredentials
	if u.Office != nil {
		storage, err := StorePassword(ctx, v, u.Office.Email, u.Office.Password, u.Office.Plaintext)
		if err != nil {
			return err
		}
		office = &OfficeCredentials{
			Email:    u.Office.Email,
			Password: storage,
		}
	}

	if office != nil {
		rs.Office = office
	}
	if u.Session != nil {
		session := *u.Session
		rs.Session = &session
	}
	if u.Token != nil {
		token := *u.Token
		rs.Token = &token
	}
	if u.Student != nil {
		student := *u.Student
		rs.Student = &student
	}

	return nil
}

// Update applies u to rs and persists the result. The record set is saved even when
// u is empty.
func (s *Store) Update(ctx context.Context, rs *RecordSet, v vault.Vault, u Update) error {
	if err := rs.Apply(ctx, v, u); err != nil {
		return err
	}
	return s.Save(ctx, rs)
}

// Clear selects sub-records to remove.
type Clear struct {
	Office  bool
	Session bool
	Token   bool
	Student bool
}

// ClearAll selects every sub-record.
var ClearAll = Clear{Office: true, Session: true, Token: true, Student: true}

// Clear removes the selected sub-records and returns the accounts whose passwords
// live in the secret store. Those secrets are left for the caller to delete.
func (rs *RecordSet) Clear(c Clear) (secrets []string) {
	if c.Office && rs.Office != nil {
		if rs.Office.Password.Mode() == StorageSystem {
			secrets = append(secrets, rs.Office.Email)
		}
		rs.Office = nil
	}
	if c.Session {
		rs.Session = nil
	}
	if c.Token {
		rs.Token = nil
	}
	if c.Student {
		rs.Student = nil
	}
	return secrets
}

// Clear removes the selected sub-records from rs and persists the result. Secrets of
// removed office credentials are deleted only after the save succeeded, so a failed
// save never leaves a config pointing at a deleted secret. A failed delete is logged.
func (s *Store) Clear(ctx context.Context, rs *RecordSet, v vault.Vault, c Clear) error {
	secrets := rs.Clear(c)
	if err := s.Save(ctx, rs); err != nil {
		return err
	}

	if v == nil {
		return nil
	}
	for _, account := range secrets {
		err := v.Delete(ctx, account)
		if err != nil && !errors.Is(err, vault.ErrNotFound) {
			slog.WarnContext(ctx, "failed to delete password from secret service",
				"email", account, "error", err)
		}
	}
	return nil
}
