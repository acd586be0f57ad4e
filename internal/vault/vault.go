package vault

import (
	"context"
	"errors"
)

// DefaultService identifies smcli entries in the OS secret store.
const DefaultService = "smcli"

var (
	// ErrNotFound is returned when no secret is stored for the account.
	ErrNotFound = errors.New("secret not found")

	// ErrUnavailable is returned when the secret store cannot be reached, fails, or times out.
	ErrUnavailable = errors.New("secret store unavailable")
)

// Vault reads and writes passwords keyed by account name.
type Vault interface {
	// Get returns the password stored for account. Returns ErrNotFound if there is
	// no entry and ErrUnavailable if the backend fails.
	Get(ctx context.Context, account string) (string, error)

	// Set stores password for account, overwriting any existing value.
	Set(ctx context.Context, account, password string) error

	// Delete removes the entry for account. Returns ErrNotFound if there is no entry.
	Delete(ctx context.Context, account string) error
}

// Disabled is a Vault without a backend. Every call fails with ErrUnavailable.
type Disabled struct{}

// Compile-time check to ensure Disabled implements Vault
var _ Vault = Disabled{}

func (Disabled) Get(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Disabled) Set(context.Context, string, string) error   { return ErrUnavailable }
func (Disabled) Delete(context.Context, string) error        { return ErrUnavailable }
