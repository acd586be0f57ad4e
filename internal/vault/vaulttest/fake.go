// Package vaulttest provides an in-memory vault.Vault for tests.
package vaulttest

import (
	"context"
	"sync"

	"github.com/sp1rit/smcli/internal/vault"
)

// Call records a single invocation on a Fake.
type Call struct {
	Op      string
	Account string
}

// Fake is an in-memory vault.Vault that records calls and can be primed with errors.
type Fake struct {
	mu      sync.Mutex
	secrets map[string]string
	calls   []Call

	// GetErr, SetErr and DeleteErr, when set, are returned by the matching method.
	GetErr    error
	SetErr    error
	DeleteErr error
}

// Compile-time check to ensure Fake implements vault.Vault
var _ vault.Vault = (*Fake)(nil)

// New creates an empty Fake.
func New() *Fake {
	return &Fake{secrets: make(map[string]string)}
}

func (f *Fake) Get(_ context.Context, account string) (string, error) {
	f.record("get", account)
	if f.GetErr != nil {
		return "", f.GetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	password, ok := f.secrets[account]
	if !ok {
		return "", vault.ErrNotFound
	}
	return password, nil
}

func (f *Fake) Set(_ context.Context, account, password string) error {
	f.record("set", account)
	if f.SetErr != nil {
		return f.SetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[account] = password
	return nil
}

func (f *Fake) Delete(_ context.Context, account string) error {
	f.record("delete", account)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.secrets[account]; !ok {
		return vault.ErrNotFound
	}
	delete(f.secrets, account)
	return nil
}

// Secret returns the stored password for account without recording a call.
func (f *Fake) Secret(account string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	password, ok := f.secrets[account]
	return password, ok
}

// Calls returns the recorded invocations in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) record(op, account string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Account: account})
}
