package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

// DefaultTimeout bounds a single round trip to the secret service daemon.
const DefaultTimeout = 5 * time.Second

// backend is the subset of go-keyring used by Keyring.
type backend interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osBackend struct{}

func (osBackend) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (osBackend) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

func (osBackend) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// KeyringOption configures a Keyring.
type KeyringOption func(*Keyring)

// WithTimeout sets the maximum duration of a single keyring call.
func WithTimeout(timeout time.Duration) KeyringOption {
	return func(k *Keyring) {
		k.timeout = timeout
	}
}

// Keyring stores passwords in the OS-native credential storage.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
type Keyring struct {
	service string
	timeout time.Duration
	backend backend
}

// Compile-time check to ensure Keyring implements Vault
var _ Vault = (*Keyring)(nil)

// NewKeyring creates a Keyring storing entries under the given service name.
func NewKeyring(service string, opts ...KeyringOption) (*Keyring, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}

	k := &Keyring{
		service: service,
		timeout: DefaultTimeout,
		backend: osBackend{},
	}
	for _, opt := range opts {
		opt(k)
	}

	if k.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", k.timeout)
	}

	return k, nil
}

// Service returns the service name entries are stored under.
func (k *Keyring) Service() string {
	return k.service
}

// Get returns the password stored for account.
func (k *Keyring) Get(ctx context.Context, account string) (string, error) {
	if account == "" {
		return "", fmt.Errorf("account cannot be empty")
	}

	return k.do(ctx, "get", func() (string, error) {
		return k.backend.Get(k.service, account)
	})
}

// Set stores password for account, overwriting any existing value.
func (k *Keyring) Set(ctx context.Context, account, password string) error {
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}

	_, err := k.do(ctx, "set", func() (string, error) {
		return "", k.backend.Set(k.service, account, password)
	})
	return err
}

// Delete removes the entry for account.
func (k *Keyring) Delete(ctx context.Context, account string) error {
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}

	_, err := k.do(ctx, "delete", func() (string, error) {
		return "", k.backend.Delete(k.service, account)
	})
	return err
}

// do runs fn on its own goroutine so a hung secret service daemon cannot block the
// caller past the timeout. The goroutine is abandoned on timeout.
func (k *Keyring) do(ctx context.Context, op string, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", translate(op, r.err)
		}
		return r.value, nil
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: keyring %s timed out after %s", ErrUnavailable, op, k.timeout)
	}
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, keyring.ErrSetDataTooBig):
		return fmt.Errorf("keyring %s: %w", op, err)
	default:
		return fmt.Errorf("%w: keyring %s: %w", ErrUnavailable, op, err)
	}
}
