package credential

import "errors"

var (
	// ErrConfigUnreadable wraps failures to read or decode the credential config.
	ErrConfigUnreadable = errors.New("credential config unreadable")

	// ErrConfigWrite wraps failures to persist the credential config.
	ErrConfigWrite = errors.New("failed to write credential config")

	// ErrSecretUnavailable is returned when a password stored in the secret store cannot be read.
	ErrSecretUnavailable = errors.New("password unavailable from secret service")

	// ErrSecretStore is returned when a password cannot be written to the secret store.
	ErrSecretStore = errors.New("unable to store the password in the secret service, is your secret service daemon (e.g. libsecret) running?")
)
