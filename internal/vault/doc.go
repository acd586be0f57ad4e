// Package vault stores account passwords outside of the credential config.
//
// Two implementations are provided:
//   - Keyring: OS-native secret storage (macOS Keychain, Windows Credential Manager,
//     Linux Secret Service) through zalando/go-keyring, bounded by a timeout
//   - Disabled: reports every call as unavailable, for hosts without a secret service
//
// Errors are normalised to ErrNotFound (no entry for the account) and ErrUnavailable
// (the backend could not be reached or did not answer in time). An empty password is a
// valid stored value and is never reported as missing.
package vault
