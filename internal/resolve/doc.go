// Package resolve implements layered lookup of credential fields.
//
// Every field is looked up independently in three layers, highest precedence first:
//
//  1. command line flags the user explicitly set
//  2. environment variables (SM_EMAIL, SM_PASSWORD, ...)
//  3. values stored in the credential config
//
// so an email can come from a flag while the password comes from the stored config.
// The stored layer is a koanf.Provider that is only read when a lookup falls through
// the first two layers.
package resolve
