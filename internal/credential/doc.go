// Package credential persists the smcli credential record set.
//
// A RecordSet holds optional sub-records for each supported authentication scheme:
// office (email + password), session (session + signature), a bearer token, and a
// student identity. It is stored as YAML in credential.yaml under the per-user config
// directory and always rewritten wholesale.
//
// Office passwords go through PasswordStorage: either inline in the file or in the OS
// secret store (vault.Vault) keyed by the office email. Files written by older revisions
// (sm_session, jwt_token, sm_user keys and the SYSTEM / CONFIG password tags) are still
// read, and unknown legacy sub-records are written back untouched.
//
// Concurrent invocations are not coordinated: the config file is not locked and the
// last Save wins.
package credential
