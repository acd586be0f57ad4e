package credential

import (
	"context"
	"fmt"

	"github.com/sp1rit/smcli/internal/vault"
)

// Resolve returns the password behind p. Inline passwords are returned directly;
// system passwords are read from v under account. Vault failures are returned wrapped
// in ErrSecretUnavailable so callers can treat the password as unset.
func (p PasswordStorage) Resolve(ctx context.Context, v vault.Vault, account string) (string, error) {
	switch p.mode {
	case StorageInline:
		return p.value, nil
	case StorageSystem:
		if v == nil {
			return "", fmt.Errorf("%w: no secret store configured", ErrSecretUnavailable)
		}
		password, err := v.Get(ctx, account)
		if err != nil {
			return "", fmt.Errorf("%w for %s: %w", ErrSecretUnavailable, account, err)
		}
		return password, nil
	default:
		return "", fmt.Errorf("invalid password storage mode %q", p.mode)
	}
}

// StorePassword decides where password is kept. With plaintext set it returns
// InlinePassword without touching v. Otherwise the password is written to v under
// email and a failure is returned as ErrSecretStore; there is no fallback to plaintext.
func StorePassword(ctx context.Context, v vault.Vault, email, password string, plaintext bool) (PasswordStorage, error) {
	if plaintext {
		return InlinePassword(password), nil
	}

	if v == nil {
		return PasswordStorage{}, fmt.Errorf("%w: no secret store configured", ErrSecretStore)
	}
	if err := v.Set(ctx, email, password); err != nil {
		return PasswordStorage{}, fmt.Errorf("%w: %w", ErrSecretStore, err)
	}

	return SystemPassword(), nil
}
