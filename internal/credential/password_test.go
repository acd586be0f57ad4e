package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp1rit/smcli/internal/vault"
	"github.com/sp1rit/smcli/internal/vault/vaulttest"
)

func TestStorePassword_PlaintextNeverCallsVault(t *testing.T) {
	v := vaulttest.New()

	got, err := StorePassword(context.Background(), v, "a@b.com", "pw", true)
	require.NoError(t, err)

	assert.Equal(t, InlinePassword("pw"), got)
	assert.Empty(t, v.Calls())
}

func TestStorePassword_System(t *testing.T) {
	v := vaulttest.New()

	got, err := StorePassword(context.Background(), v, "a@b.com", "pw", false)
	require.NoError(t, err)

	assert.Equal(t, SystemPassword(), got)
	stored, ok := v.Secret("a@b.com")
	require.True(t, ok)
	assert.Equal(t, "pw", stored)
}

func TestStorePassword_VaultFailureIsFatal(t *testing.T) {
	v := vaulttest.New()
	v.SetErr = vault.ErrUnavailable

	_, err := StorePassword(context.Background(), v, "a@b.com", "pw", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretStore)
	assert.ErrorIs(t, err, vault.ErrUnavailable)

	_, err = StorePassword(context.Background(), nil, "a@b.com", "pw", false)
	assert.ErrorIs(t, err, ErrSecretStore)
}

func TestPasswordStorage_Resolve(t *testing.T) {
	ctx := context.Background()
	v := vaulttest.New()
	require.NoError(t, v.Set(ctx, "a@b.com", "from-vault"))

	got, err := InlinePassword("inline").Resolve(ctx, v, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	got, err = SystemPassword().Resolve(ctx, v, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", got)
}

func TestPasswordStorage_ResolveFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		vault   vault.Vault
		wantErr error
	}{
		{name: "entry not found", vault: vaulttest.New(), wantErr: vault.ErrNotFound},
		{name: "daemon absent", vault: vault.Disabled{}, wantErr: vault.ErrUnavailable},
		{name: "no vault", vault: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SystemPassword().Resolve(ctx, tt.vault, "a@b.com")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSecretUnavailable)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	_, err := PasswordStorage{}.Resolve(ctx, vaulttest.New(), "a@b.com")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSecretUnavailable))
}
