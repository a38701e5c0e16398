package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/keys"
	"github.com/workledger/registry-services/util/cli"
	"github.com/workledger/registry-services/util/testutil"
)

func TestReadPassphraseFromEnv(t *testing.T) {
	t.Setenv(cli.PassphraseEnvVar, testutil.TestPassword)
	passphrase, err := cli.ReadPassphrase("Passphrase: ")
	require.Nil(t, err)
	assert.Equal(t, testutil.TestPassword, passphrase)
}

func TestUnlockSigner(t *testing.T) {
	signer := testutil.GetSigner()
	path := filepath.Join(t.TempDir(), "keystore.age")
	require.Nil(t, keys.CreateKeystore(path, signer, testutil.TestPassword, 10))

	unlocked, err := cli.UnlockSigner(path, testutil.TestPassword)
	require.Nil(t, err)
	assert.Equal(t, signer.Address(), unlocked.Address())

	_, err = cli.UnlockSigner(path, "wrong")
	assert.ErrorIs(t, err, keys.ErrCannotUnlock)

	_, err = cli.UnlockSigner(filepath.Join(t.TempDir(), "missing.age"), testutil.TestPassword)
	assert.ErrorIs(t, err, keys.ErrCannotUnlock)

	_, err = cli.UnlockSigner("", testutil.TestPassword)
	assert.ErrorIs(t, err, keys.ErrCannotUnlock)
}
