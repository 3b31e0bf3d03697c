package password_test

import (
	"strings"
	"testing"

	"stagehand/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	hash, err := password.Hash("rehearse-daily")
	require.NoError(t, err)
	assert.NotEqual(t, "rehearse-daily", hash)

	other, err := password.Hash("rehearse-daily")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt salts every hash")

	_, err = password.Hash("")
	require.ErrorIs(t, err, password.ErrEmptyPassword)

	_, err = password.Hash(strings.Repeat("a", password.MaxLength+1))
	require.ErrorIs(t, err, password.ErrPasswordTooLong)
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("rehearse-daily")
	require.NoError(t, err)

	require.NoError(t, password.Verify("rehearse-daily", hash))
	require.ErrorIs(t, password.Verify("rehearse-weekly", hash), password.ErrInvalidPassword)
	require.ErrorIs(t, password.Verify("", hash), password.ErrInvalidPassword)
	require.ErrorIs(t, password.Verify("rehearse-daily", ""), password.ErrInvalidPassword)
	require.ErrorIs(t, password.Verify("rehearse-daily", "not-a-bcrypt-hash"), password.ErrVerifyingPassword)
}
