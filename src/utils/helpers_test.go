package utils

import (
	"campusgate/src/config"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey, _ = hex.DecodeString("6368616e676520746869732070617373776f726420746f206120736563726574")

func TestEncryptDecrypt(t *testing.T) {
	enc, err := EncryptMessage(testKey, "hello")
	require.NoError(t, err)
	assert.NotEqual(t, "hello", enc)

	dec, err := DecryptMessage(testKey, enc)
	require.NoError(t, err)
	assert.Equal(t, "hello", *dec)

	_, err = DecryptMessage(testKey, "abcd")
	assert.Error(t, err)
}

func TestGatePassCode(t *testing.T) {
	code, err := EncodeGatePassCode(testKey, 42)
	require.NoError(t, err)

	id, err := DecodeGatePassCode(testKey, code)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	other, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f000102030405060708090a0b0c0d0e0f")
	_, err = DecodeGatePassCode(other, code)
	assert.ErrorIs(t, err, ErrInvalidCode)

	notJSON, err := EncryptMessage(testKey, "plain")
	require.NoError(t, err)
	_, err = DecodeGatePassCode(testKey, notJSON)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestWithSuffix(t *testing.T) {
	prev := config.API_ENV
	t.Cleanup(func() { config.API_ENV = prev })

	config.API_ENV = "production"
	assert.Equal(t, "EmailsToSend", WithSuffix("EmailsToSend"))
	assert.True(t, IsProd())

	config.API_ENV = "local"
	assert.Equal(t, "EmailsToSend_local", WithSuffix("EmailsToSend"))
	assert.False(t, IsProd())
}
