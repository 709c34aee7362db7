package encrypt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealAndOpen(t *testing.T) {

	sk, err := GenerateKey()
	require.NoError(t, err)

	plaintext := []byte("a share addressed to one server")

	sealed, err := Seal(sk.Public(), plaintext)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), string(plaintext))

	opened, err := Open(sk, sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)

	// Sealing is randomized.
	sealed2, err := Seal(sk.Public(), plaintext)
	require.NoError(t, err)
	require.NotEqual(t, sealed, sealed2)
}

func TestOpenRejectsWrongKey(t *testing.T) {

	sk1, err := GenerateKey()
	require.NoError(t, err)
	sk2, err := GenerateKey()
	require.NoError(t, err)

	sealed, err := Seal(sk1.Public(), []byte("for server one"))
	require.NoError(t, err)

	_, err = Open(sk2, sealed)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestOpenRejectsCorruptedInput(t *testing.T) {

	sk, err := GenerateKey()
	require.NoError(t, err)

	sealed, err := Seal(sk.Public(), []byte("payload"))
	require.NoError(t, err)

	// Truncated.
	_, err = Open(sk, sealed[:publicKeySize+nonceSize-1])
	require.ErrorIs(t, err, ErrDecryptionFailed)

	// Flipped ciphertext bit.
	corrupted := append([]byte(nil), sealed...)
	corrupted[len(corrupted)-1] ^= 1
	_, err = Open(sk, corrupted)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	// Flipped ephemeral key bit.
	corrupted = append([]byte(nil), sealed...)
	corrupted[0] ^= 1
	_, err = Open(sk, corrupted)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestKeyBase64RoundTrip(t *testing.T) {

	sk, err := GenerateKey()
	require.NoError(t, err)

	sk2, err := NewPrivateKeyFromBase64(sk.Base64())
	require.NoError(t, err)
	require.True(t, sk.Public().Equal(sk2.Public()))

	pk, err := NewPublicKeyFromBase64(sk.Public().Base64())
	require.NoError(t, err)
	require.True(t, pk.Equal(sk.Public()))

	_, err = NewPublicKeyFromBase64("not base64!")
	require.Error(t, err)
	_, err = NewPrivateKeyFromBase64("dG9vIHNob3J0")
	require.Error(t, err)
}
