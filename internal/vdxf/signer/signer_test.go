package signer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valu/internal/vdxf"
	"valu/internal/vdxf/signer"
	dErrors "valu/pkg/domain-errors"
)

const testKey = "0101010101010101010101010101010101010101010101010101010101010101"

func TestSignAndVerify(t *testing.T) {
	s, err := signer.FromHex(testKey, vdxf.Namespace)
	require.NoError(t, err)

	msg := []byte("endorsement bytes")
	sig, err := s.Sign(msg)
	require.NoError(t, err)

	assert.True(t, sig.IsValid())
	assert.Equal(t, s.IdentityID(), sig.IdentityID)
	assert.Equal(t, vdxf.Namespace, sig.SystemID)
	assert.Len(t, sig.Signature, 65)
	assert.NoError(t, signer.Verify(sig, msg))

	again, err := s.Sign(msg)
	require.NoError(t, err)
	assert.Equal(t, sig.Signature, again.Signature, "signatures are deterministic")
}

func TestVerifyRejects(t *testing.T) {
	s, err := signer.FromHex(testKey, vdxf.Namespace)
	require.NoError(t, err)
	msg := []byte("payload")

	t.Run("different message", func(t *testing.T) {
		sig, err := s.Sign(msg)
		require.NoError(t, err)
		assert.True(t, dErrors.HasCode(signer.Verify(sig, []byte("other")), dErrors.CodeInvalidInput))
	})

	t.Run("wrong identity", func(t *testing.T) {
		sig, err := s.Sign(msg)
		require.NoError(t, err)
		sig.IdentityID = vdxf.ClaimKey.ID
		assert.True(t, dErrors.HasCode(signer.Verify(sig, msg), dErrors.CodeInvalidInput))
	})

	t.Run("unsupported hash type", func(t *testing.T) {
		sig, err := s.Sign(msg)
		require.NoError(t, err)
		sig.HashType = vdxf.HashTypeSHA256D
		assert.True(t, dErrors.HasCode(signer.Verify(sig, msg), dErrors.CodeUnsupportedType))
	})

	t.Run("incomplete signature", func(t *testing.T) {
		assert.Error(t, signer.Verify(&vdxf.SignatureData{}, msg))
	})
}

func TestFromHexRejectsBadKeys(t *testing.T) {
	_, err := signer.FromHex("zz", vdxf.Namespace)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = signer.FromHex("0101", vdxf.Namespace)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
