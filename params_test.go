package dprio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParametersFromLiteral(t *testing.T) {

	params, err := NewParametersFromLiteral(ParametersLiteral{Dimension: 10})
	require.NoError(t, err)

	require.Equal(t, DefaultModulus, params.Q())
	require.Equal(t, 10, params.Dimension())
	require.Equal(t, 16, params.Domain())
	require.Equal(t, 10+3+16, params.ProofLength())
	require.Equal(t, 16, params.EvalTable().N())
	require.Equal(t, 32, params.ProofTable().N())
	require.Greater(t, params.SoundnessError(), 0.0)
	require.Less(t, params.SoundnessError(), 1e-15)
}

func TestParametersDomainIsStrictlyLarger(t *testing.T) {

	// The domain must have room for the wrap-around constant term, so a
	// power-of-two dimension is pushed to the next power of two.
	params, err := NewParametersFromLiteral(ParametersLiteral{Dimension: 16})
	require.NoError(t, err)
	require.Equal(t, 32, params.Domain())

	params, err = NewParametersFromLiteral(ParametersLiteral{Dimension: 15})
	require.NoError(t, err)
	require.Equal(t, 16, params.Domain())
}

func TestParametersRejectsInvalidLiterals(t *testing.T) {

	_, err := NewParametersFromLiteral(ParametersLiteral{Dimension: 0})
	require.Error(t, err)

	_, err = NewParametersFromLiteral(ParametersLiteral{Q: 12288, Dimension: 4})
	require.Error(t, err)

	// 12289 has a power-of-two subgroup of order at most 2^12, which
	// cannot host the order-2^13 subgroup required by dimension 4095.
	_, err = NewParametersFromLiteral(ParametersLiteral{Q: 12289, Dimension: 4095})
	require.Error(t, err)

	_, err = NewParametersFromLiteral(ParametersLiteral{Q: 12289, Dimension: 7})
	require.NoError(t, err)
}

func TestParametersMarshalling(t *testing.T) {

	params, err := NewParametersFromLiteral(ParametersLiteral{Q: 12289, Dimension: 7})
	require.NoError(t, err)

	data, err := json.Marshal(params)
	require.NoError(t, err)

	var out Parameters
	require.NoError(t, json.Unmarshal(data, &out))
	require.True(t, params.Equal(&out))

	bin, err := params.MarshalBinary()
	require.NoError(t, err)

	var out2 Parameters
	require.NoError(t, out2.UnmarshalBinary(bin))
	require.True(t, params.Equal(&out2))

	// Unmarshalling validates.
	require.Error(t, out2.UnmarshalJSON([]byte(`{"Q":12288,"Dimension":4}`)))
}
