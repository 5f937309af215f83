package interfaces

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractAddressFromHex(t *testing.T) {
	addr, err := NewContractAddressFromHex("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "1111111111111111111111111111111111111111", addr.String())

	// 0x prefix is optional
	same, err := NewContractAddressFromHex("1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, addr.Equal(same))

	_, err = NewContractAddressFromHex("0x1111")
	assert.Error(t, err)

	_, err = NewContractAddressFromHex("0xzz11111111111111111111111111111111111111")
	assert.Error(t, err)
}

func TestSaltFromHex(t *testing.T) {
	salt, err := NewSaltFromHex("0x" + strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", 32), salt.String())

	_, err = NewSaltFromHex("abcd")
	assert.Error(t, err)
}

func TestCapabilityIDFromHex(t *testing.T) {
	id, err := NewCapabilityIDFromHex("0x01ffc9a7")
	require.NoError(t, err)
	assert.Equal(t, "01ffc9a7", id.String())

	_, err = NewCapabilityIDFromHex("0x01ffc9")
	assert.Error(t, err)
}

func testBinding(t *testing.T) Binding {
	t.Helper()

	impl, err := NewContractAddressFromHex("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	tokenContract, err := NewContractAddressFromHex("0x2222222222222222222222222222222222222222")
	require.NoError(t, err)

	return Binding{
		Implementation: impl,
		Salt:           Salt{},
		ChainID:        big.NewInt(1),
		TokenContract:  tokenContract,
		TokenID:        big.NewInt(42),
	}
}

func TestBindingValidate(t *testing.T) {
	b := testBinding(t)
	require.NoError(t, b.Validate())

	missingChain := b
	missingChain.ChainID = nil
	assert.Error(t, missingChain.Validate())

	missingToken := b
	missingToken.TokenID = nil
	assert.Error(t, missingToken.Validate())

	negative := b
	negative.TokenID = big.NewInt(-1)
	assert.Error(t, negative.Validate())

	tooWide := b
	tooWide.ChainID = new(big.Int).Lsh(big.NewInt(1), 256)
	assert.Error(t, tooWide.Validate())
}

func TestBindingEqual(t *testing.T) {
	b := testBinding(t)

	same := testBinding(t)
	assert.True(t, b.Equal(same))

	otherToken := testBinding(t)
	otherToken.TokenID = big.NewInt(43)
	assert.False(t, b.Equal(otherToken))

	otherSalt := testBinding(t)
	otherSalt.Salt[31] = 0x01
	assert.False(t, b.Equal(otherSalt))
}

func TestBindingDigest(t *testing.T) {
	b := testBinding(t)

	d1, err := b.Digest()
	require.NoError(t, err)
	d2, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "digest must be deterministic")

	other := testBinding(t)
	other.TokenID = big.NewInt(43)
	d3, err := other.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3, "distinct bindings must not share a digest")

	invalid := b
	invalid.ChainID = nil
	_, err = invalid.Digest()
	assert.Error(t, err)
}

func TestComputeID(t *testing.T) {
	data := []byte("artifact bytes")
	id := ComputeID(data)
	assert.Equal(t, crypto.Keccak256(data), id.Bytes())

	other := ComputeID([]byte("different bytes"))
	assert.False(t, id.Equal(other))
}

func TestArtifactStoreLocation(t *testing.T) {
	loc, err := NewArtifactStoreLocation("s3://mybucket/artifacts?region=us-east-1")
	require.NoError(t, err)
	assert.True(t, loc.IsS3())
	assert.Equal(t, "mybucket", loc.Host)
	assert.Equal(t, "us-east-1", loc.GetParam("region"))

	_, err = NewArtifactStoreLocation("ftp://example.com/data")
	assert.Error(t, err)
}
