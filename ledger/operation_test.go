package ledger_test

import (
	"crypto/rand"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/keys"
	"github.com/workledger/registry-services/ledger"
)

var params = ledger.WorkParams{
	WorkID:      "WORK-1A2B3C4D",
	Title:       "T",
	WorkType:    "text",
	ContentHash: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
	Metadata:    "",
}

func newOperation(t *testing.T) (*ledger.Operation, *keys.Signer) {
	signer, err := keys.GenerateSigner(rand.Reader)
	require.Nil(t, err)
	return &ledger.Operation{
		WorkParams:    params,
		From:          signer.Address(),
		Sequence:      3,
		ResourceLimit: 50000,
		ResourcePrice: 2,
		NetworkID:     110261,
	}, signer
}

func TestWorkParamsValidate(t *testing.T) {
	assert.Nil(t, params.Validate())

	p := params
	p.WorkID = " "
	assert.Contains(t, p.Validate().Error(), "work id")

	p = params
	p.Title = ""
	assert.Contains(t, p.Validate().Error(), "title")

	p = params
	p.ContentHash = ""
	assert.Contains(t, p.Validate().Error(), "content hash")
}

func TestWorkParamsSize(t *testing.T) {
	assert.Equal(t, 13+1+4+64, params.Size())
}

func TestOperationMaxCost(t *testing.T) {
	op, _ := newOperation(t)
	assert.EqualValues(t, 100000, op.MaxCost())

	op.ResourceLimit = math.MaxUint64
	op.ResourcePrice = 1
	assert.Equal(t, uint64(math.MaxUint64), op.MaxCost())

	// Products past 64 bits are capped, not wrapped.
	op.ResourceLimit = 1 << 32
	op.ResourcePrice = 1 << 33
	assert.Equal(t, uint64(math.MaxUint64), op.MaxCost())
	op.ResourceLimit = math.MaxUint64
	op.ResourcePrice = 3
	assert.Equal(t, uint64(math.MaxUint64), op.MaxCost())
}

func TestSignAndVerify(t *testing.T) {
	op, signer := newOperation(t)
	signed, err := ledger.Sign(op, signer)
	require.Nil(t, err)
	assert.Nil(t, signed.Verify())
	assert.True(t, strings.HasPrefix(string(signed.Handle()), "0x"))
	assert.Len(t, string(signed.Handle()), 66)

	// Tampering with any bound field breaks the signature.
	signed.Operation.Sequence = 4
	assert.NotNil(t, signed.Verify())
}

func TestSignWrongSigner(t *testing.T) {
	op, _ := newOperation(t)
	other, err := keys.GenerateSigner(rand.Reader)
	require.Nil(t, err)
	_, err = ledger.Sign(op, other)
	assert.NotNil(t, err)
}

func TestVerifyWrongKey(t *testing.T) {
	op, signer := newOperation(t)
	signed, err := ledger.Sign(op, signer)
	require.Nil(t, err)
	other, err := keys.GenerateSigner(rand.Reader)
	require.Nil(t, err)
	signed.PublicKey = other.PublicKey()
	assert.NotNil(t, signed.Verify())

	signed.PublicKey = []byte("short")
	assert.NotNil(t, signed.Verify())

	signed.Operation = nil
	assert.NotNil(t, signed.Verify())
}
