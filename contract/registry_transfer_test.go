package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferProductUpdatesOwner(t *testing.T) {
	stub, s := registryFixture(t)
	require.NoError(t, s.AddProduct(ctxFor(stub, farmerAliceID), "Apple", "USA", true, true))
	stub.clearEvents()

	require.NoError(t, s.TransferProduct(ctxFor(stub, farmerAliceID), 0, buyerCarolID))

	product, err := s.GetProduct(ctxFor(stub, strangerID), 0)
	require.NoError(t, err)
	assert.Equal(t, buyerCarolID, product.CurrentOwnerID)

	require.Len(t, stub.events, 1)
	assert.Equal(t, "ProductTransferred", stub.events[0].name)
	payload := decodeEvent(t, stub.events[0])
	assert.Equal(t, float64(0), payload["productId"])
	assert.Equal(t, farmerAliceID, payload["previousOwner"])
	assert.Equal(t, buyerCarolID, payload["newOwner"])
}

func TestTransferProductOnlyByCurrentOwner(t *testing.T) {
	stub, s := registryFixture(t)
	require.NoError(t, s.AddProduct(ctxFor(stub, farmerAliceID), "Apple", "USA", true, true))
	require.NoError(t, s.TransferProduct(ctxFor(stub, farmerAliceID), 0, buyerCarolID))
	stub.clearEvents()

	// The original owner has handed the product off and may no longer move it.
	err := s.TransferProduct(ctxFor(stub, farmerAliceID), 0, strangerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Empty(t, stub.events)

	// The new owner can, regardless of holding any role at all.
	require.NoError(t, s.TransferProduct(ctxFor(stub, buyerCarolID), 0, strangerID))

	product, err := s.GetProduct(ctxFor(stub, strangerID), 0)
	require.NoError(t, err)
	assert.Equal(t, strangerID, product.CurrentOwnerID)
}

func TestTransferProductAdminHasNoSpecialPower(t *testing.T) {
	stub, s := registryFixture(t)
	require.NoError(t, s.AddProduct(ctxFor(stub, farmerAliceID), "Apple", "USA", true, true))

	// Ownership gates the transfer; the deployer's admin role does not help.
	err := s.TransferProduct(ctxFor(stub, deployerID), 0, buyerCarolID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestTransferProductUnknownProduct(t *testing.T) {
	stub, s := registryFixture(t)

	err := s.TransferProduct(ctxFor(stub, farmerAliceID), 3, buyerCarolID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, stub.events)
}

func TestTransferProductToSelfStillEmitsEvent(t *testing.T) {
	stub, s := registryFixture(t)
	require.NoError(t, s.AddProduct(ctxFor(stub, farmerAliceID), "Apple", "USA", true, true))
	stub.clearEvents()

	require.NoError(t, s.TransferProduct(ctxFor(stub, farmerAliceID), 0, farmerAliceID))

	product, err := s.GetProduct(ctxFor(stub, strangerID), 0)
	require.NoError(t, err)
	assert.Equal(t, farmerAliceID, product.CurrentOwnerID)

	require.Len(t, stub.events, 1)
	payload := decodeEvent(t, stub.events[0])
	assert.Equal(t, farmerAliceID, payload["previousOwner"])
	assert.Equal(t, farmerAliceID, payload["newOwner"])
}

func TestTransferProductRejectsBlankNewOwner(t *testing.T) {
	stub, s := registryFixture(t)
	require.NoError(t, s.AddProduct(ctxFor(stub, farmerAliceID), "Apple", "USA", true, true))
	stub.clearEvents()

	require.Error(t, s.TransferProduct(ctxFor(stub, farmerAliceID), 0, " "))
	assert.Empty(t, stub.events)
}

func TestTransferProductLeavesMetadataUntouched(t *testing.T) {
	stub, s := registryFixture(t)
	require.NoError(t, s.AddProduct(ctxFor(stub, farmerAliceID), "Apple", "USA", true, false))

	before, err := s.GetProduct(ctxFor(stub, strangerID), 0)
	require.NoError(t, err)

	require.NoError(t, s.TransferProduct(ctxFor(stub, farmerAliceID), 0, buyerCarolID))

	after, err := s.GetProduct(ctxFor(stub, strangerID), 0)
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Origin, after.Origin)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	assert.Equal(t, before.OrganicCertified, after.OrganicCertified)
	assert.Equal(t, before.FairTradeCertified, after.FairTradeCertified)
}
