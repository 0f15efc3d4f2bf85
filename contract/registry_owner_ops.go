package contract

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Owner Operations ---

// TransferProduct hands ownership of a product to newOwner. The gate is
// ownership, not role membership: whoever holds the product now may hand it
// to anyone, including themselves (a no-op transfer still emits its event).
// Transfer is instantaneous and unilateral; there is no pending-acceptance
// state.
func (s *ProvenanceSmartContract) TransferProduct(ctx contractapi.TransactionContextInterface,
	productID uint64, newOwner string) error {

	rm := NewRoleManager(ctx)
	caller, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("TransferProduct: failed to get caller identity: %w", err)
	}

	logger.Infof("Principal '%s' transferring product %d to '%s'", caller, productID, newOwner)

	if err := s.validateRequiredString(newOwner, "newOwner"); err != nil {
		return err
	}

	product, err := s.getProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("TransferProduct: %w", err)
	}
	if product.CurrentOwnerID != caller {
		return fmt.Errorf("%w: principal '%s' is not the current owner of product %d", ErrUnauthorized, caller, productID)
	}

	previousOwner := product.CurrentOwnerID
	product.CurrentOwnerID = newOwner

	productKey, err := s.createProductCompositeKey(ctx, productID)
	if err != nil {
		return fmt.Errorf("TransferProduct: failed to create composite key for product %d: %w", productID, err)
	}
	productBytes, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("TransferProduct: failed to marshal product %d: %w", productID, err)
	}
	if err := ctx.GetStub().PutState(productKey, productBytes); err != nil {
		return fmt.Errorf("TransferProduct: failed to update product %d on ledger: %w", productID, err)
	}

	eventPayload := map[string]interface{}{
		"productId":     productID,
		"previousOwner": previousOwner,
		"newOwner":      newOwner,
	}
	if err := s.emitEvent(ctx, "ProductTransferred", eventPayload); err != nil {
		return fmt.Errorf("TransferProduct: %w", err)
	}
	logger.Infof("Product %d transferred from '%s' to '%s'", productID, previousOwner, newOwner)
	return nil
}
