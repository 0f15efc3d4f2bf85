package contract

import (
	"fmt"

	"provtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---
// Reads carry no authorization gate and have no side effects.

// GetProduct returns the product record for the given id.
func (s *ProvenanceSmartContract) GetProduct(ctx contractapi.TransactionContextInterface, productID uint64) (*model.Product, error) {
	logger.Debugf("GetProduct: Querying product %d", productID)
	return s.getProductByID(ctx, productID)
}

// GetCheckpoints returns the full checkpoint journal for the given product in
// insertion order. No cursor, no pagination: the whole journal, every call.
func (s *ProvenanceSmartContract) GetCheckpoints(ctx contractapi.TransactionContextInterface, productID uint64) ([]model.Checkpoint, error) {
	logger.Debugf("GetCheckpoints: Querying journal for product %d", productID)
	journal, err := s.getJournalByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return journal.Entries, nil // Will be [] if empty, not null
}

// GetProductCount returns the product counter: the number of products created
// so far and the id the next AddProduct will assign.
func (s *ProvenanceSmartContract) GetProductCount(ctx contractapi.TransactionContextInterface) (uint64, error) {
	logger.Debug("GetProductCount: Querying product counter")
	return s.readProductCount(ctx)
}

// GetMyProducts returns every product currently owned by the caller.
func (s *ProvenanceSmartContract) GetMyProducts(ctx contractapi.TransactionContextInterface) ([]*model.Product, error) {
	rm := NewRoleManager(ctx)
	caller, err := rm.GetCurrentPrincipal()
	if err != nil {
		return nil, fmt.Errorf("GetMyProducts: failed to get caller identity: %w", err)
	}
	logger.Debugf("GetMyProducts: Querying products owned by '%s'", caller)

	count, err := s.readProductCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetMyProducts: %w", err)
	}

	owned := []*model.Product{}
	for id := uint64(0); id < count; id++ {
		product, err := s.getProductByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("GetMyProducts: failed to read product %d: %w", id, err)
		}
		if product.CurrentOwnerID == caller {
			owned = append(owned, product)
		}
	}
	logger.Debugf("GetMyProducts: Principal '%s' owns %d of %d products", caller, len(owned), count)
	return owned, nil // Will be [] if empty, not null
}
