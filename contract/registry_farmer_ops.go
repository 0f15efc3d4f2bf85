package contract

import (
	"encoding/json"
	"fmt"

	"provtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Farmer Operations ---

// AddProduct registers a new tracked product. The caller must hold the farmer
// role and becomes the product's first owner. The id is allocated from the
// product counter (current value), which is then incremented; the assigned id
// is observable through the ProductCreated event or GetProductCount.
func (s *ProvenanceSmartContract) AddProduct(ctx contractapi.TransactionContextInterface,
	name string, origin string, organicCertified bool, fairTradeCertified bool) error {

	rm := NewRoleManager(ctx)
	caller, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("AddProduct: failed to get caller identity: %w", err)
	}
	if err := rm.RequireRole(model.RoleFarmer); err != nil {
		return err
	}

	logger.Infof("Farmer '%s' creating product '%s' (origin: '%s')", caller, name, origin)

	if err := s.validateRequiredString(name, "name"); err != nil {
		return err
	}
	if err := s.validateRequiredString(origin, "origin"); err != nil {
		return err
	}

	productID, err := s.readProductCount(ctx)
	if err != nil {
		return fmt.Errorf("AddProduct: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("AddProduct: %w", err)
	}

	product := model.Product{
		ObjectType:         productObjectType,
		ID:                 productID,
		Name:               name,
		Origin:             origin,
		CreatedAt:          now,
		OrganicCertified:   organicCertified,
		FairTradeCertified: fairTradeCertified,
		CurrentOwnerID:     caller,
	}
	productKey, err := s.createProductCompositeKey(ctx, productID)
	if err != nil {
		return fmt.Errorf("AddProduct: failed to create composite key for product %d: %w", productID, err)
	}
	productBytes, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("AddProduct: failed to marshal product %d: %w", productID, err)
	}
	if err := ctx.GetStub().PutState(productKey, productBytes); err != nil {
		return fmt.Errorf("AddProduct: failed to save product %d to ledger: %w", productID, err)
	}

	// The journal record is created with the product so appends and reads
	// never have to special-case a missing journal.
	journal := model.CheckpointJournal{
		ObjectType: journalObjectType,
		ProductID:  productID,
		Entries:    []model.Checkpoint{},
	}
	journalKey, err := s.createJournalCompositeKey(ctx, productID)
	if err != nil {
		return fmt.Errorf("AddProduct: failed to create journal key for product %d: %w", productID, err)
	}
	journalBytes, err := json.Marshal(journal)
	if err != nil {
		return fmt.Errorf("AddProduct: failed to marshal journal for product %d: %w", productID, err)
	}
	if err := ctx.GetStub().PutState(journalKey, journalBytes); err != nil {
		return fmt.Errorf("AddProduct: failed to save journal for product %d: %w", productID, err)
	}

	if err := s.writeProductCount(ctx, productID+1); err != nil {
		return fmt.Errorf("AddProduct: %w", err)
	}

	eventPayload := map[string]interface{}{
		"productId": productID,
		"name":      name,
		"origin":    origin,
		"owner":     caller,
	}
	if err := s.emitEvent(ctx, "ProductCreated", eventPayload); err != nil {
		return fmt.Errorf("AddProduct: %w", err)
	}
	logger.Infof("Product %d ('%s') created successfully by farmer '%s'", productID, name, caller)
	return nil
}
