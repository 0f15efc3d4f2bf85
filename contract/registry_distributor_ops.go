package contract

import (
	"encoding/json"
	"fmt"

	"provtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Distributor Operations ---

// AddCheckpoint appends a custody/location checkpoint to a product's journal.
// The caller must hold the distributor role; checkpoint authority tracks the
// logistics role, not product custody, so the caller need not own the
// product. Entries keep insertion order and are never deduplicated.
func (s *ProvenanceSmartContract) AddCheckpoint(ctx contractapi.TransactionContextInterface,
	productID uint64, location string, description string) error {

	rm := NewRoleManager(ctx)
	caller, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("AddCheckpoint: failed to get caller identity: %w", err)
	}
	if err := rm.RequireRole(model.RoleDistributor); err != nil {
		return err
	}

	logger.Infof("Distributor '%s' adding checkpoint to product %d at '%s'", caller, productID, location)

	if err := s.validateRequiredString(location, "location"); err != nil {
		return err
	}

	journal, err := s.getJournalByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("AddCheckpoint: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("AddCheckpoint: %w", err)
	}

	journal.Entries = append(journal.Entries, model.Checkpoint{
		Location:    location,
		Description: description,
		RecordedAt:  now,
	})

	journalKey, err := s.createJournalCompositeKey(ctx, productID)
	if err != nil {
		return fmt.Errorf("AddCheckpoint: failed to create journal key for product %d: %w", productID, err)
	}
	journalBytes, err := json.Marshal(journal)
	if err != nil {
		return fmt.Errorf("AddCheckpoint: failed to marshal journal for product %d: %w", productID, err)
	}
	if err := ctx.GetStub().PutState(journalKey, journalBytes); err != nil {
		return fmt.Errorf("AddCheckpoint: failed to update journal for product %d: %w", productID, err)
	}

	eventPayload := map[string]interface{}{
		"productId":   productID,
		"location":    location,
		"description": description,
	}
	if err := s.emitEvent(ctx, "CheckpointAdded", eventPayload); err != nil {
		return fmt.Errorf("AddCheckpoint: %w", err)
	}
	logger.Infof("Checkpoint %d appended to product %d by distributor '%s'", len(journal.Entries)-1, productID, caller)
	return nil
}
