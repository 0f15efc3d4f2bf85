package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"provtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// The two terminal failure kinds. Every failed operation wraps one of these
// so callers can tell "you can't do this" from "this doesn't exist" with
// errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// --- Core Helper Methods (used across multiple operations) ---

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func (s *ProvenanceSmartContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

// validateRequiredString rejects blank input. Text fields carry no maximum
// length; capping them is a deferred hardening concern.
func (s *ProvenanceSmartContract) validateRequiredString(input, field string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}

func (s *ProvenanceSmartContract) createProductCompositeKey(ctx contractapi.TransactionContextInterface, productID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(productObjectType, []string{strconv.FormatUint(productID, 10)})
}

func (s *ProvenanceSmartContract) createJournalCompositeKey(ctx contractapi.TransactionContextInterface, productID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(journalObjectType, []string{strconv.FormatUint(productID, 10)})
}

// --- Product Counter ---

// readProductCount returns the current counter value: the number of products
// created so far, and the id the next created product will receive.
func (s *ProvenanceSmartContract) readProductCount(ctx contractapi.TransactionContextInterface) (uint64, error) {
	counterBytes, err := ctx.GetStub().GetState(productCounterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read product counter: %w", err)
	}
	if counterBytes == nil {
		return 0, nil
	}
	count, err := strconv.ParseUint(string(counterBytes), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt product counter value '%s': %w", string(counterBytes), err)
	}
	return count, nil
}

func (s *ProvenanceSmartContract) writeProductCount(ctx contractapi.TransactionContextInterface, count uint64) error {
	if err := ctx.GetStub().PutState(productCounterKey, []byte(strconv.FormatUint(count, 10))); err != nil {
		return fmt.Errorf("failed to write product counter: %w", err)
	}
	return nil
}

// requireProductExists enforces the existence oracle: id exists iff it is
// below the counter. Ids are never freed, so the comparison is exact.
func (s *ProvenanceSmartContract) requireProductExists(ctx contractapi.TransactionContextInterface, productID uint64) error {
	count, err := s.readProductCount(ctx)
	if err != nil {
		return err
	}
	if productID >= count {
		return fmt.Errorf("%w: product with id %d does not exist", ErrNotFound, productID)
	}
	return nil
}

// getProductByID is an internal helper to retrieve and unmarshal a product.
// Existence is decided by the counter before the state read.
func (s *ProvenanceSmartContract) getProductByID(ctx contractapi.TransactionContextInterface, productID uint64) (*model.Product, error) {
	if err := s.requireProductExists(ctx, productID); err != nil {
		return nil, err
	}
	productKey, err := s.createProductCompositeKey(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("getProductByID: failed to create key for product %d: %w", productID, err)
	}
	productBytes, err := ctx.GetStub().GetState(productKey)
	if err != nil {
		return nil, fmt.Errorf("getProductByID: failed to read product %d from ledger: %w", productID, err)
	}
	if productBytes == nil {
		// Counter says the id was allocated; a missing record is corruption,
		// not a NotFound the caller should handle.
		return nil, fmt.Errorf("getProductByID: product %d is below the counter but has no ledger record", productID)
	}
	var product model.Product
	if err := json.Unmarshal(productBytes, &product); err != nil {
		return nil, fmt.Errorf("getProductByID: failed to unmarshal product %d data: %w", productID, err)
	}
	return &product, nil
}

// getJournalByID retrieves a product's checkpoint journal. The journal record
// is created together with the product, so a missing record is corruption.
func (s *ProvenanceSmartContract) getJournalByID(ctx contractapi.TransactionContextInterface, productID uint64) (*model.CheckpointJournal, error) {
	if err := s.requireProductExists(ctx, productID); err != nil {
		return nil, err
	}
	journalKey, err := s.createJournalCompositeKey(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("getJournalByID: failed to create journal key for product %d: %w", productID, err)
	}
	journalBytes, err := ctx.GetStub().GetState(journalKey)
	if err != nil {
		return nil, fmt.Errorf("getJournalByID: failed to read journal for product %d: %w", productID, err)
	}
	if journalBytes == nil {
		return nil, fmt.Errorf("getJournalByID: product %d exists but has no journal record", productID)
	}
	var journal model.CheckpointJournal
	if err := json.Unmarshal(journalBytes, &journal); err != nil {
		return nil, fmt.Errorf("getJournalByID: failed to unmarshal journal for product %d: %w", productID, err)
	}
	if journal.Entries == nil {
		journal.Entries = []model.Checkpoint{}
	}
	return &journal, nil
}

// emitEvent sends a chaincode event. A failure here fails the whole
// operation: the state change and its notification commit in the same
// transaction or not at all.
func (s *ProvenanceSmartContract) emitEvent(ctx contractapi.TransactionContextInterface, eventName string, payload map[string]interface{}) error {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("emitEvent: failed to marshal payload for event '%s': %w", eventName, err)
	}
	if err := ctx.GetStub().SetEvent(eventName, eventBytes); err != nil {
		return fmt.Errorf("emitEvent: failed to set event '%s': %w", eventName, err)
	}
	return nil
}
