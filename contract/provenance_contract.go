package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("provtrace.provenancecontract")

// Object types for composite keys, also usable as 'docType' in CouchDB.
const (
	productObjectType = "Product"
	journalObjectType = "CheckpointJournal"
)

// productCounterKey holds the next product id to allocate. The counter is the
// sole existence oracle: product id X exists iff X < counter.
const productCounterKey = "productIdCounter"

// ProvenanceSmartContract provides functions for managing a provenance ledger
// of tracked physical goods: product registration, custody checkpoints, and
// ownership transfers under role-based access control.
type ProvenanceSmartContract struct {
	contractapi.Contract
}

// Instantiate is called during chaincode instantiation.
func (s *ProvenanceSmartContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("ProvenanceSmartContract Instantiated/Upgraded")
}

// --- Role Management Wrappers (Delegating to RoleManager) ---
// Direct pass-throughs keeping the contract API clean.

func (s *ProvenanceSmartContract) GrantRole(ctx contractapi.TransactionContextInterface, role, principal string) error {
	logger.Infof("Chaincode Call: GrantRole '%s' to '%s'", role, principal)
	return NewRoleManager(ctx).Grant(role, principal)
}

func (s *ProvenanceSmartContract) RevokeRole(ctx contractapi.TransactionContextInterface, role, principal string) error {
	logger.Infof("Chaincode Call: RevokeRole '%s' from '%s'", role, principal)
	return NewRoleManager(ctx).Revoke(role, principal)
}

func (s *ProvenanceSmartContract) HasRole(ctx contractapi.TransactionContextInterface, role, principal string) (bool, error) {
	logger.Debugf("Chaincode Call: HasRole '%s' for '%s'", role, principal)
	return NewRoleManager(ctx).HasRole(role, principal)
}

// GetRoleMembers returns all principals holding the given role. Public query,
// no authorization gate.
func (s *ProvenanceSmartContract) GetRoleMembers(ctx contractapi.TransactionContextInterface, role string) ([]string, error) {
	logger.Debugf("Chaincode Call: GetRoleMembers for role '%s'", role)
	return NewRoleManager(ctx).GetRoleMembers(role)
}
