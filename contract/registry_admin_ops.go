package contract

import (
	"errors"
	"fmt"

	"provtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Admin Operations ---

// BootstrapLedger initializes the ledger: the caller (deployer) is granted
// admin plus all three operational roles. The all-roles grant is a deliberate
// bootstrap convenience, not an accident; subsequent grants go through
// GrantRole under admin control. Runs at most once.
func (s *ProvenanceSmartContract) BootstrapLedger(ctx contractapi.TransactionContextInterface) error {
	logger.Info("Attempting to bootstrap ledger with initial admin...")
	rm := NewRoleManager(ctx)

	anyAdminAlreadyExists, err := rm.AnyAdminExists()
	if err != nil {
		return fmt.Errorf("BootstrapLedger: failed to check if any admin exists: %w", err)
	}
	if anyAdminAlreadyExists {
		msg := "system already has admins or is bootstrapped. BootstrapLedger should not be re-run."
		logger.Info(msg)
		return errors.New(msg)
	}

	caller, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("BootstrapLedger: failed to get caller identity for bootstrap: %w", err)
	}

	logger.Infof("BootstrapLedger: Granting admin and all operational roles to deployer '%s'.", caller)

	for _, role := range []string{model.RoleAdmin, model.RoleFarmer, model.RoleDistributor, model.RoleRetailer} {
		if err := rm.grantUnchecked(role, caller, caller); err != nil {
			return fmt.Errorf("BootstrapLedger: failed to grant bootstrap role '%s' to '%s': %w", role, caller, err)
		}
	}

	logger.Infof("BootstrapLedger: Ledger bootstrapped successfully. Principal '%s' holds admin, farmer, distributor and retailer roles.", caller)
	return nil
}
