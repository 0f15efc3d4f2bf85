package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"provtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var rmLogger = flogging.MustGetLogger("provtrace.rolemanager")

// roleMemberObjectType is the composite key object type for role membership
// records. Attributes: role, principal.
const roleMemberObjectType = "RoleMember"

// ValidRoles defines the set of permissible roles in the system.
var ValidRoles = map[string]bool{
	model.RoleAdmin:       true,
	model.RoleFarmer:      true,
	model.RoleDistributor: true,
	model.RoleRetailer:    true,
}

// RoleManager answers role-membership queries and applies grants. Membership
// is modelled as one ledger record per (role, principal) pair; a principal
// holds a role iff its record exists.
type RoleManager struct {
	Ctx contractapi.TransactionContextInterface
}

// NewRoleManager creates a new instance of RoleManager.
func NewRoleManager(ctx contractapi.TransactionContextInterface) *RoleManager {
	return &RoleManager{Ctx: ctx}
}

func (rm *RoleManager) getListOfValidRoles() []string {
	keys := make([]string, 0, len(ValidRoles))
	for k := range ValidRoles {
		keys = append(keys, k)
	}
	return keys
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func (rm *RoleManager) createMemberCompositeKey(role, principal string) (string, error) {
	return rm.Ctx.GetStub().CreateCompositeKey(roleMemberObjectType, []string{role, principal})
}

// GetCurrentPrincipal retrieves the full client identity of the current
// transactor. This identity string is the Principal everywhere in the system:
// it is stored as product owner and compared for ownership checks.
func (rm *RoleManager) GetCurrentPrincipal() (string, error) {
	clientIdentity := rm.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// Grant adds principal to the role's member set. Idempotent: granting a role
// the principal already holds is a no-op. Callable only by an admin.
func (rm *RoleManager) Grant(role, principal string) error {
	callerID, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("failed to get caller identity for Grant: %w", err)
	}
	isCallerAdmin, err := rm.HasRole(model.RoleAdmin, callerID)
	if err != nil {
		return fmt.Errorf("failed to verify caller admin status for Grant: %w", err)
	}
	if !isCallerAdmin {
		return fmt.Errorf("%w: caller '%s' is not an admin and cannot grant roles", ErrUnauthorized, callerID)
	}
	return rm.grantUnchecked(role, principal, callerID)
}

// grantUnchecked writes the membership record without an admin check. Used by
// Grant after authorization and by BootstrapLedger for the initial grants.
func (rm *RoleManager) grantUnchecked(role, principal, grantedBy string) error {
	roleLower := normalizeRole(role)
	if !ValidRoles[roleLower] {
		return fmt.Errorf("invalid role: '%s'. Valid roles are: %v", role, rm.getListOfValidRoles())
	}
	if strings.TrimSpace(principal) == "" {
		return errors.New("principal cannot be empty")
	}

	memberKey, err := rm.createMemberCompositeKey(roleLower, principal)
	if err != nil {
		return fmt.Errorf("failed to create membership key for role '%s': %w", roleLower, err)
	}
	existing, err := rm.Ctx.GetStub().GetState(memberKey)
	if err != nil {
		return fmt.Errorf("failed to check existing membership for '%s' in role '%s': %w", principal, roleLower, err)
	}
	if existing != nil {
		rmLogger.Infof("Principal '%s' already holds role '%s'. No action needed.", principal, roleLower)
		return nil
	}

	now, err := rm.getCurrentTxTimestamp()
	if err != nil {
		return err
	}
	grant := model.RoleGrant{
		ObjectType: roleMemberObjectType,
		Role:       roleLower,
		Principal:  principal,
		GrantedBy:  grantedBy,
		GrantedAt:  now,
	}
	grantBytes, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal RoleGrant for '%s': %w", principal, err)
	}
	if err := rm.Ctx.GetStub().PutState(memberKey, grantBytes); err != nil {
		return fmt.Errorf("failed to save role membership for '%s' in role '%s': %w", principal, roleLower, err)
	}
	rmLogger.Infof("Role '%s' granted to principal '%s' by '%s'.", roleLower, principal, grantedBy)
	return nil
}

// Revoke removes principal from the role's member set. The registry itself
// never calls this; it exists because the access-control primitive supports
// it. Idempotent, admin-gated.
func (rm *RoleManager) Revoke(role, principal string) error {
	callerID, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("failed to get caller identity for Revoke: %w", err)
	}
	isCallerAdmin, err := rm.HasRole(model.RoleAdmin, callerID)
	if err != nil {
		return fmt.Errorf("failed to verify caller admin status for Revoke: %w", err)
	}
	if !isCallerAdmin {
		return fmt.Errorf("%w: caller '%s' is not an admin and cannot revoke roles", ErrUnauthorized, callerID)
	}

	roleLower := normalizeRole(role)
	memberKey, err := rm.createMemberCompositeKey(roleLower, principal)
	if err != nil {
		return fmt.Errorf("failed to create membership key for role '%s': %w", roleLower, err)
	}
	existing, err := rm.Ctx.GetStub().GetState(memberKey)
	if err != nil {
		return fmt.Errorf("failed to check existing membership for '%s' in role '%s': %w", principal, roleLower, err)
	}
	if existing == nil {
		rmLogger.Infof("Principal '%s' does not hold role '%s'. No action taken for revocation.", principal, roleLower)
		return nil
	}
	if err := rm.Ctx.GetStub().DelState(memberKey); err != nil {
		return fmt.Errorf("failed to remove role membership for '%s' in role '%s': %w", principal, roleLower, err)
	}
	rmLogger.Infof("Role '%s' revoked from principal '%s' by admin '%s'.", roleLower, principal, callerID)
	return nil
}

// HasRole reports whether principal holds role. Pure query, never fails on a
// missing membership.
func (rm *RoleManager) HasRole(role, principal string) (bool, error) {
	roleLower := normalizeRole(role)
	memberKey, err := rm.createMemberCompositeKey(roleLower, principal)
	if err != nil {
		return false, fmt.Errorf("failed to create membership key for role '%s': %w", roleLower, err)
	}
	memberBytes, err := rm.Ctx.GetStub().GetState(memberKey)
	if err != nil {
		return false, fmt.Errorf("ledger error checking role '%s' for '%s': %w", roleLower, principal, err)
	}
	return memberBytes != nil, nil
}

// RequireRole fails with ErrUnauthorized unless the current transactor holds
// the given role. Admins get no bypass: operation gates are strict role
// membership tests.
func (rm *RoleManager) RequireRole(requiredRole string) error {
	callerID, err := rm.GetCurrentPrincipal()
	if err != nil {
		return fmt.Errorf("failed to get current transactor identity for RequireRole: %w", err)
	}
	has, err := rm.HasRole(requiredRole, callerID)
	if err != nil {
		return fmt.Errorf("error checking role '%s' for '%s': %w", requiredRole, callerID, err)
	}
	if !has {
		return fmt.Errorf("%w: principal '%s' does not have required role '%s'", ErrUnauthorized, callerID, requiredRole)
	}
	rmLogger.Debugf("Role check passed for role '%s' for principal '%s'.", requiredRole, callerID)
	return nil
}

// AnyAdminExists checks whether any admin membership record is on the ledger.
func (rm *RoleManager) AnyAdminExists() (bool, error) {
	iterator, err := rm.Ctx.GetStub().GetStateByPartialCompositeKey(roleMemberObjectType, []string{model.RoleAdmin})
	if err != nil {
		return false, fmt.Errorf("failed to query admin memberships for AnyAdminExists: %w", err)
	}
	defer iterator.Close()
	return iterator.HasNext(), nil
}

// GetRoleMembers returns every principal holding the given role.
func (rm *RoleManager) GetRoleMembers(role string) ([]string, error) {
	roleLower := normalizeRole(role)
	if !ValidRoles[roleLower] {
		return nil, fmt.Errorf("invalid role: '%s'. Valid roles are: %v", role, rm.getListOfValidRoles())
	}

	resultsIterator, err := rm.Ctx.GetStub().GetStateByPartialCompositeKey(roleMemberObjectType, []string{roleLower})
	if err != nil {
		return nil, fmt.Errorf("failed to get membership iterator for role '%s': %w", roleLower, err)
	}
	defer resultsIterator.Close()

	members := []string{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			rmLogger.Warningf("Failed to get next membership from iterator for role '%s': %v. Skipping.", roleLower, iterErr)
			continue
		}
		var grant model.RoleGrant
		if err := json.Unmarshal(queryResponse.Value, &grant); err != nil {
			rmLogger.Warningf("Failed to unmarshal RoleGrant for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		members = append(members, grant.Principal)
	}
	return members, nil // Will be [] if empty, not null
}

func (rm *RoleManager) getCurrentTxTimestamp() (time.Time, error) {
	ts, err := rm.Ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}
