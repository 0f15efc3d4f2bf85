package model

import "time"

// Role names form a flat set. A principal may hold any combination of them;
// authorization is a plain membership test, there is no hierarchy.
const (
	RoleAdmin       = "admin"
	RoleFarmer      = "farmer"
	RoleDistributor = "distributor"
	RoleRetailer    = "retailer" // declared but not consulted by any operation; reserved
)

// RoleGrant records one (role, principal) membership on the ledger.
type RoleGrant struct {
	ObjectType string    `json:"objectType"` // "RoleMember"
	Role       string    `json:"role"`
	Principal  string    `json:"principal"`
	GrantedBy  string    `json:"grantedBy"`
	GrantedAt  time.Time `json:"grantedAt"`
}
