package authz

import (
	"fmt"
	"strconv"
	"strings"
)

// Role ids carried in the JWT role_id claim.
const (
	RoleConsultant = 10
	RoleOperations = 20
	RoleAuditor    = 30
	RoleManagement = 40
	RoleAdmin      = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleOperations || roleID == RoleManagement || roleID == RoleAdmin
}

// IsReadOnly roles may render the scheduler but not change items.
func IsReadOnly(roleID int) bool {
	return roleID == RoleAuditor
}

func IsKnown(roleID int) bool {
	switch roleID {
	case RoleConsultant, RoleOperations, RoleAuditor, RoleManagement, RoleAdmin:
		return true
	}
	return false
}

var roleNames = map[string]int{
	"consultant": RoleConsultant,
	"operations": RoleOperations,
	"auditor":    RoleAuditor,
	"management": RoleManagement,
	"admin":      RoleAdmin,
}

// ParseRole accepts a role name or its numeric id.
func ParseRole(s string) (int, error) {
	if id, ok := roleNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return id, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || !IsKnown(id) {
		return 0, fmt.Errorf("unknown role %q", s)
	}
	return id, nil
}
