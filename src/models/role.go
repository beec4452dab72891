package models

import "campusgate/src/types"

type Role struct {
	Name string `gorm:"primarykey" json:"name"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

type Permission struct {
	Name string `gorm:"primarykey" json:"name"`
}

// DefaultRolePermissions is seeded on boot and copied into issued tokens.
var DefaultRolePermissions = map[types.Role][]string{
	types.ROLE_STUDENT:           {"gatepass:create", "gatepass:read:own"},
	types.ROLE_STAFF:             {"gatepass:create", "gatepass:read:own", "gatepass:read:department", "gatepass:decide:staff"},
	types.ROLE_HOD:               {"gatepass:create", "gatepass:read:own", "gatepass:read:department", "gatepass:decide:hod"},
	types.ROLE_HOSTEL_WARDEN:     {"gatepass:read:all", "gatepass:decide:hostel_warden"},
	types.ROLE_ACADEMIC_DIRECTOR: {"gatepass:read:all", "gatepass:decide:academic_director"},
	types.ROLE_SECURITY:          {"gatepass:read:all", "gatepass:checkout"},
	types.ROLE_ADMIN:             {"gatepass:read:all"},
}
