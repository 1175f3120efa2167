package roles

import (
	"sync"
)

// DefaultDefinitions returns the platform role table.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Role:  Patient,
			Level: 0,
			Permissions: []string{
				"read:own_records",
				"read:handouts",
			},
		},
		{
			Role:  PharmaRep,
			Level: 0,
			Permissions: []string{
				"read:pharma_schedule",
				"write:pharma_schedule",
			},
		},
		{
			Role:  Staff,
			Level: 1,
			Permissions: []string{
				"read:dashboard",
				"read:profile",
				"write:profile",
				"read:inventory",
				"write:inventory",
				"read:handouts",
				"write:handouts",
				"read:schedule",
				"read:pharma_schedule",
				"read:compliance",
				"read:call_center",
				"write:call_center",
			},
			AppAccess: AccessWrite,
		},
		{
			Role:     ClinicalStaff,
			Level:    2,
			Inherits: []Role{Staff},
			Permissions: []string{
				"read:patients",
				"write:patients",
				"read:medications",
				"read:authorizations",
				"write:authorizations",
			},
			AppAccess: AccessWrite,
		},
		{
			Role:     Manager,
			Level:    3,
			Inherits: []Role{ClinicalStaff},
			Permissions: []string{
				"read:analytics",
				"read:reports",
				"write:schedule",
				"manage:staffing",
				"approve:purchases",
				"read:batch_closeout",
				"write:batch_closeout",
			},
			AppAccess: AccessAdmin,
		},
		{
			Role:     TechnicalAdmin,
			Level:    4,
			Inherits: []Role{Manager},
			Permissions: []string{
				"manage:users",
				"manage:integrations",
				"manage:settings",
				"read:audit_logs",
			},
			AllLocations: true,
			AppAccess:    AccessAdmin,
		},
		{
			Role:         SuperAdmin,
			Level:        5,
			Inherits:     []Role{TechnicalAdmin},
			Permissions:  []string{"*"},
			AllLocations: true,
			AllApps:      true,
			AppAccess:    AccessAdmin,
		},
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process wide registry built from DefaultDefinitions.
// Additional definitions registered on it are visible to every caller.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(DefaultDefinitions()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})

	return defaultRegistry
}

// HasPermission checks permission against the default registry.
func HasPermission(role Role, permission string, explicit ...string) bool {
	return Default().HasPermission(role, permission, explicit...)
}

// HasRole compares levels in the default registry.
func HasRole(userRole, requiredRole Role) bool {
	return Default().HasRole(userRole, requiredRole)
}

// HasLocationAccess checks location access in the default registry.
func HasLocationAccess(role Role, userLocations []string, requiredLocation string) bool {
	return Default().HasLocationAccess(role, userLocations, requiredLocation)
}
