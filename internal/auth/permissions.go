package auth

import "errors"

// Роли совпадают с models.UserRole
const (
	RolePharmacist = "pharmacist"
	RolePharmacy   = "pharmacy"
)

// Permissions - что разрешено каждой роли
var Permissions = map[string][]string{
	RolePharmacist: {
		"jobs:search",
		"jobs:apply",
		"jobs:save",
		"jobs:complete",
		"rate:pharmacy",
		"documents:write",
		"messages:write",
	},
	RolePharmacy: {
		"jobs:post",
		"jobs:complete",
		"applicants:manage",
		"rate:pharmacist",
		"dashboard:read",
		"documents:write",
		"messages:write",
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// CanPerformAction проверяет может ли пользователь выполнить действие
func CanPerformAction(claims *Claims, permission string) bool {
	return claims != nil && HasPermission(claims.Role, permission)
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RolePharmacist, RolePharmacy:
		return nil
	default:
		return errors.New("invalid role")
	}
}
