package application

import (
	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

// World roles in descending privilege: admin > editor > commenter >
// viewer. Weave owners and admins implicitly hold world admin on every
// world in their weave, which is resolved by the tenancy service.
var worldRoleRank = map[string]int{
	"admin":     4,
	"editor":    3,
	"commenter": 2,
	"viewer":    1,
}

func CanViewWorld(identity domain.Identity, worldID uuid.UUID) bool {
	return hasWorldRole(identity, worldID, "viewer")
}

func CanEditWorld(identity domain.Identity, worldID uuid.UUID) bool {
	return hasWorldRole(identity, worldID, "editor")
}

func CanAdminWorld(identity domain.Identity, worldID uuid.UUID) bool {
	return hasWorldRole(identity, worldID, "admin")
}

func CanManageWeave(identity domain.Identity, weaveID uuid.UUID) bool {
	role, ok := identity.Weaves[weaveID]
	return ok && (role == "owner" || role == "admin")
}

func IsWeaveMember(identity domain.Identity, weaveID uuid.UUID) bool {
	_, ok := identity.Weaves[weaveID]
	return ok
}

func hasWorldRole(identity domain.Identity, worldID uuid.UUID, atLeast string) bool {
	role, ok := identity.Worlds[worldID]
	if !ok {
		return false
	}
	return worldRoleRank[role] >= worldRoleRank[atLeast]
}
