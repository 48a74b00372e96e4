package application

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/stretchr/testify/assert"
)

func identityWith(worldID uuid.UUID, worldRole string, weaveID uuid.UUID, weaveRole string) domain.Identity {
	id := domain.Identity{
		Weaves: map[uuid.UUID]string{},
		Worlds: map[uuid.UUID]string{},
	}
	if worldRole != "" {
		id.Worlds[worldID] = worldRole
	}
	if weaveRole != "" {
		id.Weaves[weaveID] = weaveRole
	}
	return id
}

func TestWorldRoleRanking(t *testing.T) {
	worldID, weaveID := uuid.New(), uuid.New()

	tests := []struct {
		role     string
		canView  bool
		canEdit  bool
		canAdmin bool
	}{
		{"admin", true, true, true},
		{"editor", true, true, false},
		{"commenter", true, false, false},
		{"viewer", true, false, false},
		{"", false, false, false},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			identity := identityWith(worldID, tt.role, weaveID, "")
			assert.Equal(t, tt.canView, CanViewWorld(identity, worldID))
			assert.Equal(t, tt.canEdit, CanEditWorld(identity, worldID))
			assert.Equal(t, tt.canAdmin, CanAdminWorld(identity, worldID))
		})
	}
}

func TestRolesAreWorldScoped(t *testing.T) {
	worldID, otherWorld, weaveID := uuid.New(), uuid.New(), uuid.New()
	identity := identityWith(worldID, "admin", weaveID, "")

	assert.True(t, CanAdminWorld(identity, worldID))
	assert.False(t, CanViewWorld(identity, otherWorld))
}

func TestWeaveManagement(t *testing.T) {
	worldID, weaveID := uuid.New(), uuid.New()

	owner := identityWith(worldID, "", weaveID, "owner")
	admin := identityWith(worldID, "", weaveID, "admin")
	member := identityWith(worldID, "", weaveID, "member")
	outsider := identityWith(worldID, "", weaveID, "")

	assert.True(t, CanManageWeave(owner, weaveID))
	assert.True(t, CanManageWeave(admin, weaveID))
	assert.False(t, CanManageWeave(member, weaveID))
	assert.False(t, CanManageWeave(outsider, weaveID))

	assert.True(t, IsWeaveMember(member, weaveID))
	assert.False(t, IsWeaveMember(outsider, weaveID))
}
