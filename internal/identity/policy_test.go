package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRoles(t *testing.T) {
	policy := NewPolicy("founder@example.com")

	member := &Principal{ID: "m1", Email: "m@example.com", Role: RoleMember}
	manager := &Principal{ID: "mm1", Email: "mm@example.com", Role: RoleMediaManager}
	president := &Principal{ID: "p1", Email: "p@example.com", Role: RolePresident}

	t.Run("content moderation", func(t *testing.T) {
		assert.False(t, policy.CanModerateContent(member))
		assert.True(t, policy.CanModerateContent(manager))
		assert.True(t, policy.CanModerateContent(president))
		assert.False(t, policy.CanModerateContent(nil))

		assert.ErrorIs(t, policy.AuthorizeContentMutation(member), ErrUnauthorized)
		require.NoError(t, policy.AuthorizeContentMutation(manager))
	})

	t.Run("user management is president only", func(t *testing.T) {
		assert.False(t, policy.CanManageUsers(member))
		assert.False(t, policy.CanManageUsers(manager))
		assert.True(t, policy.CanManageUsers(president))

		target := &Principal{ID: "t1", Email: "t@example.com", Role: RoleMember}
		assert.ErrorIs(t, policy.AuthorizeUserMutation(manager, target), ErrUnauthorized)
		assert.ErrorIs(t, policy.AuthorizeUserMutation(member, member), ErrUnauthorized)
		require.NoError(t, policy.AuthorizeUserMutation(president, target))
	})

	t.Run("protected target beats actor role", func(t *testing.T) {
		founder := &Principal{ID: "f1", Email: "founder@example.com", Role: RolePresident}

		assert.True(t, policy.IsProtected(founder))
		// The president cannot touch the protected account, and the error
		// names the protection, not the role.
		assert.ErrorIs(t, policy.AuthorizeUserMutation(president, founder), ErrProtectedTarget)
		// Same answer for an actor who would fail the role check anyway.
		assert.ErrorIs(t, policy.AuthorizeUserMutation(member, founder), ErrProtectedTarget)
	})

	t.Run("no protected email means nothing is protected", func(t *testing.T) {
		open := NewPolicy("")
		founder := &Principal{ID: "f1", Email: "founder@example.com", Role: RolePresident}
		assert.False(t, open.IsProtected(founder))
		require.NoError(t, open.AuthorizeUserMutation(president, founder))
	})
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleMember.Valid())
	assert.True(t, RoleMediaManager.Valid())
	assert.True(t, RolePresident.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
