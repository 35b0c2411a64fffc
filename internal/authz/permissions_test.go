package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermissionString(t *testing.T) {
	t.Run("resource prefixed tokens", func(t *testing.T) {
		ps := ParsePermissionString("request.update,cancel,event.create")

		require.Len(t, ps, 2)
		assert.True(t, ps.Grants("request", "update"))
		assert.True(t, ps.Grants("request", "cancel"))
		assert.True(t, ps.Grants("event", "create"))
		assert.False(t, ps.Grants("event", "cancel"))
	})

	t.Run("bare token before any resource defaults to event", func(t *testing.T) {
		ps := ParsePermissionString("update,request.review")

		assert.True(t, ps.Grants("event", "update"))
		assert.True(t, ps.Grants("request", "review"))
	})

	t.Run("whitespace and empty tokens absorbed", func(t *testing.T) {
		ps := ParsePermissionString(" request.update ,, , cancel ")

		assert.True(t, ps.Grants("request", "update"))
		assert.True(t, ps.Grants("request", "cancel"))
	})

	t.Run("empty string yields empty set", func(t *testing.T) {
		assert.Empty(t, ParsePermissionString(""))
		assert.Empty(t, ParsePermissionString("   "))
	})

	t.Run("duplicate actions collapse", func(t *testing.T) {
		ps := ParsePermissionString("request.update,update,update")

		require.Len(t, ps, 1)
		assert.Len(t, ps[0].Actions, 1)
	})
}

func TestPermissionSetFromClaim(t *testing.T) {
	t.Run("compact string shape", func(t *testing.T) {
		ps := PermissionSetFromClaim("request.review,event.create")

		assert.True(t, ps.Grants("request", "review"))
		assert.True(t, ps.Grants("event", "create"))
	})

	t.Run("structured list shape", func(t *testing.T) {
		ps := PermissionSetFromClaim([]any{
			map[string]any{"resource": "staff", "actions": []any{"update"}},
			map[string]any{"resource": "request", "actions": []any{"review", "*"}},
		})

		require.Len(t, ps, 2)
		assert.True(t, ps.Grants("staff", "update"))
		assert.True(t, ps.Grants("request", "anything"))
	})

	t.Run("metadata carried through", func(t *testing.T) {
		ps := PermissionSetFromClaim([]any{
			map[string]any{
				"resource": "staff",
				"actions":  []any{"update"},
				"metadata": map[string]any{"allowedStaffTypes": []any{"nurse"}},
			},
		})

		require.Len(t, ps, 1)
		require.NotNil(t, ps[0].Metadata)
		assert.Equal(t, TierBasicUser, CalculateAuthorityTier(ps))
	})

	t.Run("garbage shapes degrade to nil", func(t *testing.T) {
		assert.Nil(t, PermissionSetFromClaim(42))
		assert.Nil(t, PermissionSetFromClaim([]any{"not-an-object"}))
		assert.Nil(t, PermissionSetFromClaim(nil))
	})
}

func TestPermissionSet_Grants(t *testing.T) {
	ps := PermissionSet{
		{Resource: "*", Actions: []string{"review"}},
		{Resource: "event", Actions: []string{"*"}},
		{Resource: "Request", Actions: []string{"update"}},
	}

	t.Run("wildcard resource matches any resource", func(t *testing.T) {
		assert.True(t, ps.Grants("request", "review"))
		assert.True(t, ps.Grants("anything", "review"))
	})

	t.Run("wildcard action matches any action", func(t *testing.T) {
		assert.True(t, ps.Grants("event", "delete"))
	})

	t.Run("resource match is case insensitive", func(t *testing.T) {
		assert.True(t, ps.Grants("request", "update"))
	})

	t.Run("action match goes through synonym classes", func(t *testing.T) {
		assert.True(t, ps.Grants("request", "edit"))
	})

	t.Run("no grant", func(t *testing.T) {
		assert.False(t, ps.Grants("staff", "update"))
	})
}
