package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverAllowedActions_ExplicitArrays(t *testing.T) {
	entity := map[string]any{
		"allowedActions": []any{"edit", "reschedule"},
		"data": map[string]any{
			"allowedActions": []any{"cancel"},
		},
		"request": map[string]any{
			"allowedActions": []any{"Reject"},
		},
	}

	got := DiscoverAllowedActions(entity)

	assert.True(t, got.Has(ActionEdit))
	assert.True(t, got.Has(ActionResched))
	assert.True(t, got.Has(ActionCancel))
	assert.True(t, got.Has(ActionReject))
}

func TestDiscoverAllowedActions_SnakeCasePath(t *testing.T) {
	got := DiscoverAllowedActions(map[string]any{
		"allowed_actions": []any{"manage_staff"},
	})

	assert.True(t, got.Has(ActionManageStaff))
}

func TestDiscoverAllowedActions_CapabilityFlags(t *testing.T) {
	got := DiscoverAllowedActions(map[string]any{
		"canEdit":       true,
		"canReschedule": true,
		"canDelete":     false,
	})

	assert.True(t, got.Has(ActionEdit))
	assert.True(t, got.Has(ActionResched))
	assert.False(t, got.Has(ActionDelete))
}

func TestDiscoverAllowedActions_NestedFlagTwoLevelsDeep(t *testing.T) {
	entity := map[string]any{
		"event": map[string]any{
			"canReschedule": true,
		},
	}

	got := DiscoverAllowedActions(entity)

	assert.True(t, got.Has(ActionResched))
	assert.True(t, got.Has("reschedule"), "synonym query should also match")
}

func TestDiscoverAllowedActions_StructuralChildren(t *testing.T) {
	entity := map[string]any{
		"reviewer": map[string]any{
			"canAccept": true,
		},
		"rescheduleProposal": map[string]any{
			"proposedBy": map[string]any{
				"canRevise": true,
			},
		},
		"decisionHistory": []any{
			map[string]any{"canConfirm": true},
			map[string]any{"allowedActions": []any{"decline"}},
		},
	}

	got := DiscoverAllowedActions(entity)

	assert.True(t, got.Has(ActionAccept))
	assert.True(t, got.Has(ActionRevise))
	assert.True(t, got.Has(ActionConfirm))
	assert.True(t, got.Has(ActionDecline))
}

func TestDiscoverAllowedActions_GenericSafetyNet(t *testing.T) {
	// Hints under an unanticipated key are still found one level down.
	entity := map[string]any{
		"extras": map[string]any{
			"canCancel": true,
		},
	}

	got := DiscoverAllowedActions(entity)

	assert.True(t, got.Has(ActionCancel))
}

func TestDiscoverAllowedActions_DepthBound(t *testing.T) {
	// Flag buried five levels down is beyond the bound and ignored.
	deep := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"d": map[string]any{
						"canEdit": true,
					},
				},
			},
		},
	}

	got := DiscoverAllowedActions(deep)

	assert.False(t, got.Has(ActionEdit))
}

func TestDiscoverAllowedActions_CyclicStructureTerminates(t *testing.T) {
	cyclic := map[string]any{"canView": true}
	cyclic["self"] = cyclic

	got := DiscoverAllowedActions(cyclic)

	assert.True(t, got.Has(ActionView))
}

func TestDiscoverAllowedActions_MultipleRootsUnion(t *testing.T) {
	request := map[string]any{"canEdit": true}
	fullRequest := map[string]any{
		"allowedActions": []any{"cancel"},
	}

	got := DiscoverAllowedActions(request, fullRequest, nil)

	assert.True(t, got.Has(ActionEdit))
	assert.True(t, got.Has(ActionCancel))
}

func TestDiscoverAllowedActions_EmptyInput(t *testing.T) {
	assert.Empty(t, DiscoverAllowedActions())
	assert.Empty(t, DiscoverAllowedActions(nil))
	assert.Empty(t, DiscoverAllowedActions(map[string]any{"status": "Pending"}))
}

func TestDiscoverAllowedActions_MalformedBranches(t *testing.T) {
	entity := map[string]any{
		"allowedActions": "not-an-array",
		"event":          "not-an-object",
		"decisionHistory": []any{
			"not-an-object",
			map[string]any{"canConfirm": true},
		},
		"canEdit": "true", // loose string boolean
	}

	got := DiscoverAllowedActions(entity)

	assert.True(t, got.Has(ActionConfirm))
	assert.True(t, got.Has(ActionEdit))
}
