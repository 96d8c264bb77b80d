// AngelaMos | 2026
// policy_test.go

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/food-orders/internal/core"
)

var (
	owner    = Actor{ID: 1, Active: true}
	stranger = Actor{ID: 2, Active: true}
	admin    = Actor{ID: 3, Active: true, Admin: true}
	inactive = Actor{ID: 4, Active: false, Admin: true}
	anon     = Actor{}

	ownedBy1 = &Target{OwnerID: 1}
)

func TestAuthorize_Matrix(t *testing.T) {
	tests := []struct {
		action  Action
		actor   Actor
		target  *Target
		allowed bool
	}{
		{CreateForOther, admin, nil, true},
		{CreateForOther, owner, nil, false},
		{ListAll, admin, nil, true},
		{ListAll, owner, nil, false},
		{ViewOne, admin, ownedBy1, true},
		{ViewOne, owner, ownedBy1, false},
		{ViewAny, stranger, nil, false},
		{Finalize, admin, ownedBy1, true},
		{Finalize, owner, ownedBy1, false},

		{CreateForSelf, owner, nil, true},
		{CreateForSelf, admin, nil, true},
		{ListOwn, stranger, nil, true},

		{Cancel, owner, ownedBy1, true},
		{Cancel, admin, ownedBy1, true},
		{Cancel, stranger, ownedBy1, false},
		{AddItem, owner, ownedBy1, true},
		{AddItem, stranger, ownedBy1, false},
		{AddItem, admin, ownedBy1, true},
		{RemoveItem, owner, ownedBy1, true},
		{RemoveItem, stranger, ownedBy1, false},
		{RemoveItem, owner, nil, false},
		{RemoveItem, admin, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, tt.target)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrForbidden)
		})
	}
}

func TestAuthorize_NonOwnerNeverMutates(t *testing.T) {
	for ownerID := int64(1); ownerID <= 20; ownerID++ {
		for actorID := int64(1); actorID <= 20; actorID++ {
			if actorID == ownerID {
				continue
			}
			actor := Actor{ID: actorID, Active: true}
			target := &Target{OwnerID: ownerID}

			for _, action := range []Action{Cancel, AddItem, RemoveItem} {
				assert.False(t, Allowed(actor, action, target),
					"actor %d on order of %d: %s", actorID, ownerID, action)
			}
		}
	}
}

func TestAuthorize_AdminOnlyIgnoresOwnership(t *testing.T) {
	for _, action := range []Action{ListAll, Finalize, ViewOne} {
		assert.False(t, Allowed(owner, action, ownedBy1), action.String())
		assert.True(t, Allowed(admin, action, ownedBy1), action.String())
	}
}

func TestAuthorize_InactiveAndAnonymousDenied(t *testing.T) {
	for action := range rules {
		assert.False(t, Allowed(inactive, action, ownedBy1), action.String())
		assert.False(t, Allowed(anon, action, nil), action.String())
	}
}

func TestAuthorize_UnknownAction(t *testing.T) {
	err := Authorize(admin, Action(999), nil)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Equal(t, "unknown action", Action(999).String())
}

func TestAuthorize_MessageNamesAction(t *testing.T) {
	err := Authorize(owner, Finalize, ownedBy1)
	require.Error(t, err)
	assert.Equal(t, "you are not allowed to finalize order", err.Error())
}
