// AngelaMos | 2026
// policy.go

// Package authz decides which actor may perform which action on an order.
// It works on plain values and never touches storage.
package authz

import (
	"github.com/carterperez-dev/food-orders/internal/core"
)

type Action int

const (
	CreateForOther Action = iota + 1
	CreateForSelf
	ViewAny
	ViewOne
	ListAll
	ListOwn
	Cancel
	AddItem
	RemoveItem
	Finalize
)

var actionNames = map[Action]string{
	CreateForOther: "create order for another user",
	CreateForSelf:  "create order",
	ViewAny:        "view orders",
	ViewOne:        "view order",
	ListAll:        "list all orders",
	ListOwn:        "list own orders",
	Cancel:         "cancel order",
	AddItem:        "add item",
	RemoveItem:     "remove item",
	Finalize:       "finalize order",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown action"
}

type rule int

const (
	ruleAdmin rule = iota + 1
	ruleAuthenticated
	ruleOwnerOrAdmin
)

var rules = map[Action]rule{
	CreateForOther: ruleAdmin,
	ViewAny:        ruleAdmin,
	ViewOne:        ruleAdmin,
	ListAll:        ruleAdmin,
	Finalize:       ruleAdmin,
	CreateForSelf:  ruleAuthenticated,
	ListOwn:        ruleAuthenticated,
	Cancel:         ruleOwnerOrAdmin,
	AddItem:        ruleOwnerOrAdmin,
	RemoveItem:     ruleOwnerOrAdmin,
}

// Actor is the authenticated caller.
type Actor struct {
	ID     int64
	Admin  bool
	Active bool
}

// Target is the order an action applies to.
type Target struct {
	OwnerID int64
}

// Authorize returns nil when actor may perform action on target, otherwise
// an error wrapping core.ErrForbidden. target may be nil for actions that
// do not address a specific order.
func Authorize(actor Actor, action Action, target *Target) error {
	if actor.ID == 0 || !actor.Active {
		return deny(action)
	}

	r, ok := rules[action]
	if !ok {
		return deny(action)
	}

	switch r {
	case ruleAuthenticated:
		return nil
	case ruleAdmin:
		if actor.Admin {
			return nil
		}
	case ruleOwnerOrAdmin:
		if actor.Admin {
			return nil
		}
		if target != nil && target.OwnerID == actor.ID {
			return nil
		}
	}

	return deny(action)
}

// Allowed is the boolean form of Authorize.
func Allowed(actor Actor, action Action, target *Target) bool {
	return Authorize(actor, action, target) == nil
}

func deny(action Action) error {
	return core.NewError(
		core.ErrForbidden,
		"you are not allowed to "+action.String(),
	)
}
