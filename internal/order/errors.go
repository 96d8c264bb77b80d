// AngelaMos | 2026
// errors.go

package order

import (
	"fmt"

	"github.com/carterperez-dev/food-orders/internal/core"
)

var (
	ErrOrderNotFound      = core.NewError(core.ErrNotFound, "order not found")
	ErrItemNotFound       = core.NewError(core.ErrNotFound, "item not found")
	ErrTargetUserNotFound = core.NewError(core.ErrNotFound, "target user not found")

	ErrAlreadyCanceled  = core.NewError(core.ErrConflict, "order is already CANCELED")
	ErrAlreadyCompleted = core.NewError(core.ErrConflict, "order is already COMPLETED")
	ErrOrderCanceled    = core.NewError(core.ErrConflict, "order is CANCELED; items cannot be modified")
	ErrOrderCompleted   = core.NewError(core.ErrConflict, "order is COMPLETED; items cannot be modified")
)

func errInvalidItem(msg string) error {
	return core.NewError(core.ErrInvalidInput, msg)
}

func errInvalidStatus(s string) error {
	return core.NewError(
		core.ErrInvalidInput,
		fmt.Sprintf("status must be one of PENDING, CANCELED, COMPLETED; got %q", s),
	)
}

func errUnknownStatus(s Status) error {
	return fmt.Errorf("order in unknown status %q", s)
}
