// AngelaMos | 2026
// status.go

package order

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCanceled  Status = "CANCELED"
	StatusCompleted Status = "COMPLETED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCanceled: true, StatusCompleted: true},
	StatusCanceled:  {},
	StatusCompleted: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsTerminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errInvalidStatus(s)
	}
	return st, nil
}

// transition validates moving o to next and returns the conflict error that
// names the terminal state blocking it.
func transition(o *Order, next Status) error {
	if CanTransition(o.Status, next) {
		return nil
	}
	switch o.Status {
	case StatusCanceled:
		return ErrAlreadyCanceled
	case StatusCompleted:
		return ErrAlreadyCompleted
	default:
		return errUnknownStatus(o.Status)
	}
}

// ensureMutable reports whether items of o may still change.
func ensureMutable(o *Order) error {
	switch o.Status {
	case StatusPending:
		return nil
	case StatusCanceled:
		return ErrOrderCanceled
	case StatusCompleted:
		return ErrOrderCompleted
	default:
		return errUnknownStatus(o.Status)
	}
}
