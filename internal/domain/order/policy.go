package order

import "github.com/example/storefront/internal/apperror"

// TransitionPolicy decides whether an order may move from one status to another.
type TransitionPolicy func(from, to Status) error

// Permissive lets an administrator set any status from any status.
func Permissive(from, to Status) error {
	return nil
}

var strictTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// StrictTransitions only allows forward moves along
// pending → processing → shipped → delivered, with cancellation before shipping.
func StrictTransitions(from, to Status) error {
	for _, allowed := range strictTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperror.Conflict("cannot change order status from " + string(from) + " to " + string(to))
}
