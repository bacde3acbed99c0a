package position

import "errors"

var (
	// ErrPoolNotFound is returned when the configured pool account does not
	// exist on chain.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrTickArrayNotFound is returned when a tick array required for fee
	// accounting is absent.
	ErrTickArrayNotFound = errors.New("tick array not found")
)
