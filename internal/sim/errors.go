package sim

import "errors"

var (
	// ErrNotRunning indicates an operation that needs a running simulator.
	ErrNotRunning = errors.New("sim: simulator not running")

	// ErrStopped indicates a start attempt on a torn-down simulator.
	ErrStopped = errors.New("sim: simulator stopped")

	// ErrPoolSize indicates a load whose length differs from the pool size.
	ErrPoolSize = errors.New("sim: pool size mismatch")

	// ErrUnknownKind indicates an unrecognised variant name.
	ErrUnknownKind = errors.New("sim: unknown variant")

	// ErrInvalidParams indicates a parameter outside its valid range.
	ErrInvalidParams = errors.New("sim: invalid parameters")
)
