package forecast

import "errors"

var (
	// ErrModelNotFound reports a missing model artifact.
	ErrModelNotFound = errors.New("model artifact not found")
	// ErrInvalidModel reports an artifact that cannot be decoded or built.
	ErrInvalidModel = errors.New("invalid model artifact")
	// ErrOutOfRange reports an input feature outside its declared bounds.
	ErrOutOfRange = errors.New("input out of range")
	// ErrEngineUnavailable is returned by front ends when no model could be loaded.
	ErrEngineUnavailable = errors.New("forecast engine unavailable")
)
