package darkroom

import "errors"

// Common errors returned by Engine operations.
var (
	// ErrEngineClosed is returned when operations are attempted on a
	// closed engine.
	ErrEngineClosed = errors.New("darkroom: engine is closed")

	// ErrNoImage is returned when Process is called before Load.
	ErrNoImage = errors.New("darkroom: no image loaded")

	// ErrInvalidDimensions is returned for non-positive image sizes.
	ErrInvalidDimensions = errors.New("darkroom: invalid dimensions")

	// ErrPassNotFound is returned when a pass name is not registered.
	ErrPassNotFound = errors.New("darkroom: pass not found")

	// ErrDuplicatePass is returned when registering a pass name twice.
	ErrDuplicatePass = errors.New("darkroom: duplicate pass name")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("darkroom: nil DeviceProvider")

	// ErrNilPass is returned when registering a nil pass.
	ErrNilPass = errors.New("darkroom: nil pass")
)
