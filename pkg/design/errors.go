package design

import (
	"errors"
)

// Layer store misuse surfaces as distinguishable error kinds. Callers
// match with errors.Is.
var (
	ErrLayerNotSealed    = errors.New("previous layer not sealed")
	ErrDuplicateLayer    = errors.New("duplicate layer name, use rollback or a new name")
	ErrNoLayers          = errors.New("design has no layers")
	ErrLayerLocked       = errors.New("current layer is locked")
	ErrEmptyLayerLock    = errors.New("cannot lock an empty layer")
	ErrLayerNotFound     = errors.New("layer not found")
	ErrComponentNotFound = errors.New("component not found in current layer")
	ErrBadPinShape       = errors.New("unsupported pin shape, use a list or a mapping")
	ErrValidationFailed  = errors.New("validation failed")
	ErrBadSpec           = errors.New("invalid netlist specification")
)
