package settings

import "errors"

var (
	ErrNoRegion         = errors.New("settings: shared region not initialized")
	ErrMisalignedOffset = errors.New("settings: block offset is not element aligned")
	ErrOutOfBounds      = errors.New("settings: block does not fit in shared region")
)
