package renderer

import "errors"

var (
	ErrInvalidOptions    = errors.New("renderer: invalid options")
	ErrNoGraphicsContext = errors.New("renderer: no graphics context available")
	ErrTextureSize       = errors.New("renderer: texture size does not match configured resolution")
	ErrEngineStalled     = errors.New("renderer: engine did not clear the busy flag in time")
	ErrUnsupportedFormat = errors.New("renderer: unsupported image format")
	ErrNoFrame           = errors.New("renderer: no frame has been displayed")
)
