package baker

import "errors"

var (
	ErrMissingUVs     = errors.New("baker: low-poly mesh does not define uv coordinates")
	ErrInvalidOptions = errors.New("baker: invalid options")
)
