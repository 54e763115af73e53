package render

import "errors"

// ErrRender indicates a document could not be rendered.
var ErrRender = errors.New("render failed")
