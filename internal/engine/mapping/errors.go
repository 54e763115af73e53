package mapping

import "errors"

// ErrMalformed indicates a mapping that cannot describe an edit of the
// document it is applied to.
var ErrMalformed = errors.New("malformed mapping")
