package diff

import "errors"

// ErrIncompatibleRoots indicates trees whose roots cannot be compared.
var ErrIncompatibleRoots = errors.New("incompatible roots")
