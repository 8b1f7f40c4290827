package domain

import "errors"

// ErrUnknownVariant is returned when a tagged union holds no variant this
// version of the model knows about (schema drift). It signals a programming
// or versioning error, not a user mistake.
var ErrUnknownVariant = errors.New("unknown config variant")

// ErrMultipleVariants is returned when decoding a tagged union that has more
// than one non-null variant.
var ErrMultipleVariants = errors.New("exactly one variant must be set")

// ErrNodeNotFound is returned when a node ID does not resolve in the flow.
var ErrNodeNotFound = errors.New("node not found")
