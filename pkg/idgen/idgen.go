// Package idgen generates identifiers for flow nodes and form elements.
//
// Identifiers are random rather than sequential so that several editor
// instances working on the same bot never hand out the same ID.
package idgen

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/aretw0/flowstudio/pkg/domain"
)

// MaxAttempts bounds the retries of Unique.
const MaxAttempts = 16

// ErrExhausted is returned by Unique when every attempt collided.
var ErrExhausted = errors.New("could not generate a unique id")

// Generator produces a new identifier on each call.
type Generator func() string

// NodeID returns an ID of the form "{kind}-{typeKey}-{uuid}".
func NodeID(kind domain.NodeKind, typeKey domain.NodeTypeKey) string {
	return fmt.Sprintf("%s-%s-%s", kind, typeKey, uuid.New().String())
}

// FieldID returns a form field ID.
func FieldID() string {
	return "form_field_" + uuid.New().String()
}

// OptionID returns a single select option ID. Option IDs end up in Telegram
// callback data, so they are kept short.
func OptionID() string {
	return xid.New().String()
}

// FormName returns a form name.
func FormName() string {
	return "form-" + uuid.New().String()
}

// Unique calls gen until it returns an ID for which exists reports false.
func Unique(gen Generator, exists func(id string) bool) (string, error) {
	for range MaxAttempts {
		id := gen()
		if !exists(id) {
			return id, nil
		}
	}
	return "", ErrExhausted
}

// NodeGenerator returns a Generator of node IDs for the given variant.
func NodeGenerator(kind domain.NodeKind, typeKey domain.NodeTypeKey) Generator {
	return func() string { return NodeID(kind, typeKey) }
}
