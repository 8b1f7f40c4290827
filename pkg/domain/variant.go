package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// variantDecoder decodes the payload of one variant of a tagged union.
type variantDecoder[T any] func(raw json.RawMessage) (T, error)

func decodeInto[V any, T any](wrap func(*V) T) variantDecoder[T] {
	return func(raw json.RawMessage) (T, error) {
		v := new(V)
		if err := json.Unmarshal(raw, v); err != nil {
			var zero T
			return zero, err
		}
		return wrap(v), nil
	}
}

// decodeVariant reads a wire-form tagged union: an object whose keys name
// the variants and at most one of which is non-null. Unknown keys are kept
// in the returned Extra. If no known variant is set, the zero T is returned
// without error so that the caller can carry the unrecognized node around.
func decodeVariant[T any](data []byte, decoders map[string]variantDecoder[T]) (T, Extra, error) {
	var zero T
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return zero, nil, err
	}

	var set []string
	payloads := make(map[string]json.RawMessage, 1)
	for key := range decoders {
		payload, ok := raw[key]
		if !ok {
			continue
		}
		delete(raw, key)
		if !isNull(payload) {
			set = append(set, key)
			payloads[key] = payload
		}
	}
	sort.Strings(set)
	if len(set) > 1 {
		return zero, nil, fmt.Errorf("%w: %v", ErrMultipleVariants, set)
	}

	result := zero
	if len(set) == 1 {
		v, err := decoders[set[0]](payloads[set[0]])
		if err != nil {
			return zero, nil, fmt.Errorf("%s: %w", set[0], err)
		}
		result = v
	}
	if len(raw) == 0 {
		raw = nil
	}
	return result, raw, nil
}

// encodeVariant writes the wire form of a tagged union with one set variant.
// An empty key writes only the extra keys (unrecognized variant).
func encodeVariant(key string, payload any, extra Extra) ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(extra)+1)
	for k, v := range extra {
		obj[k] = v
	}
	if key != "" {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		obj[key] = data
	}
	return json.Marshal(obj)
}
