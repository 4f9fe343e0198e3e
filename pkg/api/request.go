package api

import "strings"

// Request carries the submitted payload of a single wizard operation. The
// core is framework-agnostic: whatever HTTP layer the application uses, it
// builds a Request from the decoded form or JSON body before dispatching to
// the wizard.
type Request struct {
	payload map[string]any
}

// NewRequest wraps a submitted payload.
func NewRequest(payload map[string]any) *Request {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Request{payload: payload}
}

// All returns the full submitted payload.
func (r *Request) All() map[string]any { return r.payload }

// Input returns a single submitted value. Dotted keys traverse nested maps.
func (r *Request) Input(key string) any {
	return DataGet(r.payload, key, nil)
}

// Has reports whether the payload contains a non-nil value for key.
func (r *Request) Has(key string) bool {
	return DataGet(r.payload, key, nil) != nil
}

// DataGet looks up a dotted path in nested string-keyed maps, returning
// fallback when any segment is missing. "a.b" resolves data["a"]["b"].
func DataGet(data map[string]any, key string, fallback any) any {
	if key == "" {
		return fallback
	}
	segments := strings.Split(key, ".")
	var current any = data
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return fallback
		}
		current, ok = m[segment]
		if !ok {
			return fallback
		}
	}
	return current
}

// RootKey returns the first segment of a dotted key. Nested field names
// collapse to their root when projecting view data.
func RootKey(key string) string {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i]
	}
	return key
}
