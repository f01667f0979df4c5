package endpoint

import "reflect"

// Test-only exports for internal functions.
var (
	BaseMediaType = baseMediaType
	RetryAfter    = retryAfter
)

// PayloadCategory names how a payload type is bound.
func PayloadCategory(t reflect.Type) string {
	switch classifyPayload(t) {
	case catVoid:
		return "void"
	case catBodyOnly:
		return "body"
	case catParams:
		return "params"
	case catMixed:
		return "mixed"
	}
	return "unknown"
}
