package service

import "github.com/nhollis/inkwell/internal/validate"

// Body attribute accessors. Validation has already run when these are
// called, so type assertions only guard against absent or null values.

// bodyString returns a present, non-null string attribute.
func bodyString(body map[string]any, name string) (string, bool) {
	v, ok := body[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// bodyBool returns a present, non-null boolean attribute. It accepts the
// same forms the Boolean type check does, so "true"/"false" strings are
// applied rather than silently dropped.
func bodyBool(body map[string]any, name string) (bool, bool) {
	v, ok := body[name]
	if !ok || v == nil {
		return false, false
	}
	return validate.AsBool(v)
}

// bodyNull reports whether an attribute was submitted as an explicit null.
func bodyNull(body map[string]any, name string) bool {
	v, ok := body[name]
	return ok && v == nil
}
