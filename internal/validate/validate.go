// Package validate checks proposed attribute sets against per-attribute
// rule tables.
//
// A rule table maps attribute names to a list of rule variants. Apply
// evaluates every rule, aggregates all generic violations into a single
// Malformed error (one entry per offending attribute), and rejects any
// attribute not named in the table. Predicate rules may consult the store
// through the operation's transaction; when a predicate fails with a more
// specific application error (for example a uniqueness Conflict) that error
// propagates unchanged instead of being coalesced.
package validate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/nhollis/inkwell/internal/apperror"
)

// Rule is one validation constraint on a single attribute.
type Rule interface {
	// check returns a violation message (empty when the value passes) or an
	// error that should abort validation outright.
	check(ctx context.Context, value any, present bool) (string, error)
}

// Required fails when the attribute is absent from the request entirely.
// An explicitly null value satisfies Required (pair with NotNull to forbid
// clearing).
type Required struct{}

func (Required) check(_ context.Context, _ any, present bool) (string, error) {
	if !present {
		return "is required", nil
	}
	return "", nil
}

// NotNull fails when the attribute is present with an explicit null value.
// It is distinct from Required: NotNull forbids clearing an already-set
// field, Required forbids omission.
type NotNull struct{}

func (NotNull) check(_ context.Context, value any, present bool) (string, error) {
	if present && value == nil {
		return "must not be null", nil
	}
	return "", nil
}

// TypeKind enumerates the value shapes TypeOf can require.
type TypeKind int

const (
	Email TypeKind = iota
	Boolean
	String
	Natural
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// TypeOf fails when a present, non-null value does not match the kind.
// Boolean and Natural also accept their string forms ("true", "41") so the
// same tables validate query parameters.
type TypeOf struct {
	Kind TypeKind
}

func (t TypeOf) check(_ context.Context, value any, present bool) (string, error) {
	if !present || value == nil {
		return "", nil
	}
	switch t.Kind {
	case Email:
		s, ok := value.(string)
		if !ok || !emailPattern.MatchString(s) {
			return "must be a valid email address", nil
		}
	case Boolean:
		switch v := value.(type) {
		case bool:
		case string:
			if v != "true" && v != "false" {
				return "must be a boolean", nil
			}
		default:
			return "must be a boolean", nil
		}
	case String:
		if _, ok := value.(string); !ok {
			return "must be a string", nil
		}
	case Natural:
		if _, ok := AsNatural(value); !ok {
			return "must be a non-negative integer", nil
		}
	default:
		return "", fmt.Errorf("validate: unknown type kind %d", t.Kind)
	}
	return "", nil
}

// Length bounds the rune count of a string value. Min 0 means no lower
// bound; Max 0 means no upper bound.
type Length struct {
	Min, Max int
}

func (l Length) check(_ context.Context, value any, present bool) (string, error) {
	if !present || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", nil // TypeOf reports non-strings
	}
	n := utf8.RuneCountInString(s)
	if n < l.Min {
		return fmt.Sprintf("must be at least %d characters", l.Min), nil
	}
	if l.Max > 0 && n > l.Max {
		return fmt.Sprintf("must be %d characters or less", l.Max), nil
	}
	return "", nil
}

// Match fails when a present string value does not match the pattern.
type Match struct {
	Pattern *regexp.Regexp
	Message string
}

func (m Match) check(_ context.Context, value any, present bool) (string, error) {
	if !present || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", nil
	}
	if !m.Pattern.MatchString(s) {
		return m.Message, nil
	}
	return "", nil
}

// Check runs a custom predicate against a present, non-null value. The
// predicate may perform store lookups via ctx-carrying closures. A returned
// Malformed AppError is coalesced into the aggregate report; any other
// AppError kind (or unexpected error) aborts validation and propagates.
type Check struct {
	Fn func(ctx context.Context, value any) error
}

func (c Check) check(ctx context.Context, value any, present bool) (string, error) {
	if !present || value == nil {
		return "", nil
	}
	err := c.Fn(ctx, value)
	if err == nil {
		return "", nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrMalformed) {
		return appErr.Message, nil
	}
	return "", err
}

// Rules is a validation table keyed by attribute name.
type Rules map[string][]Rule

// Apply validates attrs against the table. Attributes not named in the
// table always fail. All generic violations are aggregated into one
// Malformed error; specific predicate errors propagate unchanged.
func Apply(ctx context.Context, rules Rules, attrs map[string]any) error {
	violations := make(map[string]string)

	for attr := range attrs {
		if _, ok := rules[attr]; !ok {
			violations[attr] = "unknown attribute"
		}
	}

	// Sorted iteration keeps predicate evaluation order deterministic.
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, present := attrs[name]
		for _, rule := range rules[name] {
			msg, err := rule.check(ctx, value, present)
			if err != nil {
				return err
			}
			if msg != "" {
				violations[name] = msg
				break // first violation per attribute is enough
			}
		}
	}

	if len(violations) > 0 {
		return apperror.MalformedAttributes(violations)
	}
	return nil
}

// AsNatural converts a value that passed the Natural type check into an
// int64. JSON numbers arrive as float64; query parameters arrive as
// strings.
func AsNatural(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		if v >= 0 {
			return int64(v), true
		}
	case int64:
		if v >= 0 {
			return v, true
		}
	case float64:
		if v >= 0 && v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil && n >= 0 {
			return n, true
		}
	}
	return 0, false
}

// AsBool converts a value that passed the Boolean type check into a bool.
func AsBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		if v == "true" {
			return true, true
		}
		if v == "false" {
			return false, true
		}
	}
	return false, false
}
