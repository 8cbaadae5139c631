package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/validate"
)

// sortFieldRule restricts the sortBy query parameter to the allow-listed
// field names of one resource.
func sortFieldRule(fields map[string]string) validate.Rule {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return validate.Check{Fn: func(_ context.Context, value any) error {
		s, ok := value.(string)
		if ok {
			if _, allowed := fields[s]; allowed {
				return nil
			}
		}
		return apperror.Malformed(fmt.Sprintf("must be one of %s", strings.Join(names, ", ")))
	}}
}

// orderRule restricts the order query parameter to asc or desc.
var orderRule validate.Rule = validate.Check{Fn: func(_ context.Context, value any) error {
	if s, ok := value.(string); ok && (s == "asc" || s == "desc") {
		return nil
	}
	return apperror.Malformed("must be asc or desc")
}}

// sortColumn maps a validated sortBy value to its column, or "" when the
// parameter was absent (the store applies the resource default).
func sortColumn(fields map[string]string, query map[string]string) string {
	return fields[query["sortBy"]]
}

// searchOffset returns the validated pagination offset.
func searchOffset(query map[string]string) int {
	n, _ := validate.AsNatural(query["offset"])
	return int(n)
}
