// Package service implements the resource operations: each one opens a
// single transaction, resolves the caller, validates and authorizes the
// request, mutates or queries the store, and projects the result through
// the authorization policy.
package service

import (
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/policy"
)

// PageSize is the fixed search page size.
const PageSize = 10

// Credentials are an email/password pair supplied with a request.
type Credentials struct {
	Email    string
	Password string
}

// Request is the transport-agnostic descriptor every resource operation
// consumes. The HTTP layer fills it from basic auth or the body's auth
// object (Auth), a bearer session token (Session), path parameters, query
// parameters, and the decoded JSON body.
type Request struct {
	Auth    *Credentials   // nil when no credentials were supplied
	Session int64          // account ID from a session token; 0 when absent
	Params  map[string]string
	Query   map[string]string
	Body    map[string]any
}

// authenticated reports whether the request carries any identity at all.
func (r *Request) authenticated() bool {
	return r.Auth != nil || r.Session != 0
}

// queryAttrs adapts query parameters to the validator's attribute map.
func (r *Request) queryAttrs() map[string]any {
	attrs := make(map[string]any, len(r.Query))
	for k, v := range r.Query {
		attrs[k] = v
	}
	return attrs
}

// roleFor resolves the caller's role relative to a record owned by
// ownerID. Administrators outrank ownership.
func roleFor(caller *model.Account, ownerID int64) policy.Role {
	switch {
	case caller == nil:
		return policy.Anonymous
	case caller.Admin:
		return policy.Admin
	case caller.ID == ownerID:
		return policy.Owner
	default:
		return policy.Stranger
	}
}
