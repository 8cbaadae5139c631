// Package policy holds the declarative field-level authorization tables.
//
// Each resource has one table mapping field names to the minimum role that
// may read and the minimum role that may write the field. Roles are ordered
// (anonymous < stranger < owner < admin), so "minimum role" encodes the
// read-roles/write-roles sets compactly. The same table serves every
// operation: reads project through it, writes are guarded by it.
package policy

import (
	"fmt"

	"github.com/nhollis/inkwell/internal/apperror"
)

// Role is the caller's relationship to a specific record.
type Role int

const (
	Anonymous Role = iota // no credentials supplied
	Stranger              // authenticated, but neither owner nor admin
	Owner                 // the record's own account, or a post's author
	Admin                 // administrator
	Nobody                // sentinel: no role qualifies (server-managed fields)
)

// Access is the per-field rule: the minimum role required to read the field
// and the minimum role required to write it.
type Access struct {
	Read  Role
	Write Role
}

// Table maps field names to their access rules for one resource type.
type Table map[string]Access

// AccountFields is the authorization table for accounts.
//
// Public callers see the identity subset, owners additionally see their
// email, and only administrators see the role flags. The password is
// write-only; the stored hashes are not fields at all.
var AccountFields = Table{
	"id":               {Read: Anonymous, Write: Nobody},
	"givenName":        {Read: Anonymous, Write: Owner},
	"familyName":       {Read: Anonymous, Write: Owner},
	"createdAt":        {Read: Anonymous, Write: Nobody},
	"emailAddress":     {Read: Owner, Write: Owner},
	"updatedAt":        {Read: Owner, Write: Nobody},
	"password":         {Read: Nobody, Write: Owner},
	"active":           {Read: Admin, Write: Admin},
	"authorizedToBlog": {Read: Admin, Write: Admin},
	"admin":            {Read: Admin, Write: Admin},
}

// PostFields is the authorization table for blog posts. The author field
// may only be reassigned by an administrator; the active flag is visible to
// the author and administrators only.
var PostFields = Table{
	"id":         {Read: Anonymous, Write: Owner},
	"title":      {Read: Anonymous, Write: Owner},
	"author":     {Read: Anonymous, Write: Admin},
	"body":       {Read: Anonymous, Write: Owner},
	"preview":    {Read: Anonymous, Write: Owner},
	"postedTime": {Read: Anonymous, Write: Owner},
	"active":     {Read: Owner, Write: Owner},
	"createdAt":  {Read: Anonymous, Write: Nobody},
	"updatedAt":  {Read: Anonymous, Write: Nobody},
}

// PageFields is the authorization table for info pages: world-readable,
// administrator-writable.
var PageFields = Table{
	"id":        {Read: Anonymous, Write: Admin},
	"title":     {Read: Anonymous, Write: Admin},
	"body":      {Read: Anonymous, Write: Admin},
	"createdAt": {Read: Anonymous, Write: Nobody},
	"updatedAt": {Read: Anonymous, Write: Nobody},
}

// Project returns the subset of fields the role may read. Fields without a
// table entry are dropped.
func Project(table Table, role Role, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		access, ok := table[name]
		if !ok {
			continue
		}
		if role >= access.Read {
			out[name] = value
		}
	}
	return out
}

// CheckWrites rejects any submitted attribute the role may not write, even
// when the submitted value equals the stored one. Attributes absent from
// the table are left for the validator to reject as unknown.
func CheckWrites(table Table, role Role, attrs map[string]any) error {
	for name := range attrs {
		access, ok := table[name]
		if !ok {
			continue
		}
		if access.Write == Nobody || role < access.Write {
			return apperror.Authorization(fmt.Sprintf("not permitted to set %s", name))
		}
	}
	return nil
}
