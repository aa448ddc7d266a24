package rbac

import (
	"errors"
	"sort"
	"strings"
)

// Role is the closed set of roles a caller can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// ErrUnknownRole is returned by ParseRole for values outside the role set.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Capability names an action guarded by authorization.
type Capability string

const (
	CapAssetView      Capability = "asset.view"
	CapAssetCreate    Capability = "asset.create"
	CapCategoryView   Capability = "category.view"
	CapCategoryCreate Capability = "category.create"
)

var grants = map[Role][]Capability{
	RoleAdmin: {
		CapAssetView,
		CapAssetCreate,
		CapCategoryView,
		CapCategoryCreate,
	},
	RoleViewer: {
		CapAssetView,
		CapCategoryView,
	},
}

// ParseRole converts stored or user supplied text into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Roles lists every known role, sorted by name.
func Roles() []Role {
	roles := make([]Role, 0, len(grants))
	for r := range grants {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// Valid reports whether r belongs to the role set.
func (r Role) Valid() bool {
	_, ok := grants[r]
	return ok
}

// Can reports whether the role is granted capability c.
func (r Role) Can(c Capability) bool {
	for _, granted := range grants[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities returns the capabilities granted to r.
func (r Role) Capabilities() []Capability {
	caps := make([]Capability, len(grants[r]))
	copy(caps, grants[r])
	return caps
}

func (r Role) String() string {
	return string(r)
}

// Principal describes the authenticated actor.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
}

// IsZero reports whether no identity is attached.
func (p Principal) IsZero() bool {
	return p.UserID <= 0
}

// Can reports whether an authenticated principal holds capability c.
func (p Principal) Can(c Capability) bool {
	return !p.IsZero() && p.Role.Can(c)
}
