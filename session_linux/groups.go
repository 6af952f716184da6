//go:build linux

package session_linux

import (
	"fmt"
	"os/user"

	"ttywarden/session"
)

// UserGroups implements the session.Groups interface over the system
// user database. Membership is computed on demand and not cached across
// users.
type UserGroups struct{}

// NewUserGroups creates a UserGroups resolver.
func NewUserGroups() session.Groups {
	return &UserGroups{}
}

// Groups returns the set of group names containing name.
func (g *UserGroups) Groups(name string) (map[string]bool, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", name, err)
	}
	ids, err := u.GroupIds()
	if err != nil {
		return nil, fmt.Errorf("groups of %q: %w", name, err)
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		grp, err := user.LookupGroupId(id)
		if err != nil {
			continue // stale gid, ignore
		}
		out[grp.Name] = true
	}
	return out, nil
}
