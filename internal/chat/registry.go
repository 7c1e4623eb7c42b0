// Package chat tracks which identity each live connection has claimed and
// enforces the uniqueness rules among them via the Registry type.
package chat

import (
	"strings"

	"github.com/samber/lo"
)

// Identity is the (username, avatar) pair a connection claims via join.
type Identity struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Registry maps live connections to their claimed identities. Usernames are
// unique case-insensitively and non-empty avatars are unique exactly among
// all currently registered identities.
//
// Registry is not safe for concurrent use; the hub's event loop is its only
// caller.
type Registry struct {
	identities map[Conn]Identity
	order      []Conn
}

// NewRegistry creates an empty identity registry.
func NewRegistry() *Registry {
	return &Registry{identities: make(map[Conn]Identity)}
}

// Join registers the identity against conn. It fails with ErrNameTaken or
// ErrAvatarTaken when another live identity already holds the username or
// the non-empty avatar. A connection that joins again replaces its previous
// identity, subject to the same uniqueness checks.
func (r *Registry) Join(conn Conn, username, avatar string) error {
	lower := strings.ToLower(username)
	for _, c := range r.order {
		if strings.ToLower(r.identities[c].Username) == lower {
			return ErrNameTaken
		}
	}
	if avatar != "" {
		for _, c := range r.order {
			if r.identities[c].Avatar == avatar {
				return ErrAvatarTaken
			}
		}
	}

	if _, rejoining := r.identities[conn]; !rejoining {
		r.order = append(r.order, conn)
	}
	r.identities[conn] = Identity{Username: username, Avatar: avatar}
	return nil
}

// Leave removes the identity bound to conn, if any, and reports the removed
// identity. Calling it for a connection that never joined is a no-op.
func (r *Registry) Leave(conn Conn) (Identity, bool) {
	id, ok := r.identities[conn]
	if !ok {
		return Identity{}, false
	}
	delete(r.identities, conn)
	for i, c := range r.order {
		if c == conn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return id, true
}

// Identity returns the identity bound to conn, if any.
func (r *Registry) Identity(conn Conn) (Identity, bool) {
	id, ok := r.identities[conn]
	return id, ok
}

// LookupByName resolves a username to its live connection, matching
// case-insensitively. The first match in registration order wins.
func (r *Registry) LookupByName(username string) (Conn, bool) {
	lower := strings.ToLower(username)
	for _, c := range r.order {
		if strings.ToLower(r.identities[c].Username) == lower {
			return c, true
		}
	}
	return nil, false
}

// Roster returns all live identities in registration order.
func (r *Registry) Roster() []Identity {
	return lo.Map(r.order, func(c Conn, _ int) Identity {
		return r.identities[c]
	})
}

// Usernames returns the usernames of all live identities in registration
// order.
func (r *Registry) Usernames() []string {
	return lo.Map(r.order, func(c Conn, _ int) string {
		return r.identities[c].Username
	})
}

// TakenAvatars returns the non-empty avatars currently in use, in
// registration order.
func (r *Registry) TakenAvatars() []string {
	return lo.FilterMap(r.order, func(c Conn, _ int) (string, bool) {
		avatar := r.identities[c].Avatar
		return avatar, avatar != ""
	})
}

// Len reports the number of live identities.
func (r *Registry) Len() int {
	return len(r.identities)
}
