// Package identity carries the acting user into use cases as an explicit
// capability instead of reading it from request-scoped globals.
package identity

import (
	"slices"
	"strings"
)

// Permission names a capability granted by the identity provider.
type Permission string

const (
	// PermEditAnyTournament lets organizers manage every tournament.
	PermEditAnyTournament Permission = "edit-any:tournament"
)

// Actor is the caller of an operation. An empty PlayerID is an anonymous caller.
type Actor struct {
	PlayerID    string
	Permissions []Permission
}

// Anonymous returns an actor without identity or permissions.
func Anonymous() Actor {
	return Actor{}
}

// Player returns an actor for a regular player.
func Player(playerID string) Actor {
	return Actor{PlayerID: playerID}
}

// Admin returns an actor holding the organizer permission.
func Admin(playerID string) Actor {
	return Actor{PlayerID: playerID, Permissions: []Permission{PermEditAnyTournament}}
}

func (a Actor) HasPermission(p Permission) bool {
	return slices.Contains(a.Permissions, p)
}

// IsAdmin reports whether the actor may perform organizer-only operations.
func (a Actor) IsAdmin() bool {
	return a.HasPermission(PermEditAnyTournament)
}

// Owns reports whether the actor is the given player.
func (a Actor) Owns(playerID string) bool {
	return a.PlayerID != "" && a.PlayerID == playerID
}

// ParsePermissions splits a comma separated header value.
func ParsePermissions(raw string) []Permission {
	var perms []Permission
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			perms = append(perms, Permission(p))
		}
	}
	return perms
}
