// Package chat enumerates the recoverable failure modes of the core. Each
// one produces a targeted notification back to the requesting connection
// and leaves all shared state unchanged.
package chat

import "errors"

var (
	// ErrBlocked is returned when a join names a blocked username.
	ErrBlocked = errors.New("username is blocked")

	// ErrNameTaken is returned when a join names a username already held
	// by a live identity, compared case-insensitively.
	ErrNameTaken = errors.New("username is already taken")

	// ErrAvatarTaken is returned when a join claims a non-empty avatar
	// already held by a live identity.
	ErrAvatarTaken = errors.New("avatar is already taken")

	// ErrMissingUsername is returned by admin operations invoked without
	// a username.
	ErrMissingUsername = errors.New("username is required")

	// ErrNotOnline is returned when an admin kick targets a username with
	// no live identity.
	ErrNotOnline = errors.New("user is not online")
)
