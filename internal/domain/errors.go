package domain

import "errors"

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")

	// ErrDuplicateUser: the display name is already taken in the room.
	ErrDuplicateUser = errors.New("user already exists in room")
	// ErrUserNotFound: toggle/leave/remove on an absent room member.
	ErrUserNotFound = errors.New("user not found in room")
	// ErrRoomNotFound: operation on a room id never created.
	ErrRoomNotFound = errors.New("room not found")
	// ErrUnknownBreakoutRoom: breakout operation on a deleted or never-created id.
	ErrUnknownBreakoutRoom = errors.New("unknown breakout room")
	// ErrUnknownSession: the connection has no session (never joined or already removed).
	ErrUnknownSession = errors.New("unknown session")
	// ErrNotConnected: the connection id is not registered with the transport.
	ErrNotConnected = errors.New("not connected")
	// ErrMissingField: malformed request or event payload.
	ErrMissingField = errors.New("missing field")
)
