package model

import "errors"

// Common errors used across the application
var (
	// User / presence errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUserOffline   = errors.New("user is not online")

	// Invite errors
	ErrInviteNotFound = errors.New("invite not found or expired")
	ErrNotYourInvite  = errors.New("this invite is not addressed to you")
	ErrSelfInvite     = errors.New("cannot invite yourself")
	ErrNotFriends     = errors.New("you can only invite friends")
	ErrBlocked        = errors.New("this user cannot be invited")
	ErrSenderOffline  = errors.New("the user who sent the invite is no longer online")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomNotStarted = errors.New("game not found or not started")
	ErrAlreadyInRoom  = errors.New("already in an active game")

	// Keyword errors
	ErrNoKeyword = errors.New("no keyword available")
)
