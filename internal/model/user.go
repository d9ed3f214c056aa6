package model

// UserID uniquely identifies a user across the system
type UserID string

// Profile is the public identity of a user, as shown to friends and opponents
type Profile struct {
	ID       UserID `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}
