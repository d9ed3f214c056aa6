package redis

import (
	"fmt"

	"github.com/wordduel/wordduel/internal/model"
)

// Key prefix for all directory data
const keyPrefix = "wordduel"

// userKey returns the Redis key for a user's profile hash
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// friendsKey returns the Redis key for a user's friend set
func friendsKey(id model.UserID) string {
	return fmt.Sprintf("%s:friends:%s", keyPrefix, id)
}

// blockedKey returns the Redis key for the set of users blocked by id
func blockedKey(id model.UserID) string {
	return fmt.Sprintf("%s:blocked:%s", keyPrefix, id)
}
