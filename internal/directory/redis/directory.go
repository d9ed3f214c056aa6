package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/wordduel/wordduel/internal/directory"
	"github.com/wordduel/wordduel/internal/model"
)

// Profile hash fields
const (
	fieldNickname = "nickname"
	fieldEmail    = "email"
	fieldAvatar   = "avatar"
)

// Directory is a Redis-backed implementation of the user directory.
// Profiles are hashes, friendships and blocks are sets per user.
type Directory struct {
	client *redis.Client
}

// New creates a Redis directory with an existing client
func New(client *redis.Client) *Directory {
	return &Directory{client: client}
}

// Ensure Directory implements the interfaces
var (
	_ directory.Directory = (*Directory)(nil)
	_ directory.Writer    = (*Directory)(nil)
)

func (d *Directory) FindUserByID(ctx context.Context, id model.UserID) (*model.Profile, error) {
	fields, err := d.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrUserNotFound
	}
	return &model.Profile{
		ID:       id,
		Nickname: fields[fieldNickname],
		Email:    fields[fieldEmail],
		Avatar:   fields[fieldAvatar],
	}, nil
}

func (d *Directory) AreFriends(ctx context.Context, a, b model.UserID) (bool, error) {
	return d.client.SIsMember(ctx, friendsKey(a), string(b)).Result()
}

func (d *Directory) IsBlocked(ctx context.Context, actor, target model.UserID) (bool, error) {
	return d.client.SIsMember(ctx, blockedKey(target), string(actor)).Result()
}

func (d *Directory) GetFriends(ctx context.Context, id model.UserID) ([]model.Profile, error) {
	ids, err := d.client.SMembers(ctx, friendsKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var friends []model.Profile
	for _, friendID := range ids {
		profile, err := d.FindUserByID(ctx, model.UserID(friendID))
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				// Dangling friend reference; skip rather than fail the list
				continue
			}
			return nil, err
		}
		friends = append(friends, *profile)
	}
	return friends, nil
}

func (d *Directory) SaveUser(ctx context.Context, profile *model.Profile) error {
	return d.client.HSet(ctx, userKey(profile.ID),
		fieldNickname, profile.Nickname,
		fieldEmail, profile.Email,
		fieldAvatar, profile.Avatar,
	).Err()
}

func (d *Directory) AddFriendship(ctx context.Context, a, b model.UserID) error {
	// Friendship is symmetric; keep both sets in one round trip
	pipe := d.client.Pipeline()
	pipe.SAdd(ctx, friendsKey(a), string(b))
	pipe.SAdd(ctx, friendsKey(b), string(a))
	_, err := pipe.Exec(ctx)
	return err
}

func (d *Directory) Block(ctx context.Context, blocker, blocked model.UserID) error {
	return d.client.SAdd(ctx, blockedKey(blocker), string(blocked)).Err()
}
