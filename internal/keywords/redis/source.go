package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wordduel/wordduel/internal/keywords"
	"github.com/wordduel/wordduel/internal/model"
)

// keywordsKey is the hash holding keyword id -> text
const keywordsKey = "wordduel:keywords"

// Source is a Redis-backed keyword store
type Source struct {
	client *redis.Client
}

// New creates a Redis keyword source with an existing client
func New(client *redis.Client) *Source {
	return &Source{client: client}
}

// Ensure Source implements the interface
var _ keywords.Source = (*Source)(nil)

// DrawRandom picks a random field from the keyword hash
func (s *Source) DrawRandom(ctx context.Context) (*model.Keyword, error) {
	pairs, err := s.client.HRandFieldWithValues(ctx, keywordsKey, 1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoKeyword
		}
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, model.ErrNoKeyword
	}
	return &model.Keyword{
		ID:   model.KeywordID(pairs[0].Key),
		Text: pairs[0].Value,
	}, nil
}

// Load replaces the keyword set with the given words, assigning
// sequential ids
func (s *Source) Load(ctx context.Context, words []string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, keywordsKey)
	id := 0
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		id++
		pipe.HSet(ctx, keywordsKey, fmt.Sprintf("%d", id), word)
	}
	_, err := pipe.Exec(ctx)
	return err
}
