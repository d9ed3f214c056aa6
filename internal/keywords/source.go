package keywords

import (
	"context"

	"github.com/wordduel/wordduel/internal/model"
)

// Source supplies random keywords for rounds. A draw is the only
// collaborator call on the hot guess/ready path and may fail; callers
// must treat failure as retriable, not fatal.
type Source interface {
	// DrawRandom returns a random keyword, or model.ErrNoKeyword if the
	// store is empty
	DrawRandom(ctx context.Context) (*model.Keyword, error)
}
