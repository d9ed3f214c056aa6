package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/wordduel/wordduel/internal/dependencies/random"
	"github.com/wordduel/wordduel/internal/keywords"
	"github.com/wordduel/wordduel/internal/model"
)

// Source is an in-memory keyword store
type Source struct {
	mu       sync.RWMutex
	keywords []model.Keyword
	random   random.Random
}

// New creates an empty in-memory keyword source
func New(rnd random.Random) *Source {
	return &Source{random: rnd}
}

// Ensure Source implements the interface
var _ keywords.Source = (*Source)(nil)

// DrawRandom returns a random keyword from the loaded set
func (s *Source) DrawRandom(ctx context.Context) (*model.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.keywords) == 0 {
		return nil, model.ErrNoKeyword
	}
	kw := s.keywords[s.random.Intn(len(s.keywords))]
	return &kw, nil
}

// Load replaces the keyword set with the given words, assigning
// sequential ids
func (s *Source) Load(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords = s.keywords[:0]
	for i, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		s.keywords = append(s.keywords, model.Keyword{
			ID:   model.KeywordID(fmt.Sprintf("%d", i+1)),
			Text: word,
		})
	}
}

// LoadFromFile loads one keyword per line from the given file
func (s *Source) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.Load(words)
	return nil
}

// Count returns the number of loaded keywords
func (s *Source) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keywords)
}
