package model

// KeywordID identifies a keyword in the keyword store
type KeywordID string

// Keyword is a word players race to guess during a round
type Keyword struct {
	ID   KeywordID
	Text string
}
