package models

import "time"

// Deck represents a collection of words to practice
type Deck struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Word represents a single word in a deck
type Word struct {
	ID        string
	Text      string // Chinese characters
	Jyutping  string // Jyutping transliteration
	DeckID    string
	CreatedAt time.Time
}

// DeckWithWords combines a deck with its words
type DeckWithWords struct {
	Deck  Deck
	Words []Word
}
