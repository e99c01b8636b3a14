package service

import (
	"fmt"

	"go.uber.org/zap"

	"tonequest/internal/repository"
)

var demoWords = []struct {
	text     string
	jyutping string
}{
	{"你好", "nei5 hou2"},
	{"多謝", "do1 ze6"},
	{"早晨", "zou2 san4"},
	{"食飯", "sik6 faan6"},
	{"飲水", "jam2 seoi2"},
	{"學校", "hok6 haau6"},
	{"朋友", "pang4 jau5"},
	{"屋企", "uk1 kei2"},
}

// SeedDemoData installs a starter deck so a fresh install has
// something to play with. It is a no-op once any deck exists.
func SeedDemoData(deckRepo *repository.DeckRepository, logger *zap.Logger) error {
	decks, err := deckRepo.ListDecks()
	if err != nil {
		return fmt.Errorf("checking existing decks: %w", err)
	}
	if len(decks) > 0 {
		return nil
	}

	deck, err := deckRepo.CreateDeck("Everyday Cantonese", "Common words and phrases to get started")
	if err != nil {
		return fmt.Errorf("creating demo deck: %w", err)
	}

	for _, w := range demoWords {
		if _, err := deckRepo.CreateWord(w.text, w.jyutping, deck.ID); err != nil {
			return fmt.Errorf("creating demo word %q: %w", w.text, err)
		}
	}

	logger.Info("seeded demo deck",
		zap.String("deck_id", deck.ID),
		zap.Int("words", len(demoWords)))
	return nil
}
