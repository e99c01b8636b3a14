package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tonequest/internal/jyutping"
	"tonequest/internal/models"
	"tonequest/internal/repository"
	"tonequest/internal/validation"
)

// DeckService handles deck and word management
type DeckService struct {
	deckRepo *repository.DeckRepository
	logger   *zap.Logger
}

func NewDeckService(deckRepo *repository.DeckRepository, logger *zap.Logger) *DeckService {
	return &DeckService{deckRepo: deckRepo, logger: logger}
}

// ListDecks returns all decks
func (s *DeckService) ListDecks() ([]models.Deck, error) {
	return s.deckRepo.ListDecks()
}

// GetDeckWithWords returns a deck and its words
func (s *DeckService) GetDeckWithWords(deckID string) (*models.DeckWithWords, error) {
	deck, err := s.deckRepo.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}

	words, err := s.deckRepo.ListWords(deckID)
	if err != nil {
		return nil, err
	}

	return &models.DeckWithWords{Deck: *deck, Words: words}, nil
}

// CreateDeck creates a new empty deck
func (s *DeckService) CreateDeck(name, description string) (*models.Deck, error) {
	if err := validation.DeckName(name); err != nil {
		return nil, err
	}

	deck, err := s.deckRepo.CreateDeck(strings.TrimSpace(name), strings.TrimSpace(description))
	if err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}

	s.logger.Info("deck created",
		zap.String("deck_id", deck.ID),
		zap.String("name", deck.Name))
	return deck, nil
}

// DeleteDeck removes a deck and its words. Completed sessions that used
// the deck are kept with their deck reference cleared.
func (s *DeckService) DeleteDeck(deckID string) error {
	deleted, err := s.deckRepo.DeleteDeck(deckID)
	if err != nil {
		return fmt.Errorf("deleting deck: %w", err)
	}
	if !deleted {
		return ErrDeckNotFound
	}

	s.logger.Info("deck deleted", zap.String("deck_id", deckID))
	return nil
}

// AddWord adds a word to a deck. When no romanization is supplied it is
// generated from the word text; that fails for characters outside the
// built-in table, in which case the caller must supply it.
func (s *DeckService) AddWord(deckID, text, romanization string) (*models.Word, error) {
	if err := validation.WordText(text); err != nil {
		return nil, err
	}

	deck, err := s.deckRepo.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}

	text = strings.TrimSpace(text)
	romanization = strings.TrimSpace(romanization)
	if romanization == "" {
		romanization, err = jyutping.Convert(text)
		if err != nil {
			if errors.Is(err, jyutping.ErrUnknownCharacter) {
				return nil, validation.Error{
					Field:   "jyutping",
					Message: fmt.Sprintf("cannot derive jyutping for %q, supply it explicitly", text),
				}
			}
			return nil, err
		}
	}

	word, err := s.deckRepo.CreateWord(text, romanization, deckID)
	if err != nil {
		return nil, fmt.Errorf("creating word: %w", err)
	}

	s.logger.Info("word added",
		zap.String("deck_id", deckID),
		zap.String("word_id", word.ID),
		zap.String("text", word.Text))
	return word, nil
}

// DeleteWord removes a word from its deck
func (s *DeckService) DeleteWord(wordID string) error {
	deleted, err := s.deckRepo.DeleteWord(wordID)
	if err != nil {
		return fmt.Errorf("deleting word: %w", err)
	}
	if !deleted {
		return ErrWordNotFound
	}

	s.logger.Info("word deleted", zap.String("word_id", wordID))
	return nil
}
