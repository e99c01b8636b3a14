package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"tonequest/internal/models"
)

func (env *testEnv) newDeckService() *DeckService {
	return NewDeckService(env.deckRepo, zap.NewNop())
}

func TestAddWordGeneratesJyutping(t *testing.T) {
	env := newTestEnv(t)
	decks := env.newDeckService()

	deck, err := decks.CreateDeck("Starter", "")
	if err != nil {
		t.Fatalf("CreateDeck failed: %v", err)
	}

	word, err := decks.AddWord(deck.ID, "你好", "")
	if err != nil {
		t.Fatalf("AddWord failed: %v", err)
	}
	if word.Jyutping != "nei5 hou2" {
		t.Errorf("generated jyutping = %q, want nei5 hou2", word.Jyutping)
	}

	// Explicit jyutping wins over generation
	word, err = decks.AddWord(deck.ID, "你好", "custom1 custom2")
	if err != nil {
		t.Fatalf("AddWord with explicit jyutping failed: %v", err)
	}
	if word.Jyutping != "custom1 custom2" {
		t.Errorf("explicit jyutping overridden: %q", word.Jyutping)
	}

	// Unknown characters without explicit jyutping are rejected
	if _, err := decks.AddWord(deck.ID, "𠀀", ""); err == nil {
		t.Error("unknown character accepted without jyutping")
	}
	if _, err := decks.AddWord("no-such-deck", "你好", ""); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}

func TestDeleteDeckCascadesWordsButKeepsSessions(t *testing.T) {
	env := newTestEnv(t)
	decks := env.newDeckService()
	games := env.newGameService(t, nil)

	user := env.createUser(t, "player", models.RoleStudent)
	deck := env.createDeck(t, "一", "二")

	view, err := games.StartGame(user.ID, deck.ID)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if _, err := games.EndGame(user.ID, view.Session.ID); err != nil {
		t.Fatalf("EndGame failed: %v", err)
	}

	if err := decks.DeleteDeck(deck.ID); err != nil {
		t.Fatalf("DeleteDeck failed: %v", err)
	}

	words, err := env.deckRepo.ListWords(deck.ID)
	if err != nil {
		t.Fatalf("ListWords failed: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("words survived deck deletion: %d", len(words))
	}

	// The completed session survives with its deck reference cleared
	session, err := env.gameRepo.GetSession(view.Session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session == nil {
		t.Fatal("session deleted along with deck")
	}
	if session.DeckID != "" {
		t.Errorf("deck reference not cleared: %q", session.DeckID)
	}
	if session.Score == nil {
		t.Error("session lost its score")
	}

	if err := decks.DeleteDeck(deck.ID); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound on double delete, got %v", err)
	}
}

func TestDeleteWord(t *testing.T) {
	env := newTestEnv(t)
	decks := env.newDeckService()
	deck := env.createDeck(t, "一")

	words, err := env.deckRepo.ListWords(deck.ID)
	if err != nil {
		t.Fatalf("ListWords failed: %v", err)
	}

	if err := decks.DeleteWord(words[0].ID); err != nil {
		t.Fatalf("DeleteWord failed: %v", err)
	}
	if err := decks.DeleteWord(words[0].ID); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("expected ErrWordNotFound, got %v", err)
	}
}

func TestGetDeckWithWords(t *testing.T) {
	env := newTestEnv(t)
	decks := env.newDeckService()
	deck := env.createDeck(t, "一", "二", "三")

	got, err := decks.GetDeckWithWords(deck.ID)
	if err != nil {
		t.Fatalf("GetDeckWithWords failed: %v", err)
	}
	if got.Deck.ID != deck.ID || len(got.Words) != 3 {
		t.Errorf("unexpected deck view: %+v", got)
	}

	if _, err := decks.GetDeckWithWords("missing"); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}
