package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"tonequest/internal/database"
	"tonequest/internal/models"
)

// DeckRepository handles deck and word database operations
type DeckRepository struct {
	db *database.DB
}

// NewDeckRepository creates a new deck repository
func NewDeckRepository(db *database.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// CreateDeck inserts a new deck and returns it
func (r *DeckRepository) CreateDeck(name, description string) (*models.Deck, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO decks (id, name, description)
		VALUES (?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, name, description); err != nil {
		return nil, err
	}

	return r.GetDeck(id)
}

// GetDeck retrieves a deck by ID, nil when absent
func (r *DeckRepository) GetDeck(id string) (*models.Deck, error) {
	query := `
		SELECT id, name, description, created_at
		FROM decks
		WHERE id = ?
	`

	deck := &models.Deck{}
	err := r.db.QueryRow(query, id).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Description,
		&deck.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return deck, nil
}

// ListDecks retrieves all decks ordered by name
func (r *DeckRepository) ListDecks() ([]models.Deck, error) {
	query := `
		SELECT id, name, description, created_at
		FROM decks
		ORDER BY name ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var deck models.Deck
		err := rows.Scan(
			&deck.ID,
			&deck.Name,
			&deck.Description,
			&deck.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}

	return decks, rows.Err()
}

// DeleteDeck removes a deck; its words cascade, historical sessions keep
// playing records with a nulled deck reference. Returns false when the
// deck does not exist.
func (r *DeckRepository) DeleteDeck(id string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM decks WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateWord inserts a new word into a deck and returns it
func (r *DeckRepository) CreateWord(text, jyutping, deckID string) (*models.Word, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO words (id, text, jyutping, deck_id)
		VALUES (?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, text, jyutping, deckID); err != nil {
		return nil, err
	}

	return r.GetWord(id)
}

// GetWord retrieves a word by ID, nil when absent
func (r *DeckRepository) GetWord(id string) (*models.Word, error) {
	query := `
		SELECT id, text, jyutping, deck_id, created_at
		FROM words
		WHERE id = ?
	`

	word := &models.Word{}
	err := r.db.QueryRow(query, id).Scan(
		&word.ID,
		&word.Text,
		&word.Jyutping,
		&word.DeckID,
		&word.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return word, nil
}

// ListWords retrieves all words in a deck in insertion order
func (r *DeckRepository) ListWords(deckID string) ([]models.Word, error) {
	query := `
		SELECT id, text, jyutping, deck_id, created_at
		FROM words
		WHERE deck_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWords(rows)
}

// GetWordsByIDs retrieves words for a set of ids, keyed by id. Missing
// ids are simply absent from the map.
func (r *DeckRepository) GetWordsByIDs(ids []string) (map[string]models.Word, error) {
	words := make(map[string]models.Word, len(ids))
	if len(ids) == 0 {
		return words, nil
	}

	query := `
		SELECT id, text, jyutping, deck_id, created_at
		FROM words
		WHERE id IN (` + placeholders(len(ids)) + `)
	`

	rows, err := r.db.Query(query, stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := scanWords(rows)
	if err != nil {
		return nil, err
	}

	for _, w := range list {
		words[w.ID] = w
	}
	return words, nil
}

// DeleteWord removes a word. Returns false when the word does not exist.
func (r *DeckRepository) DeleteWord(id string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM words WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanWords(rows *sql.Rows) ([]models.Word, error) {
	var words []models.Word
	for rows.Next() {
		var word models.Word
		err := rows.Scan(
			&word.ID,
			&word.Text,
			&word.Jyutping,
			&word.DeckID,
			&word.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, rows.Err()
}
