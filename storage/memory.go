package storage

import (
	"context"
	"errors"
	"sync"

	"cardwall-api/domain"
)

var (
	// ErrNotFound is returned when no card with the requested id exists.
	ErrNotFound = errors.New("card not found")
	// ErrNotOwner is returned when the card exists but belongs to another
	// caller. Existence is always checked first, so ErrNotFound wins when
	// both would apply.
	ErrNotOwner = errors.New("caller does not own card")
)

// Patch carries the fields of a partial update. Nil fields retain the
// card's prior value. Title must already be validated and escaped.
type Patch struct {
	Title  *string
	Column *domain.Column
}

// Store is the authoritative in-memory card collection. It exclusively
// owns the card map and the id counter; all access goes through its
// mutex. State lives for the process lifetime only.
type Store struct {
	mu     sync.Mutex
	cards  map[int64]domain.Card
	order  []int64
	nextID int64
}

// New creates an empty store. Ids start at 1 and are never reused, even
// after deletes.
func New() *Store {
	return &Store{
		cards:  make(map[int64]domain.Card),
		nextID: 1,
	}
}

// Create stores a new card owned by ownerID and returns it with its
// assigned id. Title is expected in its stored (escaped) form.
func (s *Store) Create(ctx context.Context, ownerID, title string, column domain.Column) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := domain.Card{
		ID:      s.nextID,
		Title:   title,
		Column:  column,
		OwnerID: ownerID,
	}
	s.nextID++
	s.cards[card.ID] = card
	s.order = append(s.order, card.ID)
	return card, nil
}

// Get returns the card with the given id if it exists and the caller owns
// it.
func (s *Store) Get(ctx context.Context, id int64, callerID string) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked(id, callerID)
}

// List returns all cards owned by the caller, in insertion order. The
// order is an implementation detail, not a contract.
func (s *Store) List(ctx context.Context, ownerID string) ([]domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Card{}
	for _, id := range s.order {
		card, ok := s.cards[id]
		if !ok {
			continue
		}
		if card.OwnedBy(ownerID) {
			out = append(out, card)
		}
	}
	return out, nil
}

// Update merges the supplied fields into the card; absent fields keep
// their prior values.
func (s *Store) Update(ctx context.Context, id int64, callerID string, patch Patch) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := s.locked(id, callerID)
	if err != nil {
		return domain.Card{}, err
	}
	if patch.Title != nil {
		card.Title = *patch.Title
	}
	if patch.Column != nil {
		card.Column = *patch.Column
	}
	s.cards[id] = card
	return card, nil
}

// Delete removes the card. The freed id is never assigned again.
func (s *Store) Delete(ctx context.Context, id int64, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.locked(id, callerID); err != nil {
		return err
	}
	delete(s.cards, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// locked looks up a card and checks ownership. Callers must hold s.mu.
func (s *Store) locked(id int64, callerID string) (domain.Card, error) {
	card, ok := s.cards[id]
	if !ok {
		return domain.Card{}, ErrNotFound
	}
	if !card.OwnedBy(callerID) {
		return domain.Card{}, ErrNotOwner
	}
	return card, nil
}
