package domain

import (
	"errors"
	"unicode/utf8"
)

// Column is the board column a card sits in. Values outside the three
// known variants are rejected by ParseColumn before they reach the store.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnDone       Column = "done"
)

// Title length bounds, applied to the raw input before escaping.
const (
	TitleMinLen = 3
	TitleMaxLen = 255
)

var (
	ErrTitleLength   = errors.New("title length out of range")
	ErrUnknownColumn = errors.New("unknown column")
)

// Card represents a single board item.
type Card struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Column  Column `json:"column"`
	OwnerID string `json:"owner_id"`
}

// OwnedBy reports whether the given caller owns the card.
func (c Card) OwnedBy(userID string) bool {
	return c.OwnerID == userID
}

// ParseColumn validates a raw column value against the closed variant set.
func ParseColumn(raw string) (Column, error) {
	switch Column(raw) {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return Column(raw), nil
	}
	return "", ErrUnknownColumn
}

// NewTitle checks the raw title against the declared length bounds and
// returns the escaped form to store. The length check runs on the raw
// input; escaping may expand the result past TitleMaxLen and the expanded
// value is stored as-is.
func NewTitle(raw string) (string, error) {
	n := utf8.RuneCountInString(raw)
	if n < TitleMinLen || n > TitleMaxLen {
		return "", ErrTitleLength
	}
	return EscapeTitle(raw), nil
}
