package core

import (
	"errors"
	"strings"
)

// MovementKind classifies a financial record. The string values are the
// wire values used by the CSV layer and the storage backends.
const (
	Income     MovementKind = "INGRESOS"
	Expense    MovementKind = "GASTOS"
	Investment MovementKind = "INVERSION"
)

type (
	MovementKind string

	// Member is a participant of the team ledger. Protected members are
	// seeded by the system and cannot be renamed or removed.
	Member struct {
		ID        string
		Name      string
		Protected bool
	}

	// Reason categorizes records. Quick reasons are surfaced first by
	// quick-entry clients.
	Reason struct {
		ID          string
		Description string
		Quick       bool
	}

	// Record is a single dated financial movement. Date holds the stored
	// "dd/mm/yyyy" string as supplied by the record source; the reporting
	// pipeline normalizes it and silently excludes records whose date does
	// not parse. Amount is signed: income non-negative, expense and
	// investment non-positive. The sign is fixed once, at the write
	// boundary (NormalizeAmount), and trusted everywhere after.
	Record struct {
		ID          string
		Date        string
		MemberID    string
		ReasonID    string
		Movement    MovementKind
		Amount      Money
		Description string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMovement  = errors.New("invalid movement kind")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyMember      = errors.New("empty member reference")
	ErrEmptyReason      = errors.New("empty reason reference")
	ErrProtectedMember  = errors.New("member is protected")
	ErrSignMismatch     = errors.New("amount sign contradicts movement kind")
)

// Valid reports whether k is one of the three known movement kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case Income, Expense, Investment:
		return true
	}
	return false
}

// NormalizeAmount forces the sign convention for the given kind: income
// amounts become non-negative, expense and investment amounts become
// non-positive. Applied once when a record is created, amended, or
// imported; the aggregation path never re-infers sign from kind.
func NormalizeAmount(kind MovementKind, cents int64) int64 {
	switch kind {
	case Income:
		if cents < 0 {
			return -cents
		}
	case Expense, Investment:
		if cents > 0 {
			return -cents
		}
	}
	return cents
}

// SignAgreesWithKind reports whether a stored amount respects the sign
// convention for its movement kind.
func SignAgreesWithKind(kind MovementKind, cents int64) bool {
	switch kind {
	case Income:
		return cents >= 0
	case Expense, Investment:
		return cents <= 0
	}
	return false
}

// Validate checks a record at the write boundary. Historical rows that
// arrive through bulk import are not validated here; the reporting
// pipeline excludes what it cannot use.
func (r Record) Validate() error {
	if _, err := ParseDate(r.Date); err != nil {
		return err
	}
	if strings.TrimSpace(r.MemberID) == "" {
		return ErrEmptyMember
	}
	if strings.TrimSpace(r.ReasonID) == "" {
		return ErrEmptyReason
	}
	if !r.Movement.Valid() {
		return ErrInvalidMovement
	}
	if !SignAgreesWithKind(r.Movement, r.Amount.Cents) {
		return ErrSignMismatch
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Validate checks a member before create/update.
func (m Member) Validate() error {
	if len(strings.TrimSpace(m.Name)) == 0 {
		return ErrEmptyName
	}
	if len(m.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

// Validate checks a reason before create/update.
func (r Reason) Validate() error {
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 100 {
		return errors.New("description too long (max 100 characters)")
	}
	return nil
}
