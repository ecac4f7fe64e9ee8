package sheet

import (
	"fmt"
	"strings"

	"registro/internal/core"
)

// recordRow renders a record as one A:G ledger row. The amount travels
// as a plain signed decimal so the sheet can sum it natively.
func recordRow(rec core.Record, memberName, reasonName string) []any {
	return []any{
		rec.ID,
		rec.Date,
		memberName,
		string(rec.Movement),
		reasonName,
		rec.Description,
		core.FormatCents(rec.Amount.Cents),
	}
}

// parseRow converts one ledger row back into a record. Member and
// reason come back as names; the sheet is its own directory.
func parseRow(row []string) (core.Record, error) {
	if len(row) < len(columns) {
		return core.Record{}, fmt.Errorf("short row: %d of %d columns", len(row), len(columns))
	}

	id := strings.TrimSpace(row[0])
	if id == "" {
		return core.Record{}, fmt.Errorf("empty id")
	}

	date := strings.TrimSpace(row[1])
	if _, err := core.ParseDate(date); err != nil {
		return core.Record{}, fmt.Errorf("fecha %q: %w", date, err)
	}

	movement := core.MovementKind(strings.ToUpper(strings.TrimSpace(row[3])))
	if !movement.Valid() {
		return core.Record{}, fmt.Errorf("movimiento %q: %w", row[3], core.ErrInvalidMovement)
	}

	cents, err := core.ParseDecimalToCents(row[6])
	if err != nil {
		return core.Record{}, fmt.Errorf("monto %q: %w", row[6], err)
	}

	return core.Record{
		ID:          id,
		Date:        date,
		MemberID:    strings.ToUpper(strings.TrimSpace(row[2])),
		ReasonID:    strings.ToUpper(strings.TrimSpace(row[4])),
		Movement:    movement,
		Amount:      core.Money{Cents: cents},
		Description: strings.TrimSpace(row[5]),
	}, nil
}
