// Package transfer round-trips the data set through CSV. The export
// preserves the dd/mm/yyyy dates and the signed amounts losslessly, so
// importing an export reproduces identical aggregation results.
package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"registro/internal/core"
)

// Header is the fixed CSV column layout.
var Header = []string{"fecha", "integrante", "movimiento", "razon", "descripcion", "monto"}

// LineError reports a rejected CSV line. Line numbers are 1-based and
// include the header line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParseResult is the outcome of reading a CSV stream. Members and
// Reasons contain every entity the records reference, existing ones
// first, newly minted ones after. Rejected lines land in Errors; good
// lines are never lost because of bad neighbours.
type ParseResult struct {
	Records []core.Record
	Members []core.Member
	Reasons []core.Reason
	Errors  []LineError
}

// Export writes records as CSV, resolving member and reason references
// to their names. A dangling reference exports its raw id so the row
// is not lost.
func Export(w io.Writer, records []core.Record, members []core.Member, reasons []core.Reason) error {
	memberNames := make(map[string]string, len(members))
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}
	reasonNames := make(map[string]string, len(reasons))
	for _, r := range reasons {
		reasonNames[r.ID] = r.Description
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		member, ok := memberNames[rec.MemberID]
		if !ok {
			member = rec.MemberID
		}
		reason, ok := reasonNames[rec.ReasonID]
		if !ok {
			reason = rec.ReasonID
		}
		row := []string{
			rec.Date,
			member,
			string(rec.Movement),
			reason,
			rec.Description,
			core.FormatCents(rec.Amount.Cents),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Parse reads a CSV stream against the existing directories. Member
// and reason names not yet known are minted with fresh ids; records on
// malformed lines are collected as line errors. Only a structurally
// unreadable stream returns a top-level error.
func Parse(r io.Reader, members []core.Member, reasons []core.Reason) (ParseResult, error) {
	res := ParseResult{
		Members: append([]core.Member(nil), members...),
		Reasons: append([]core.Reason(nil), reasons...),
	}
	memberByName := make(map[string]string)
	for _, m := range res.Members {
		memberByName[m.Name] = m.ID
	}
	reasonByName := make(map[string]string)
	for _, re := range res.Reasons {
		reasonByName[re.Description] = re.ID
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	if !headerMatches(header) {
		return res, fmt.Errorf("unexpected header %v, want %v", header, Header)
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Err: err})
			continue
		}

		rec, err := parseRow(row, &res, memberByName, reasonByName)
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func parseRow(row []string, res *ParseResult, memberByName, reasonByName map[string]string) (core.Record, error) {
	date := strings.TrimSpace(row[0])
	if _, err := core.ParseDate(date); err != nil {
		return core.Record{}, fmt.Errorf("fecha %q: %w", date, err)
	}

	movement := core.MovementKind(strings.ToUpper(strings.TrimSpace(row[2])))
	if !movement.Valid() {
		return core.Record{}, fmt.Errorf("movimiento %q: %w", row[2], core.ErrInvalidMovement)
	}

	cents, err := core.ParseDecimalToCents(row[5])
	if err != nil {
		return core.Record{}, fmt.Errorf("monto %q: %w", row[5], err)
	}

	memberName := canonical(row[1])
	if memberName == "" {
		return core.Record{}, core.ErrEmptyMember
	}
	reasonName := canonical(row[3])
	if reasonName == "" {
		return core.Record{}, core.ErrEmptyReason
	}

	memberID, ok := memberByName[memberName]
	if !ok {
		m := core.Member{ID: uuid.NewString(), Name: memberName}
		res.Members = append(res.Members, m)
		memberByName[memberName] = m.ID
		memberID = m.ID
	}
	reasonID, ok := reasonByName[reasonName]
	if !ok {
		re := core.Reason{ID: uuid.NewString(), Description: reasonName}
		res.Reasons = append(res.Reasons, re)
		reasonByName[reasonName] = re.ID
		reasonID = re.ID
	}

	return core.Record{
		ID:          uuid.NewString(),
		Date:        date,
		MemberID:    memberID,
		ReasonID:    reasonID,
		Movement:    movement,
		Amount:      core.Money{Cents: core.NormalizeAmount(movement, cents)},
		Description: strings.TrimSpace(row[4]),
	}, nil
}

func canonical(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func headerMatches(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), Header[i]) {
			return false
		}
	}
	return true
}
