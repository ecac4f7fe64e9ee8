// Package sheet talks to the remote Google Sheets ledger: one row per
// record, appended by the sync worker and readable as a full snapshot.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"registro/internal/core"
)

// Ledger row layout, columns A:G.
var columns = []string{"id", "fecha", "integrante", "movimiento", "razon", "descripcion", "monto"}

type Ledger struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv builds a ledger client from the environment. Requires
// GOOGLE_SPREADSHEET_ID; credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. GOOGLE_SHEET_NAME defaults to
// "Registros".
func NewFromEnv(ctx context.Context) (*Ledger, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Registros"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Ledger{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Upsert writes the record to its existing row, or appends a new row
// when the id is not in the ledger yet. Member and reason travel as
// names so the sheet stays readable.
func (l *Ledger) Upsert(ctx context.Context, rec core.Record, memberName, reasonName string) error {
	if l.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := l.findRow(ctx, rec.ID)
	if err != nil {
		return err
	}
	if row == 0 {
		next, err := l.nextRow(ctx)
		if err != nil {
			return err
		}
		row = next
	}

	rng := fmt.Sprintf("%s!A%d:G%d", l.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{recordRow(rec, memberName, reasonName)}}
	_, err = l.svc.Spreadsheets.Values.Update(l.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in sheet %s: %w", row, l.sheetName, err)
	}

	slog.InfoContext(ctx, "Record written to sheet ledger",
		"id", rec.ID, "row", row, "sheet", l.sheetName)
	return nil
}

// Delete clears the ledger row holding the given record id. A missing
// id is not an error: the worker may replay deletes.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	if l.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := l.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.WarnContext(ctx, "Record not in sheet ledger, nothing to delete", "id", id)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:G%d", l.sheetName, row, row)
	_, err = l.svc.Spreadsheets.Values.Clear(l.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", row, l.sheetName, err)
	}

	slog.InfoContext(ctx, "Record cleared from sheet ledger", "id", id, "row", row)
	return nil
}

// ReadAll returns every parseable record row in the ledger. Rows that
// do not parse are skipped with a warning; one bad row must not hide
// the rest of the history.
func (l *Ledger) ReadAll(ctx context.Context) ([]core.Record, error) {
	if l.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:G", l.sheetName)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", l.sheetName, err)
	}

	var records []core.Record
	for i, row := range resp.Values {
		rec, err := parseRow(toStrings(row))
		if err != nil {
			slog.WarnContext(ctx, "Skipping unparseable ledger row",
				"row", i+2, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// findRow locates the 1-based row of a record id in column A, 0 when
// absent.
func (l *Ledger) findRow(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", l.sheetName)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("scan id column in sheet %s: %w", l.sheetName, err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (l *Ledger) nextRow(ctx context.Context) (int, error) {
	rng := fmt.Sprintf("%s!A:A", l.sheetName)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get sheet dimensions for %s: %w", l.sheetName, err)
	}
	return len(resp.Values) + 1, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
