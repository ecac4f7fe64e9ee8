package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"registro/internal/core"
	"registro/internal/store"
)

// Mode selects what an import does with the data already present.
type Mode string

const (
	// ModeAdd appends the imported rows next to the existing data.
	ModeAdd Mode = "add"
	// ModeReplace swaps the whole data set for the imported one,
	// keeping protected members.
	ModeReplace Mode = "replace"
)

// ImporterStore is the slice of backend ports an import needs.
type ImporterStore interface {
	store.RecordWriter
	store.MemberDirectory
	store.ReasonDirectory
	store.BulkReplacer
}

// Summary reports what an import did.
type Summary struct {
	Imported int
	Rejected []LineError
}

// Importer applies parsed CSV data to a backend.
type Importer struct {
	store ImporterStore
}

func NewImporter(st ImporterStore) *Importer {
	return &Importer{store: st}
}

// Import reads CSV from r and applies it in the given mode. Bad lines
// are reported in the summary, not fatal; a structurally broken stream
// or a failing backend is.
func (i *Importer) Import(ctx context.Context, r io.Reader, mode Mode) (Summary, error) {
	if mode != ModeAdd && mode != ModeReplace {
		return Summary{}, fmt.Errorf("unknown import mode %q", mode)
	}

	members, err := i.store.ListMembers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list members: %w", err)
	}
	reasons, err := i.store.ListReasons(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list reasons: %w", err)
	}

	parsed, err := Parse(r, members, reasons)
	if err != nil {
		return Summary{}, fmt.Errorf("parse csv: %w", err)
	}

	switch mode {
	case ModeReplace:
		err = i.replace(ctx, parsed)
	default:
		err = i.add(ctx, parsed, len(members), len(reasons))
	}
	if err != nil {
		return Summary{}, err
	}

	slog.InfoContext(ctx, "CSV import finished",
		"mode", mode,
		"imported", len(parsed.Records),
		"rejected", len(parsed.Errors))
	return Summary{Imported: len(parsed.Records), Rejected: parsed.Errors}, nil
}

func (i *Importer) add(ctx context.Context, parsed ParseResult, knownMembers, knownReasons int) error {
	// Entities past the pre-existing prefix are new
	for _, m := range parsed.Members[knownMembers:] {
		if _, err := i.store.CreateMember(ctx, m); err != nil {
			return fmt.Errorf("create member %s: %w", m.Name, err)
		}
	}
	for _, re := range parsed.Reasons[knownReasons:] {
		if _, err := i.store.CreateReason(ctx, re); err != nil {
			return fmt.Errorf("create reason %s: %w", re.Description, err)
		}
	}
	for _, rec := range parsed.Records {
		if _, err := i.store.AppendRecord(ctx, rec); err != nil {
			return fmt.Errorf("append record %s: %w", rec.ID, err)
		}
	}
	return nil
}

func (i *Importer) replace(ctx context.Context, parsed ParseResult) error {
	// Only entities the import references survive a replace; the
	// backend adds its protected members back on top.
	referencedMembers := map[string]bool{}
	referencedReasons := map[string]bool{}
	for _, rec := range parsed.Records {
		referencedMembers[rec.MemberID] = true
		referencedReasons[rec.ReasonID] = true
	}

	var members []core.Member
	for _, m := range parsed.Members {
		if referencedMembers[m.ID] {
			members = append(members, m)
		}
	}
	var reasons []core.Reason
	for _, re := range parsed.Reasons {
		if referencedReasons[re.ID] {
			reasons = append(reasons, re)
		}
	}

	if err := i.store.ReplaceAll(ctx, parsed.Records, members, reasons); err != nil {
		return fmt.Errorf("replace data set: %w", err)
	}
	return nil
}
