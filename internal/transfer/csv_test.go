package transfer

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"registro/internal/core"
	"registro/internal/report"
	"registro/internal/store/memory"
)

const sampleCSV = `fecha,integrante,movimiento,razon,descripcion,monto
01/03/2024,Ana,INGRESOS,Mensualidad,Cuota marzo,100.00
15/03/2024,Luis,GASTOS,Compra,Supermercado,-40.00
01/04/2024,Ana,INGRESOS,Mensualidad,,50.00
`

func TestParseSample(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleCSV), nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected line errors: %v", res.Errors)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}
	if len(res.Members) != 2 || len(res.Reasons) != 2 {
		t.Errorf("minted %d members, %d reasons; want 2 and 2", len(res.Members), len(res.Reasons))
	}

	first := res.Records[0]
	if first.Date != "01/03/2024" || first.Movement != core.Income || first.Amount.Cents != 10000 {
		t.Errorf("first record = %+v", first)
	}
	// Names are canonicalized, so both Ana rows share one member.
	if res.Records[0].MemberID != res.Records[2].MemberID {
		t.Error("same member name minted two ids")
	}
}

func TestParseCollectsLineErrors(t *testing.T) {
	csv := `fecha,integrante,movimiento,razon,descripcion,monto
31/02/2024,Ana,INGRESOS,Mensualidad,,100.00
15/03/2024,Luis,PRESTAMO,Compra,,-40.00
15/03/2024,Luis,GASTOS,Compra,,no-number
20/03/2024,Luis,GASTOS,Compra,ok,-12.50
`
	res, err := Parse(strings.NewReader(csv), nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 1 {
		t.Errorf("records = %d, want 1 good line", len(res.Records))
	}
	if len(res.Errors) != 3 {
		t.Fatalf("errors = %v, want 3", res.Errors)
	}
	if res.Errors[0].Line != 2 || res.Errors[1].Line != 3 || res.Errors[2].Line != 4 {
		t.Errorf("error lines = %v", res.Errors)
	}
}

func TestParseRejectsWrongHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("a,b,c\n"), nil, nil); err == nil {
		t.Error("expected header error")
	}
}

func TestParseResolvesExistingDirectory(t *testing.T) {
	members := []core.Member{{ID: "m1", Name: "ANA"}}
	reasons := []core.Reason{{ID: "z1", Description: "MENSUALIDAD"}}

	res, err := Parse(strings.NewReader(sampleCSV), members, reasons)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Records[0].MemberID != "m1" || res.Records[0].ReasonID != "z1" {
		t.Errorf("existing entities not resolved: %+v", res.Records[0])
	}
}

func TestExportImportPreservesAggregation(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleCSV), nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var out bytes.Buffer
	if err := Export(&out, res.Records, res.Members, res.Reasons); err != nil {
		t.Fatalf("export: %v", err)
	}

	again, err := Parse(bytes.NewReader(out.Bytes()), res.Members, res.Reasons)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if len(again.Errors) != 0 {
		t.Fatalf("re-import line errors: %v", again.Errors)
	}

	r, g := report.Resolve(report.YearByMonth(2024), time.Now())
	before := report.FilterAndBucket(res.Records, r, g)
	after := report.FilterAndBucket(again.Records, r, g)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("aggregation changed over round trip:\nbefore %+v\nafter  %+v", before, after)
	}

	sumBefore := report.Summarize(res.Records, r)
	sumAfter := report.Summarize(again.Records, r)
	if sumBefore.Balance != sumAfter.Balance || sumBefore.Income != sumAfter.Income {
		t.Errorf("summary changed over round trip: %+v vs %+v", sumBefore, sumAfter)
	}
}

func TestImportAddMode(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	imp := NewImporter(st)

	sum, err := imp.Import(ctx, strings.NewReader(sampleCSV), ModeAdd)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.Imported != 3 || len(sum.Rejected) != 0 {
		t.Errorf("summary = %+v", sum)
	}

	snap, _ := st.Snapshot(ctx)
	if len(snap) != 3 {
		t.Errorf("records after add import = %d, want 3", len(snap))
	}
	members, _ := st.ListMembers(ctx)
	// 2 seeded protected + ANA + LUIS
	if len(members) != 4 {
		t.Errorf("members after add import = %d, want 4", len(members))
	}
}

func TestImportReplaceModeKeepsProtected(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	imp := NewImporter(st)

	// Pre-existing data that replace must wipe
	if _, err := imp.Import(ctx, strings.NewReader(sampleCSV), ModeAdd); err != nil {
		t.Fatalf("seed import: %v", err)
	}

	replacement := `fecha,integrante,movimiento,razon,descripcion,monto
05/05/2024,Carla,INVERSION,Fondo,,-200.00
`
	sum, err := imp.Import(ctx, strings.NewReader(replacement), ModeReplace)
	if err != nil {
		t.Fatalf("replace import: %v", err)
	}
	if sum.Imported != 1 {
		t.Errorf("imported = %d, want 1", sum.Imported)
	}

	snap, _ := st.Snapshot(ctx)
	if len(snap) != 1 || snap[0].Movement != core.Investment || snap[0].Amount.Cents != -20000 {
		t.Errorf("records after replace = %+v", snap)
	}

	members, _ := st.ListMembers(ctx)
	protected := 0
	names := map[string]bool{}
	for _, m := range members {
		names[m.Name] = true
		if m.Protected {
			protected++
		}
	}
	if protected != 2 {
		t.Errorf("protected members = %d, want 2", protected)
	}
	if names["ANA"] || names["LUIS"] {
		t.Error("replaced members still present")
	}
	if !names["CARLA"] {
		t.Error("imported member missing")
	}
}

func TestImportUnknownMode(t *testing.T) {
	imp := NewImporter(memory.New())
	if _, err := imp.Import(context.Background(), strings.NewReader(sampleCSV), Mode("merge")); err == nil {
		t.Error("expected error for unknown mode")
	}
}
