package services

import (
	"context"
	"errors"
	"testing"

	"registro/internal/amqp"
	"registro/internal/core"
	"registro/internal/store/memory"
)

type fakePublisher struct {
	published []*amqp.RecordSyncMessage
	err       error
}

func (f *fakePublisher) PublishRecordSync(_ context.Context, msg *amqp.RecordSyncMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func TestCreateNormalizesSignAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewRecordService(memory.Empty(), pub)

	created, err := svc.Create(ctx, core.Record{
		Date:     "20/07/2024",
		MemberID: "m1",
		ReasonID: "z1",
		Movement: core.Expense,
		Amount:   core.Money{Cents: 2550}, // positive on entry
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("create did not assign an id")
	}
	if created.Amount.Cents != -2550 {
		t.Errorf("expense amount = %d, want -2550 after normalization", created.Amount.Cents)
	}
	if len(pub.published) != 1 || pub.published[0].Op != amqp.OpUpsert || pub.published[0].ID != created.ID {
		t.Errorf("published = %+v, want one upsert for %s", pub.published, created.ID)
	}
}

func TestCreateRejectsInvalidDate(t *testing.T) {
	svc := NewRecordService(memory.Empty(), nil)
	_, err := svc.Create(context.Background(), core.Record{
		Date:     "31/02/2024",
		MemberID: "m1",
		ReasonID: "z1",
		Movement: core.Income,
		Amount:   core.Money{Cents: 100},
	})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("create with bad date = %v, want ErrInvalidDate", err)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	st := memory.Empty()
	svc := NewRecordService(st, pub)

	created, err := svc.Create(ctx, core.Record{
		Date: "20/07/2024", MemberID: "m1", ReasonID: "z1",
		Movement: core.Income, Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}

	snap, _ := st.Snapshot(ctx)
	if len(snap) != 1 || snap[0].ID != created.ID {
		t.Errorf("record not persisted despite publish failure: %v", snap)
	}
}

func TestDeletePublishesDelete(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	st := memory.Empty()
	svc := NewRecordService(st, pub)

	created, err := svc.Create(ctx, core.Record{
		Date: "20/07/2024", MemberID: "m1", ReasonID: "z1",
		Movement: core.Income, Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	last := pub.published[len(pub.published)-1]
	if last.Op != amqp.OpDelete || last.ID != created.ID {
		t.Errorf("last message = %+v, want delete for %s", last, created.ID)
	}
}

func TestUpdateNormalizesSign(t *testing.T) {
	ctx := context.Background()
	st := memory.Empty()
	svc := NewRecordService(st, nil)

	created, _ := svc.Create(ctx, core.Record{
		Date: "20/07/2024", MemberID: "m1", ReasonID: "z1",
		Movement: core.Income, Amount: core.Money{Cents: 100},
	})

	created.Movement = core.Investment
	created.Amount.Cents = 20000
	if err := svc.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	snap, _ := st.Snapshot(ctx)
	if snap[0].Amount.Cents != -20000 {
		t.Errorf("investment amount = %d, want -20000", snap[0].Amount.Cents)
	}
}
