package core

import "testing"

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name  string
		kind  MovementKind
		cents int64
		want  int64
	}{
		{"income positive unchanged", Income, 10000, 10000},
		{"income negative flipped", Income, -10000, 10000},
		{"income zero unchanged", Income, 0, 0},
		{"expense positive flipped", Expense, 2550, -2550},
		{"expense negative unchanged", Expense, -2550, -2550},
		{"investment positive flipped", Investment, 20000, -20000},
		{"investment zero unchanged", Investment, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAmount(tt.kind, tt.cents); got != tt.want {
				t.Errorf("NormalizeAmount(%s, %d) = %d, want %d", tt.kind, tt.cents, got, tt.want)
			}
		})
	}
}

func TestSignAgreesWithKind(t *testing.T) {
	tests := []struct {
		kind  MovementKind
		cents int64
		want  bool
	}{
		{Income, 100, true},
		{Income, 0, true},
		{Income, -1, false},
		{Expense, -100, true},
		{Expense, 0, true},
		{Expense, 1, false},
		{Investment, -100, true},
		{Investment, 50, false},
		{MovementKind("OTRO"), 0, false},
	}

	for _, tt := range tests {
		if got := SignAgreesWithKind(tt.kind, tt.cents); got != tt.want {
			t.Errorf("SignAgreesWithKind(%s, %d) = %v, want %v", tt.kind, tt.cents, got, tt.want)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	valid := Record{
		ID:          "r1",
		Date:        "20/07/2024",
		MemberID:    "m1",
		ReasonID:    "z1",
		Movement:    Income,
		Amount:      Money{Cents: 10000},
		Description: "Mensualidad Julio",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(Record) Record
		want   error
	}{
		{"bad date", func(r Record) Record { r.Date = "31/02/2024"; return r }, ErrInvalidDate},
		{"missing member", func(r Record) Record { r.MemberID = " "; return r }, ErrEmptyMember},
		{"missing reason", func(r Record) Record { r.ReasonID = ""; return r }, ErrEmptyReason},
		{"unknown movement", func(r Record) Record { r.Movement = "PRESTAMO"; return r }, ErrInvalidMovement},
		{"positive expense", func(r Record) Record { r.Movement = Expense; return r }, ErrSignMismatch},
		{"negative income", func(r Record) Record { r.Amount.Cents = -1; return r }, ErrSignMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mutate(valid).Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMemberValidate(t *testing.T) {
	if err := (Member{Name: "JUAN PEREZ"}).Validate(); err != nil {
		t.Errorf("valid member rejected: %v", err)
	}
	if err := (Member{Name: "   "}).Validate(); err != ErrEmptyName {
		t.Errorf("blank member name: got %v, want %v", err, ErrEmptyName)
	}
}
