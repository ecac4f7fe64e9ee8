package core

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		year    int
		month   int
		day     int
	}{
		{name: "plain date", in: "20/07/2024", year: 2024, month: 7, day: 20},
		{name: "first of month", in: "01/01/2024", year: 2024, month: 1, day: 1},
		{name: "last of month", in: "31/01/2024", year: 2024, month: 1, day: 31},
		{name: "leap february 29", in: "29/02/2024", year: 2024, month: 2, day: 29},
		{name: "non-leap february 29", in: "29/02/2023", wantErr: true},
		{name: "century non-leap", in: "29/02/1900", wantErr: true},
		{name: "400-year leap", in: "29/02/2000", year: 2000, month: 2, day: 29},
		{name: "february 31", in: "31/02/2024", wantErr: true},
		{name: "april 31", in: "31/04/2024", wantErr: true},
		{name: "month zero", in: "15/00/2024", wantErr: true},
		{name: "month thirteen", in: "15/13/2024", wantErr: true},
		{name: "day zero", in: "00/05/2024", wantErr: true},
		{name: "single digit day", in: "1/05/2024", wantErr: true},
		{name: "single digit month", in: "01/5/2024", wantErr: true},
		{name: "two digit year", in: "01/05/24", wantErr: true},
		{name: "iso order", in: "2024-05-01", wantErr: true},
		{name: "letters", in: "aa/bb/cccc", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "trailing garbage", in: "01/05/2024x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d.Year() != tt.year || d.Month() != tt.month || d.Day() != tt.day {
				t.Errorf("ParseDate(%q) = %d-%d-%d, want %d-%d-%d",
					tt.in, d.Year(), d.Month(), d.Day(), tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestDateStringRoundTrip(t *testing.T) {
	for _, in := range []string{"01/01/2024", "29/02/2024", "31/12/1999", "05/09/2026"} {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) unexpected error: %v", in, err)
		}
		if got := d.String(); got != in {
			t.Errorf("round trip %q -> %q", in, got)
		}
	}
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2024, 1, 31)
	b := NewDate(2024, 2, 1)
	if !a.Before(b) || !b.After(a) {
		t.Errorf("expected %v < %v", a, b)
	}
	if a.Before(a) || a.After(a) {
		t.Error("a date must not order before or after itself")
	}
}
