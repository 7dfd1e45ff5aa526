package baseline

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"tandoor/internal/apperrors"
)

func TestParse(t *testing.T) {
	input := "Paneer - 300\nSpice Mix - 50\n\nFlour - 1000\n"

	entries, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "Paneer" || entries[0].Quantity != 300 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	// A name containing the separator keeps everything before the last one.
	if entries[1].Name != "Spice Mix" || entries[1].Quantity != 50 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing separator", "Paneer 300\n", apperrors.ErrValidation},
		{"non-integer quantity", "Paneer - lots\n", apperrors.ErrValidation},
		{"negative quantity", "Paneer - -4\n", apperrors.ErrValidation},
		{"duplicate ingredient", "Paneer - 300\nPaneer - 200\n", apperrors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSnapshot(t *testing.T) {
	input := "2026-08-31\n\nPaneer - 300\nChicken - 450\n"

	date, entries, err := ParseSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSnapshot returned error: %v", err)
	}
	if got := date.Format(DateLayout); got != "2026-08-31" {
		t.Errorf("expected date 2026-08-31, got %s", got)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Name != "Chicken" || entries[1].Quantity != 450 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestParseSnapshot_BadHeader(t *testing.T) {
	for _, input := range []string{"", "Paneer - 300\n", "31/08/2026\n\nPaneer - 300\n"} {
		if _, _, err := ParseSnapshot(strings.NewReader(input)); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("input %q: expected ErrValidation, got %v", input, err)
		}
	}
}

func TestWriteSnapshot_RoundTrip(t *testing.T) {
	date := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	entries := []Entry{{Name: "Paneer", Quantity: 300}, {Name: "Basmati Rice", Quantity: 2000}}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, date, entries); err != nil {
		t.Fatalf("WriteSnapshot returned error: %v", err)
	}

	gotDate, gotEntries, err := ParseSnapshot(&buf)
	if err != nil {
		t.Fatalf("ParseSnapshot returned error: %v", err)
	}
	if gotDate.Format(DateLayout) != "2026-09-01" {
		t.Errorf("expected snapshot date 2026-09-01, got %s", gotDate.Format(DateLayout))
	}
	if len(gotEntries) != 2 || gotEntries[0] != entries[0] || gotEntries[1] != entries[1] {
		t.Errorf("round trip mismatch: %+v", gotEntries)
	}
}
