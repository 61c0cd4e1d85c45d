package records

import (
	"testing"
	"time"
)

func TestParseTimeEpoch(t *testing.T) {
	t.Parallel()

	got, err := ParseTime("1714560000")
	if err != nil {
		t.Fatalf("epoch parse: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 40, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("epoch = %v, want %v", got, want)
	}

	// fractional epoch seconds
	got, err = ParseTime("1714560000.5")
	if err != nil {
		t.Fatalf("fractional epoch parse: %v", err)
	}
	if got.Unix() != 1714560000 {
		t.Fatalf("fractional epoch seconds = %d", got.Unix())
	}
}

func TestParseTimeISOVariants(t *testing.T) {
	t.Parallel()

	cases := []string{
		"2024-05-01T10:40:00Z",
		"2024-05-01T10:40:00.123Z",
		"2024-05-01T10:40:00+02:00",
		"2024-05-01T10:40:00",
		"2024-05-01 10:40:00",
		"2024-05-01",
	}
	for _, s := range cases {
		got, err := ParseTime(s)
		if err != nil {
			t.Fatalf("ParseTime(%q): %v", s, err)
		}
		if got.Year() != 2024 || got.Month() != time.May {
			t.Fatalf("ParseTime(%q) = %v", s, got)
		}
		if got.Location() != time.UTC {
			t.Fatalf("ParseTime(%q) not UTC: %v", s, got.Location())
		}
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "  ", "yesterday", "01/05/2024"} {
		if _, err := ParseTime(s); err == nil {
			t.Fatalf("ParseTime(%q) should fail", s)
		}
	}
}
