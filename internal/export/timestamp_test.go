package export

import (
	"testing"
	"time"
)

func localMilli(y int, mo time.Month, d, h, mi, s int) int64 {
	return time.Date(y, mo, d, h, mi, s, 0, time.Local).UnixMilli()
}

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ts       int64
		rest     string
		wantMiss bool
	}{
		{
			name: "bracketed 24h with seconds",
			line: "[01/02/24, 09:00:00] Alice: Hello",
			ts:   localMilli(2024, 2, 1, 9, 0, 0),
			rest: "Alice: Hello",
		},
		{
			name: "bracketed 24h four digit year",
			line: "[01/02/2024, 21:30] Bob: hi",
			ts:   localMilli(2024, 2, 1, 21, 30, 0),
			rest: "Bob: hi",
		},
		{
			name: "bracketed 12h pm",
			line: "[1/2/24, 9:15:00 PM] Bob: hey",
			ts:   localMilli(2024, 2, 1, 21, 15, 0),
			rest: "Bob: hey",
		},
		{
			name: "dotted date dashed",
			line: "01.02.24, 09:00 - Alice: oi",
			ts:   localMilli(2024, 2, 1, 9, 0, 0),
			rest: "Alice: oi",
		},
		{
			name: "unbracketed dashed",
			line: "01/02/24, 09:00 - Alice: oi",
			ts:   localMilli(2024, 2, 1, 9, 0, 0),
			rest: "Alice: oi",
		},
		{
			name: "unbracketed dashed with am",
			line: "1/2/24, 9:00 AM - Alice: oi",
			ts:   localMilli(2024, 2, 1, 9, 0, 0),
			rest: "Alice: oi",
		},
		{
			name:     "plain continuation",
			line:     "just some text",
			wantMiss: true,
		},
		{
			name:     "time without date",
			line:     "09:00 - Alice: hi",
			wantMiss: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, rest, ok := MatchHeader(tt.line)
			if tt.wantMiss {
				if ok {
					t.Fatalf("MatchHeader(%q) matched, want miss", tt.line)
				}
				return
			}
			if !ok {
				t.Fatalf("MatchHeader(%q) missed", tt.line)
			}
			if ts != tt.ts {
				t.Errorf("ts = %d, want %d", ts, tt.ts)
			}
			if rest != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

// TestDialectOrder verifies first-structural-match-wins: a line both the
// bracketed dialects could in principle claim resolves to the 24-hour one
// when no meridiem marker is present.
func TestDialectOrder(t *testing.T) {
	ts, _, ok := MatchHeader("[11/12/23, 13:00:00] X: y")
	if !ok {
		t.Fatal("expected match")
	}
	// Day-first by convention: 11 December, not 12 November.
	want := localMilli(2023, 12, 11, 13, 0, 0)
	if ts != want {
		t.Errorf("ts = %d, want %d (day-first)", ts, want)
	}
}

func TestTwoDigitYearPivot(t *testing.T) {
	tests := []struct {
		line string
		year int
	}{
		{"[01/02/49, 09:00] A: x", 2049},
		{"[01/02/50, 09:00] A: x", 1950},
		{"[01/02/00, 09:00] A: x", 2000},
		{"[01/02/99, 09:00] A: x", 1999},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ts, _, ok := MatchHeader(tt.line)
			if !ok {
				t.Fatal("missed")
			}
			got := time.UnixMilli(ts).In(time.Local).Year()
			if got != tt.year {
				t.Errorf("year = %d, want %d", got, tt.year)
			}
		})
	}
}

func TestMeridiemNormalization(t *testing.T) {
	tests := []struct {
		line string
		hour int
		min  int
	}{
		{"[01/02/24, 12:15 AM] A: x", 0, 15},
		{"[01/02/24, 12:15 PM] A: x", 12, 15},
		{"[01/02/24, 11:59 PM] A: x", 23, 59},
		{"[01/02/24, 1:00 AM] A: x", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ts, _, ok := MatchHeader(tt.line)
			if !ok {
				t.Fatal("missed")
			}
			got := time.UnixMilli(ts).In(time.Local)
			if got.Hour() != tt.hour || got.Minute() != tt.min {
				t.Errorf("clock = %02d:%02d, want %02d:%02d", got.Hour(), got.Minute(), tt.hour, tt.min)
			}
		})
	}
}

func TestHasHeader(t *testing.T) {
	if !HasHeader("[01/02/24, 09:00:00] Alice: Hello") {
		t.Error("header line not recognized")
	}
	if HasHeader("continuation text") {
		t.Error("continuation recognized as header")
	}
}
