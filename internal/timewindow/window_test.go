package timewindow

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, spec string) Window {
	t.Helper()
	w, err := Parse(spec)
	if err != nil {
		t.Fatalf("Parse(%q): %v", spec, err)
	}
	return w
}

func TestParse_Empty(t *testing.T) {
	w := mustParse(t, "")
	if !w.IsZero() {
		t.Error("empty spec should yield zero window")
	}
	if !w.Contains(time.Now()) {
		t.Error("zero window must accept everything")
	}
}

func TestContains_SingleDate(t *testing.T) {
	w := mustParse(t, "2018-02-12")

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"start of day", "2018-02-12T00:00:00 +0000", true},
		{"midday", "2018-02-12T14:18:16 +0000", true},
		{"end of day", "2018-02-12T23:59:59 +0000", true},
		{"day before", "2018-02-11T23:59:59 +0000", false},
		{"day after", "2018-02-13T00:00:00 +0000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := time.Parse("2006-01-02T15:04:05 -0700", tt.in)
			if got := w.Contains(in); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestContains_SingleDate_RecordOffset(t *testing.T) {
	// The date bound expands in the record's reported offset: 23:30
	// local on the 12th is inside even though it is the 13th in UTC.
	w := mustParse(t, "2018-02-12")

	in, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-02-12T23:30:00 -0500")
	if !w.Contains(in) {
		t.Error("late-evening local time on the bound's day rejected")
	}

	out, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-02-13T00:30:00 -0500")
	if w.Contains(out) {
		t.Error("next local day accepted")
	}
}

func TestContains_DateTimeRange(t *testing.T) {
	w := mustParse(t, "2018-02-12T10:00:00/2018-02-12T12:00:00")

	tests := []struct {
		in   string
		want bool
	}{
		{"2018-02-12T10:00:00 +0000", true}, // inclusive start
		{"2018-02-12T12:00:00 +0000", true}, // inclusive end
		{"2018-02-12T11:00:00 +0000", true},
		{"2018-02-12T09:59:59 +0000", false},
		{"2018-02-12T12:00:01 +0000", false},
	}

	for _, tt := range tests {
		in, _ := time.Parse("2006-01-02T15:04:05 -0700", tt.in)
		if got := w.Contains(in); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContains_DateRange(t *testing.T) {
	w := mustParse(t, "2018-01-01/2018-01-31")

	in, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-01-31T23:59:59 +0000")
	if !w.Contains(in) {
		t.Error("last second of end day rejected")
	}
	out, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-02-01T00:00:00 +0000")
	if w.Contains(out) {
		t.Error("day after end accepted")
	}
}

func TestContains_OpenEnded(t *testing.T) {
	w := mustParse(t, "2018-02-12/..")

	before, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-02-11T23:59:59 +0000")
	if w.Contains(before) {
		t.Error("instant before open-ended start accepted")
	}
	later, _ := time.Parse("2006-01-02T15:04:05 -0700", "2030-01-01T00:00:00 +0000")
	if !w.Contains(later) {
		t.Error("far future rejected by open-ended window")
	}

	w = mustParse(t, "../2018-02-12")
	if !w.Contains(before) {
		t.Error("instant before open start rejected")
	}
	if w.Contains(later) {
		t.Error("instant after end accepted")
	}
}

func TestParse_MixedGranularityRange(t *testing.T) {
	w := mustParse(t, "2018-01-01/2018-01-02T12:00:00")

	in, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-01-02T12:00:00 +0000")
	if !w.Contains(in) {
		t.Error("inclusive datetime end rejected")
	}
	out, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-01-02T12:00:01 +0000")
	if w.Contains(out) {
		t.Error("instant past datetime end accepted")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"2018-02-30",                      // impossible date
		"2018-01-01T25:00:00",             // impossible time
		"not-a-date",
		"2018-01-02/2018-01-01",           // start after end
		"2018-01-01T12:00:00/2018-01-01T11:00:00",
		"2018-01-01/2018-01-02/2018-01-03", // three bounds
	}

	for _, spec := range tests {
		if _, err := Parse(spec); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", spec)
		}
	}
}

func TestParse_SameDayRangeValid(t *testing.T) {
	// start == end is a valid single-point window.
	w := mustParse(t, "2018-01-01/2018-01-01")
	in, _ := time.Parse("2006-01-02T15:04:05 -0700", "2018-01-01T12:00:00 +0000")
	if !w.Contains(in) {
		t.Error("single-day range rejected its own day")
	}
}
