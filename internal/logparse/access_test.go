package logparse

import (
	"errors"
	"testing"
	"time"
)

const sampleLine = `192.168.1.22 - - [12/Feb/2018:14:18:16 -0500] "GET /ows?SERVICE=WMS&REQUEST=GetMap&LAYERS=roads HTTP/1.1" 200 11420 "-" "Mozilla/5.0"`

func TestParse_CombinedLine(t *testing.T) {
	rec, err := Parse(sampleLine)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if rec.RemoteAddr != "192.168.1.22" {
		t.Errorf("RemoteAddr = %q, want 192.168.1.22", rec.RemoteAddr)
	}
	if rec.Method != "GET" {
		t.Errorf("Method = %q, want GET", rec.Method)
	}
	if rec.Target != "/ows?SERVICE=WMS&REQUEST=GetMap&LAYERS=roads" {
		t.Errorf("Target = %q", rec.Target)
	}
	if rec.Protocol != "HTTP/1.1" {
		t.Errorf("Protocol = %q, want HTTP/1.1", rec.Protocol)
	}
	if rec.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", rec.StatusCode)
	}
	if rec.Size != 11420 {
		t.Errorf("Size = %d, want 11420", rec.Size)
	}
	if rec.UserAgent != "Mozilla/5.0" {
		t.Errorf("UserAgent = %q, want Mozilla/5.0", rec.UserAgent)
	}

	want := time.Date(2018, time.February, 12, 14, 18, 16, 0, time.FixedZone("", -5*3600))
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
	_, offset := rec.Timestamp.Zone()
	if offset != -5*3600 {
		t.Errorf("Timestamp offset = %d, want %d", offset, -5*3600)
	}
}

func TestParse_WithoutRefererTail(t *testing.T) {
	line := `10.0.0.1 - - [01/Jan/2020:00:00:00 +0000] "GET /ows?SERVICE=WFS HTTP/1.0" 200 512`
	rec, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.StatusCode != 200 || rec.Size != 512 {
		t.Errorf("got status=%d size=%d", rec.StatusCode, rec.Size)
	}
	if rec.UserAgent != "" {
		t.Errorf("UserAgent = %q, want empty without agent tail", rec.UserAgent)
	}
}

func TestParse_DashSize(t *testing.T) {
	line := `10.0.0.1 - - [01/Jan/2020:00:00:00 +0000] "HEAD /ows HTTP/1.1" 304 - "-" "curl/7.68"`
	rec, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Size != 0 {
		t.Errorf("Size = %d, want 0 for dash", rec.Size)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"garbage", "not an access log line at all"},
		{"missing request quotes", `10.0.0.1 - - [01/Jan/2020:00:00:00 +0000] GET /ows HTTP/1.1 200 5`},
		{"bad timestamp", `10.0.0.1 - - [banana] "GET /ows HTTP/1.1" 200 5 "-" "-"`},
		{"bad timestamp fields", `10.0.0.1 - - [45/Xyz/2020:99:00:00 +0000] "GET /ows HTTP/1.1" 200 5 "-" "-"`},
		{"non-numeric status", `10.0.0.1 - - [01/Jan/2020:00:00:00 +0000] "GET /ows HTTP/1.1" OK 5 "-" "-"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.line)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("error type = %T, want *ParseError", err)
			}
		})
	}
}

func TestParse_TrimsWhitespace(t *testing.T) {
	rec, err := Parse("  " + sampleLine + "\n")
	if err != nil {
		t.Fatalf("Parse with surrounding whitespace: %v", err)
	}
	if rec.RemoteAddr != "192.168.1.22" {
		t.Errorf("RemoteAddr = %q", rec.RemoteAddr)
	}
}

func TestParse_Stateless(t *testing.T) {
	// Parsing the same line twice yields identical records.
	a, err := Parse(sampleLine)
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	b, err := Parse(sampleLine)
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if *a != *b {
		t.Errorf("records differ: %+v vs %+v", a, b)
	}
}
