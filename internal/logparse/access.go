// Package logparse parses web-server access-log lines in the combined
// layout into structured records. Parsing is line-local and stateless:
// no line depends on any other, and a malformed line is reported as a
// skippable error rather than stopping the caller.
package logparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/geopython/geousage/internal/model"
)

// combinedRegex matches the common/combined access-log layout:
// <addr> <ident> <user> [<time>] "<method> <target> <proto>" <status> <size>
// with an optional quoted referer/user-agent tail.
var combinedRegex = regexp.MustCompile(`^(?P<addr>\S+) (?P<ident>\S+) (?P<user>\S+) \[(?P<time>[^\]]+)\] "(?P<method>\S+) (?P<target>\S+) (?P<proto>[^"]+)" (?P<status>\d{3}) (?P<size>\d+|-)(?: "(?P<referer>[^"]*)" "(?P<agent>[^"]*)")?`)

const timeLayout = "02/Jan/2006:15:04:05 -0700"

// ParseError reports why a line could not be parsed. Callers are
// expected to count it and continue.
type ParseError struct {
	Reason string
	Line   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("logparse: %s: %.120q", e.Reason, e.Line)
}

// Parse turns one access-log line into an AccessRecord.
// It returns a *ParseError when the line does not match the combined
// layout or carries an unparsable timestamp.
func Parse(line string) (*model.AccessRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, &ParseError{Reason: "empty line", Line: line}
	}

	m := combinedRegex.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{Reason: "line does not match combined log layout", Line: line}
	}

	rec := &model.AccessRecord{}
	for i, name := range combinedRegex.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		val := m[i]
		switch name {
		case "addr":
			rec.RemoteAddr = val
		case "time":
			ts, err := time.Parse(timeLayout, val)
			if err != nil {
				return nil, &ParseError{Reason: "unparsable timestamp " + val, Line: line}
			}
			rec.Timestamp = ts
		case "method":
			rec.Method = val
		case "target":
			rec.Target = val
		case "proto":
			rec.Protocol = val
		case "status":
			// \d{3} guarantees Atoi succeeds
			rec.StatusCode, _ = strconv.Atoi(val)
		case "size":
			if val != "-" {
				n, err := strconv.ParseInt(val, 10, 64)
				if err != nil {
					return nil, &ParseError{Reason: "invalid size " + val, Line: line}
				}
				rec.Size = n
			}
		case "agent":
			rec.UserAgent = val
		}
	}

	return rec, nil
}
