package model

import "time"

// AccessRecord represents a single parsed access-log line.
// It is the canonical type flowing between the line parser, the OGC
// extractor, and the time filter. Records are immutable once parsed.
type AccessRecord struct {
	RemoteAddr string    // client address as logged (IP literal)
	Timestamp  time.Time // request time, carries the log's UTC offset
	Method     string    // GET, POST, ...
	Target     string    // raw request target: path plus query string
	Protocol   string    // e.g. HTTP/1.1
	StatusCode int
	Size       int64  // response bytes, 0 when logged as "-"
	UserAgent  string // raw user-agent string, empty when the line has no agent tail
}

// Request is a classified OGC request derived from an AccessRecord that
// matched a service dialect. It exists only transiently during analysis.
type Request struct {
	Service    string   // canonical service name, e.g. "WMS"
	Operation  string   // canonical operation name, e.g. "GetMap"
	Resources  []string // zero or more layer/typename/identifier values
	RemoteAddr string
	Timestamp  time.Time
	Size       int64
	UserAgent  string
}

// KeyCount is one ranked counter entry (client address, resource
// identifier, or operation name) with its request count.
type KeyCount struct {
	Key   string
	Count int64
}

// Result is a finalized aggregation summary. Rankings are ordered by
// count descending, ties broken by ascending key, so results are
// deterministic regardless of input order.
type Result struct {
	TotalAccepted int64
	TotalSize     int64 // bytes transferred across accepted requests
	NoResource    int64 // accepted requests that carried no resource identifier
	Clients       []KeyCount
	Resources     []KeyCount
	Operations    []KeyCount
	UserAgents    []KeyCount
	Start         time.Time // earliest accepted request time
	End           time.Time // latest accepted request time
}

// ResolvedHost pairs a client address with its reverse-DNS outcome.
// A failed lookup is a normal result, not an error.
type ResolvedHost struct {
	Addr     string
	Hostname string
	Resolved bool
}

// DayCount represents archived request counts for one calendar day.
type DayCount struct {
	Day   time.Time
	Count int64
}
