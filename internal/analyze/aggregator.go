// Package analyze accumulates classified OGC requests into usage
// counters and runs the parse/classify/filter/aggregate pipeline over
// log streams.
package analyze

import (
	"sort"
	"time"

	"github.com/geopython/geousage/internal/model"
)

// Aggregator accumulates accepted requests into running counters.
// Observe is the only mutator and is not safe for concurrent use; run
// one Aggregator per pipeline and Merge the results.
type Aggregator struct {
	total      int64
	totalSize  int64
	noResource int64
	clients    map[string]int64
	resources  map[string]int64
	operations map[string]int64
	agents     map[string]int64
	start      time.Time
	end        time.Time
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		clients:    make(map[string]int64),
		resources:  make(map[string]int64),
		operations: make(map[string]int64),
		agents:     make(map[string]int64),
	}
}

// Observe counts one accepted request: the total, the transferred
// bytes, the client, operation, and user-agent counters, and each named
// resource once. A request with no resource identifier still counts
// toward the total. Observe never fails.
func (a *Aggregator) Observe(req model.Request) {
	a.total++
	a.totalSize += req.Size
	a.clients[req.RemoteAddr]++
	a.operations[req.Operation]++

	// Lines without an agent tail count under the log's dash placeholder.
	agent := req.UserAgent
	if agent == "" {
		agent = "-"
	}
	a.agents[agent]++

	if len(req.Resources) == 0 {
		a.noResource++
	}
	for _, r := range req.Resources {
		a.resources[r]++
	}

	if a.start.IsZero() || req.Timestamp.Before(a.start) {
		a.start = req.Timestamp
	}
	if a.end.IsZero() || req.Timestamp.After(a.end) {
		a.end = req.Timestamp
	}
}

// Merge sums other's counters into a. Merging is commutative and
// associative, so per-file aggregators can be combined in any order.
func (a *Aggregator) Merge(other *Aggregator) {
	a.total += other.total
	a.totalSize += other.totalSize
	a.noResource += other.noResource
	for k, v := range other.clients {
		a.clients[k] += v
	}
	for k, v := range other.resources {
		a.resources[k] += v
	}
	for k, v := range other.operations {
		a.operations[k] += v
	}
	for k, v := range other.agents {
		a.agents[k] += v
	}
	if !other.start.IsZero() && (a.start.IsZero() || other.start.Before(a.start)) {
		a.start = other.start
	}
	if !other.end.IsZero() && (a.end.IsZero() || other.end.After(a.end)) {
		a.end = other.end
	}
}

// Finalize produces a ranked summary without mutating the running
// counters, so it may be called repeatedly with different topN values.
// topN <= 0 returns all distinct keys; ordering is always count
// descending with ties broken by ascending key.
func (a *Aggregator) Finalize(topN int) model.Result {
	return model.Result{
		TotalAccepted: a.total,
		TotalSize:     a.totalSize,
		NoResource:    a.noResource,
		Clients:       rank(a.clients, topN),
		Resources:     rank(a.resources, topN),
		Operations:    rank(a.operations, topN),
		UserAgents:    rank(a.agents, topN),
		Start:         a.start,
		End:           a.end,
	}
}

func rank(counts map[string]int64, topN int) []model.KeyCount {
	ranked := make([]model.KeyCount, 0, len(counts))
	for k, v := range counts {
		ranked = append(ranked, model.KeyCount{Key: k, Count: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
