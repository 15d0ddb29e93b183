package analyze

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/geopython/geousage/internal/logparse"
	"github.com/geopython/geousage/internal/model"
	"github.com/geopython/geousage/internal/ogc"
	"github.com/geopython/geousage/internal/timewindow"

	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds scanner buffers; access-log lines past 1 MiB are
// counted as skipped rather than aborting the stream.
const maxLineSize = 1 << 20

// Config holds the per-run classification settings shared by all
// pipeline instances of one analysis.
type Config struct {
	Dialect  ogc.Dialect
	Endpoint string // optional exact endpoint path filter
	Window   timewindow.Window
	Sink     RequestSink // optional archive for accepted requests
}

// RequestSink receives accepted requests as a side channel, e.g. for
// archiving. Add must not fail; archival problems are the sink's to log.
type RequestSink interface {
	Add(req *model.Request)
}

// Report is the outcome of one analysis run.
type Report struct {
	Result    model.Result
	Skipped   int64 // malformed lines
	Unmatched int64 // lines not classified as the target service
	Hostnames map[string]model.ResolvedHost
}

// Pipeline runs a single sequential pass over input line streams,
// accumulating into its own aggregator. It is single-writer: use one
// Pipeline per goroutine and merge afterwards.
type Pipeline struct {
	cfg       Config
	agg       *Aggregator
	skipped   int64
	unmatched int64
}

// New creates a Pipeline for the given configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, agg: NewAggregator()}
}

// Process consumes one line stream fully. Per-line failures are counted
// and skipped; only a read error on the stream itself is returned.
func (p *Pipeline) Process(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		p.processLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			p.skipped++
			return nil
		}
		return fmt.Errorf("reading stream: %w", err)
	}
	return nil
}

func (p *Pipeline) processLine(line string) {
	rec, err := logparse.Parse(line)
	if err != nil {
		p.skipped++
		return
	}

	req, ok := ogc.Extract(rec, p.cfg.Dialect, p.cfg.Endpoint)
	if !ok {
		p.unmatched++
		return
	}

	if !p.cfg.Window.Contains(req.Timestamp) {
		return
	}

	p.agg.Observe(req)
	if p.cfg.Sink != nil {
		p.cfg.Sink.Add(&req)
	}
}

// merge folds another pipeline's counters into this one.
func (p *Pipeline) merge(other *Pipeline) {
	p.agg.Merge(other.agg)
	p.skipped += other.skipped
	p.unmatched += other.unmatched
}

// Report finalizes the accumulated state into a ranked summary. It does
// not mutate the counters and may be called with different topN values.
func (p *Pipeline) Report(topN int) Report {
	return Report{
		Result:    p.agg.Finalize(topN),
		Skipped:   p.skipped,
		Unmatched: p.unmatched,
	}
}

// Source opens one input stream. Openers run lazily so that parallel
// runs only hold as many files open as there are workers.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Run processes sources concurrently with up to workers parallel
// pipeline instances and merges their counters. Aggregation is
// commutative, so the merge order does not affect the outcome. Any
// stream that cannot be opened or read aborts the run: no partial
// report is produced.
func Run(ctx context.Context, cfg Config, sources []Source, workers, topN int) (Report, error) {
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	merged := New(cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rc, err := src.Open()
			if err != nil {
				return fmt.Errorf("opening %s: %w", src.Name, err)
			}
			defer rc.Close()

			p := New(cfg)
			if err := p.Process(rc); err != nil {
				return fmt.Errorf("processing %s: %w", src.Name, err)
			}

			mu.Lock()
			merged.merge(p)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return merged.Report(topN), nil
}
