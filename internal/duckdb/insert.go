package duckdb

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/geopython/geousage/internal/model"
)

// InsertBuffer batches classified requests and flushes them to the
// store. It satisfies the pipeline's sink contract: Add never fails;
// write problems are logged and the analysis continues.
type InsertBuffer struct {
	writer   model.RequestWriter
	mu       sync.Mutex
	pending  []*model.Request
	maxBatch int
	done     chan struct{}
	wg       sync.WaitGroup
}

// InsertBufferConfig holds tunable parameters for the insert buffer.
type InsertBufferConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

// NewInsertBuffer creates a buffer that flushes to the writer when the
// batch fills or on the flush interval, whichever comes first.
func NewInsertBuffer(writer model.RequestWriter, conf ...InsertBufferConfig) *InsertBuffer {
	batchSize := 1000
	flushInterval := 250 * time.Millisecond
	if len(conf) > 0 {
		if conf[0].BatchSize > 0 {
			batchSize = conf[0].BatchSize
		}
		if conf[0].FlushInterval > 0 {
			flushInterval = conf[0].FlushInterval
		}
	}

	b := &InsertBuffer{
		writer:   writer,
		pending:  make([]*model.Request, 0, batchSize),
		maxBatch: batchSize,
		done:     make(chan struct{}),
	}

	b.wg.Add(1)
	go b.tickLoop(flushInterval)

	return b
}

func (b *InsertBuffer) tickLoop(interval time.Duration) {
	defer b.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.flush()
		case <-b.done:
			b.flush() // final drain
			return
		}
	}
}

// Add queues one request for batch insertion.
func (b *InsertBuffer) Add(req *model.Request) {
	b.mu.Lock()
	b.pending = append(b.pending, req)
	shouldFlush := len(b.pending) >= b.maxBatch
	b.mu.Unlock()

	if shouldFlush {
		b.flush()
	}
}

// Stop flushes remaining requests and waits for the flush loop to exit.
func (b *InsertBuffer) Stop() {
	close(b.done)
	b.wg.Wait()
}

func (b *InsertBuffer) flush() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make([]*model.Request, 0, b.maxBatch)
	b.mu.Unlock()

	if err := b.writer.InsertRequestBatch(batch); err != nil {
		log.Printf("duckdb: dropping batch of %d requests: %v", len(batch), err)
	}
}

// InsertRequestBatch appends a batch of classified requests in a single
// transaction. Resources are stored comma-joined and unnested at query
// time.
func (s *Store) InsertRequestBatch(requests []*model.Request) error {
	if len(requests) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO requests (timestamp, service, operation, client, resources) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range requests {
		if _, err := stmt.ExecContext(
			ctx,
			r.Timestamp.UTC(), r.Service, r.Operation, r.RemoteAddr,
			strings.Join(r.Resources, ","),
		); err != nil {
			return fmt.Errorf("request insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
