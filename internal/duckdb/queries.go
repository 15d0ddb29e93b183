package duckdb

import (
	"context"
	"log"
	"time"

	"github.com/geopython/geousage/internal/model"
)

// queryCtx returns a context with the store's configured query timeout.
func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// TotalRequestCount returns the number of archived requests.
func (s *Store) TotalRequestCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests").Scan(&count)
	return count, err
}

// TopClients returns the most frequent client addresses. Ordering
// matches the in-memory aggregator: count descending, key ascending.
func (s *Store) TopClients(limit int) ([]model.KeyCount, error) {
	return s.topCounts(`
		SELECT client, COUNT(*) AS count
		FROM requests
		GROUP BY client
		ORDER BY count DESC, client ASC
		LIMIT ?`, limit)
}

// TopOperations returns the most frequent operations.
func (s *Store) TopOperations(limit int) ([]model.KeyCount, error) {
	return s.topCounts(`
		SELECT operation, COUNT(*) AS count
		FROM requests
		GROUP BY operation
		ORDER BY count DESC, operation ASC
		LIMIT ?`, limit)
}

// TopResources returns the most requested resource identifiers,
// unnesting multi-resource requests so each named resource counts once
// per request.
func (s *Store) TopResources(limit int) ([]model.KeyCount, error) {
	return s.topCounts(`
		WITH named AS (
			SELECT unnest(string_split(resources, ',')) AS resource
			FROM requests
			WHERE resources != ''
		)
		SELECT resource, COUNT(*) AS count
		FROM named
		GROUP BY resource
		ORDER BY count DESC, resource ASC
		LIMIT ?`, limit)
}

func (s *Store) topCounts(query string, limit int) ([]model.KeyCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.KeyCount
	for rows.Next() {
		var kc model.KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			log.Printf("duckdb scan error: %v", err)
			continue
		}
		results = append(results, kc)
	}
	return results, rows.Err()
}

// RequestsPerDay returns archived request counts grouped by calendar
// day, oldest first.
func (s *Store) RequestsPerDay() ([]model.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date_trunc('day', timestamp) AS day, COUNT(*) AS count
		FROM requests
		GROUP BY day
		ORDER BY day ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.DayCount
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			log.Printf("duckdb scan error (RequestsPerDay): %v", err)
			continue
		}
		results = append(results, model.DayCount{Day: day, Count: count})
	}
	return results, rows.Err()
}
