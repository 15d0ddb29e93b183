package model

// RequestWriter provides append-oriented writes of classified requests.
type RequestWriter interface {
	InsertRequestBatch(requests []*Request) error
}

// UsageQuerier provides read-only aggregate queries over archived requests.
type UsageQuerier interface {
	TotalRequestCount() (int64, error)
	TopClients(limit int) ([]KeyCount, error)
	TopResources(limit int) ([]KeyCount, error)
	TopOperations(limit int) ([]KeyCount, error)
	RequestsPerDay() ([]DayCount, error)
}
