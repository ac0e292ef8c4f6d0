package validation

import "sync"

// Accumulator is an append-only, order-preserving record list
type Accumulator struct {
	mu      sync.Mutex
	records []*Record
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append adds a record at the end
func (a *Accumulator) Append(record *Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
}

// Merge appends every record of other, in other's order
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other == a {
		return
	}
	items := other.Records()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, items...)
}

// Len returns the number of records
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Records returns a snapshot of the records in insertion order
func (a *Accumulator) Records() []*Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Record, len(a.records))
	copy(out, a.records)
	return out
}
