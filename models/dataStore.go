package models

import (
	"sync"
	"time"
)

// DataStore holds the dataset of the last successful upload. The whole
// dataset is swapped at once, so readers never see a partial update.
type DataStore struct {
	mu      sync.RWMutex
	nextID  uint64
	current *Dataset
}

func NewDataStore() *DataStore {
	return &DataStore{}
}

// Replace builds a new dataset from an ingested table and makes it current
func (s *DataStore) Replace(fileName string, table Table, loadedAt time.Time) *Dataset {
	records := ParseRecords(table.Rows)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.current = &Dataset{
		ID:       s.nextID,
		FileName: fileName,
		LoadedAt: loadedAt,
		Table:    table,
		Records:  records,
	}
	return s.current
}

// Current returns the current dataset, nil before the first upload
func (s *DataStore) Current() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
