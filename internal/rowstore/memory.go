package rowstore

import (
	"context"
	"sync"
)

type memoryTable struct {
	headers []string
	rows    []Row
}

// MemoryStore keeps tables in process memory. It backs tests and the demo dataset.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

func (s *MemoryStore) List(_ context.Context, table string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[table]
	if !ok {
		return nil, tableError(ErrTableNotFound, table)
	}
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, copyRow(r))
	}
	return out, nil
}

func (s *MemoryStore) Headers(_ context.Context, table string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[table]
	if !ok {
		return nil, tableError(ErrTableNotFound, table)
	}
	return append([]string(nil), t.headers...), nil
}

func (s *MemoryStore) Append(_ context.Context, table string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		return tableError(ErrTableNotFound, table)
	}
	t.rows = append(t.rows, project(t.headers, row))
	return nil
}

func (s *MemoryStore) Update(_ context.Context, table string, index int, values Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		return tableError(ErrTableNotFound, table)
	}
	if index < 0 || index >= len(t.rows) {
		return tableError(ErrRowNotFound, table)
	}
	for k, v := range project(t.headers, values) {
		t.rows[index][k] = v
	}
	return nil
}

func (s *MemoryStore) EnsureTable(_ context.Context, table string, headers []string) error {
	headers = cleanHeaders(headers)
	if len(headers) == 0 {
		return ErrNoHeaders
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; ok {
		return nil
	}
	s.tables[table] = &memoryTable{headers: headers}
	return nil
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
