package tabular

import (
	"context"
	"fmt"
)

// MemStore is an in-memory Store used by tests and dry runs.
type MemStore struct {
	sheets map[string][][]string
	order  []string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sheets: make(map[string][][]string)}
}

func (m *MemStore) EnsureSheet(ctx context.Context, name string, headers []string) error {
	if _, ok := m.sheets[name]; ok {
		return nil
	}
	m.sheets[name] = nil
	m.order = append(m.order, name)
	return nil
}

func (m *MemStore) AppendRow(ctx context.Context, sheet string, values []any) error {
	if _, ok := m.sheets[sheet]; !ok {
		return fmt.Errorf("no such sheet: %s", sheet)
	}
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	m.sheets[sheet] = append(m.sheets[sheet], row)
	return nil
}

func (m *MemStore) Rows(ctx context.Context, sheet string) ([][]string, error) {
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("no such sheet: %s", sheet)
	}
	return rows, nil
}

func (m *MemStore) Flush(ctx context.Context) error {
	return nil
}
