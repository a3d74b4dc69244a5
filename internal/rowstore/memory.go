package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory é a implementação em memória do Store, usada pelo sheet-simulator e
// pelos testes. Protegida por mutex; linhas são copiadas na entrada e na saída.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string][]Row
}

// NewMemory cria um Memory já com as quatro worksheets do Schema, vazias.
func NewMemory() *Memory {
	sheets := make(map[string][]Row, len(Schema))
	for name := range Schema {
		sheets[name] = nil
	}
	return &Memory{sheets: sheets}
}

func (m *Memory) Validate(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name := range Schema {
		if _, ok := m.sheets[name]; !ok {
			return fmt.Errorf("%w: worksheet %q ausente", ErrBadSchema, name)
		}
	}
	return nil
}

func (m *Memory) GetAllRows(ctx context.Context, sheet string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: worksheet %q ausente", ErrBadSchema, sheet)
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

func (m *Memory) FindRow(ctx context.Context, sheet, column, value string) (int, Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.sheets[sheet]
	if !ok {
		return 0, nil, fmt.Errorf("%w: worksheet %q ausente", ErrBadSchema, sheet)
	}
	for i, r := range rows {
		if r[column] == value {
			return i, copyRow(r), nil
		}
	}
	return 0, nil, ErrRowNotFound
}

func (m *Memory) ReadCell(ctx context.Context, sheet string, index int, column string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, err := m.rowAt(sheet, index)
	if err != nil {
		return "", err
	}
	return row[column], nil
}

func (m *Memory) UpdateCell(ctx context.Context, sheet string, index int, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, err := m.rowAt(sheet, index)
	if err != nil {
		return err
	}
	row[column] = value
	return nil
}

func (m *Memory) AppendRow(ctx context.Context, sheet string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[sheet]; !ok {
		return fmt.Errorf("%w: worksheet %q ausente", ErrBadSchema, sheet)
	}
	m.sheets[sheet] = append(m.sheets[sheet], copyRow(row))
	return nil
}

// rowAt assume o lock já adquirido.
func (m *Memory) rowAt(sheet string, index int) (Row, error) {
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: worksheet %q ausente", ErrBadSchema, sheet)
	}
	if index < 0 || index >= len(rows) {
		return nil, ErrRowNotFound
	}
	return rows[index], nil
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
