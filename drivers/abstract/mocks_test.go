package abstract

import (
	"context"
	"sync"

	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
)

// MockProcessor is a RowProcessor driven by function fields
type MockProcessor struct {
	nextRowFunc                  func(ctx context.Context) (types.Row, error)
	nextModifiedRowKeyFunc       func(ctx context.Context) (types.Row, error)
	nextDeletedRowKeyFunc        func(ctx context.Context) (types.Row, error)
	nextModifiedParentRowKeyFunc func(ctx context.Context) (types.Row, error)
	resetFunc                    func()
}

var _ cursor.RowProcessor = (*MockProcessor)(nil)

func (m *MockProcessor) NextRow(ctx context.Context) (types.Row, error) {
	if m.nextRowFunc != nil {
		return m.nextRowFunc(ctx)
	}
	return nil, nil
}

func (m *MockProcessor) NextModifiedRowKey(ctx context.Context) (types.Row, error) {
	if m.nextModifiedRowKeyFunc != nil {
		return m.nextModifiedRowKeyFunc(ctx)
	}
	return nil, nil
}

func (m *MockProcessor) NextDeletedRowKey(ctx context.Context) (types.Row, error) {
	if m.nextDeletedRowKeyFunc != nil {
		return m.nextDeletedRowKeyFunc(ctx)
	}
	return nil, nil
}

func (m *MockProcessor) NextModifiedParentRowKey(ctx context.Context) (types.Row, error) {
	if m.nextModifiedParentRowKeyFunc != nil {
		return m.nextModifiedParentRowKeyFunc(ctx)
	}
	return nil, nil
}

func (m *MockProcessor) Reset() {
	if m.resetFunc != nil {
		m.resetFunc()
	}
}

// sequence returns the rows one by one, then nil
func sequence(rows ...types.Row) func(ctx context.Context) (types.Row, error) {
	var mu sync.Mutex
	return func(context.Context) (types.Row, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(rows) == 0 {
			return nil, nil
		}
		row := rows[0]
		rows = rows[1:]
		return row, nil
	}
}

// failing returns the rows, then err
func failing(err error, rows ...types.Row) func(ctx context.Context) (types.Row, error) {
	next := sequence(rows...)
	return func(ctx context.Context) (types.Row, error) {
		row, _ := next(ctx)
		if row == nil {
			return nil, err
		}
		return row, nil
	}
}

type record struct {
	entity string
	op     string
	row    types.Row
}

// recordingWriter keeps every written record in memory
type recordingWriter struct {
	mu       sync.Mutex
	records  []record
	writeErr error
}

func (w *recordingWriter) Write(_ context.Context, entity, op string, row types.Row) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, record{entity: entity, op: op, row: row})
	return nil
}

func (w *recordingWriter) Records() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(len(w.records))
}

func (w *recordingWriter) Close(context.Context) error {
	return nil
}

func (w *recordingWriter) byEntity(entity string) []record {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []record
	for _, r := range w.records {
		if r.entity == entity {
			out = append(out, r)
		}
	}
	return out
}
