package destination

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/types"
)

// JSONLWriter writes one JSON object per row
type JSONLWriter struct {
	mu      sync.Mutex
	out     *bufio.Writer
	closer  io.Closer
	encoder *json.Encoder
	records atomic.Int64
}

// NewJSONLWriter writes to config.Path, or to stdout when the path is empty or "-"
func NewJSONLWriter(config Config) (Writer, error) {
	if config.Path == "" || config.Path == "-" {
		return newJSONLWriter(os.Stdout, nil), nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if config.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(config.Path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file[%s]: %s", config.Path, err)
	}
	return newJSONLWriter(file, file), nil
}

func newJSONLWriter(w io.Writer, closer io.Closer) *JSONLWriter {
	out := bufio.NewWriter(w)
	return &JSONLWriter{out: out, closer: closer, encoder: json.NewEncoder(out)}
}

func (j *JSONLWriter) Write(_ context.Context, entity, op string, row types.Row) error {
	record := row.Clone()
	if record == nil {
		record = types.Row{}
	}
	record[constants.EntityID] = entity
	record[constants.OpType] = op

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to encode record: %s", err)
	}
	j.records.Add(1)
	return nil
}

func (j *JSONLWriter) Records() int64 {
	return j.records.Load()
}

func (j *JSONLWriter) Close(_ context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %s", err)
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// NoopWriter counts rows and drops them, used by check runs
type NoopWriter struct {
	records atomic.Int64
}

func NewNoopWriter(Config) (Writer, error) {
	return &NoopWriter{}, nil
}

func (n *NoopWriter) Write(context.Context, string, string, types.Row) error {
	n.records.Add(1)
	return nil
}

func (n *NoopWriter) Records() int64 {
	return n.records.Load()
}

func (n *NoopWriter) Close(context.Context) error {
	return nil
}
