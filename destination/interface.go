package destination

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-pager/types"
)

type DestinationType string

const (
	JSONL DestinationType = "jsonl"
	Noop  DestinationType = "noop"
)

// Writer receives the rows produced by the importer. Implementations must
// be safe for concurrent use, entities may be imported in parallel.
type Writer interface {
	// Write stores row for entity tagged with the operation that produced it
	Write(ctx context.Context, entity, op string, row types.Row) error
	// Records is the number of rows written so far
	Records() int64
	Close(ctx context.Context) error
}

// Config locates the output of a writer
type Config struct {
	// Path of the output file, empty or "-" for stdout
	Path string
	// Append keeps the records of earlier runs, otherwise the file is truncated
	Append bool
}

type NewFunc func(config Config) (Writer, error)

var RegisteredWriters = map[DestinationType]NewFunc{
	JSONL: NewJSONLWriter,
	Noop:  NewNoopWriter,
}

// NewWriter creates the writer registered for typ
func NewWriter(typ DestinationType, config Config) (Writer, error) {
	newfunc, found := RegisteredWriters[typ]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", typ)
	}
	return newfunc(config)
}
