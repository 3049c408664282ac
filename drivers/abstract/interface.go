package abstract

import (
	"context"

	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
)

// ProcessorFunc builds the row processor of one entity run. The processor
// reads its statements and variables from ectx and reports every issued
// page to counter.
type ProcessorFunc func(ectx cursor.Context, counter cursor.QueryCounter) (cursor.RowProcessor, error)

// KeyFn pulls the next key of one delta phase, nil once exhausted
type KeyFn func(ctx context.Context) (types.Row, error)

// CursorProcessor returns a ProcessorFunc that pages statements over source
func CursorProcessor(source cursor.RowSource) ProcessorFunc {
	return func(ectx cursor.Context, counter cursor.QueryCounter) (cursor.RowProcessor, error) {
		pager, err := cursor.New(ectx, source, counter)
		if err != nil {
			return nil, err
		}
		return pager, nil
	}
}
