package cursor

import (
	"context"

	"github.com/datazip-inc/olake-pager/types"
)

// RowSource executes a statement and returns its rows lazily.
type RowSource interface {
	Execute(ctx context.Context, statement string) (Rows, error)
}

// Rows is a forward only sequence of rows. Next must be called before every Row.
type Rows interface {
	types.Iterable
	Row() (types.Row, error)
	Close() error
}

// Context exposes the entity configuration and the variables a statement
// template may refer to.
type Context interface {
	// Attribute returns an entity attribute such as query or batchSize
	Attribute(name string) (string, bool)
	// Resolve looks up a variable, e.g. dataimporter.delta.id
	Resolve(name string) (any, bool)
	// Process is the kind of import currently running
	Process() types.ProcessType
	// ReplaceTokens substitutes ${...} variables in text
	ReplaceTokens(text string) string
}

// QueryCounter records every statement issued against a RowSource.
type QueryCounter interface {
	Inc()
}

// RowProcessor is implemented by anything an importer can pull rows from.
// Every method returns nil, nil once there are no more rows.
type RowProcessor interface {
	NextRow(ctx context.Context) (types.Row, error)
	NextModifiedRowKey(ctx context.Context) (types.Row, error)
	NextDeletedRowKey(ctx context.Context) (types.Row, error)
	NextModifiedParentRowKey(ctx context.Context) (types.Row, error)
	// Reset discards any open page and starts a fresh session
	Reset()
}
