package jdbc

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils/typeutils"
)

// Querier is satisfied by *sqlx.DB, *sqlx.Conn and *sqlx.Tx
type Querier interface {
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

// Reader executes page statements against a SQL database
type Reader struct {
	client Querier
}

var _ cursor.RowSource = (*Reader)(nil)

func NewReader(client Querier) *Reader {
	return &Reader{client: client}
}

func (r *Reader) Execute(ctx context.Context, statement string) (cursor.Rows, error) {
	if strings.HasSuffix(strings.TrimSpace(statement), ";") {
		return nil, fmt.Errorf("statement ends with ';': %s", statement)
	}

	rows, err := r.client.QueryxContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

// Rows adapts *sqlx.Rows to cursor.Rows
type Rows struct {
	rows *sqlx.Rows
}

func (r *Rows) Next() bool {
	return r.rows.Next()
}

func (r *Rows) Err() error {
	return r.rows.Err()
}

func (r *Rows) Row() (types.Row, error) {
	record := make(types.Row)
	if err := MapScan(r.rows, record); err != nil {
		return nil, fmt.Errorf("failed to scan record data as map: %s", err)
	}
	return record, nil
}

func (r *Rows) Close() error {
	return r.rows.Close()
}

// MapScan scans the current row into dest, converting driver byte slices into strings
func MapScan(rows *sqlx.Rows, dest map[string]any) error {
	if err := rows.MapScan(dest); err != nil {
		return err
	}
	for col, raw := range dest {
		dest[col] = typeutils.ReformatValue(raw)
	}
	return nil
}
