package abstract

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils/typeutils"
)

// queryCounters fans one issued page out to every counter
type queryCounters []cursor.QueryCounter

func (q queryCounters) Inc() {
	for _, counter := range q {
		counter.Inc()
	}
}

// drainKeys calls fn for every key until next is exhausted
func drainKeys(ctx context.Context, next KeyFn, fn func(key types.Row) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, err := next(ctx)
		if err != nil {
			return err
		}
		if key == nil {
			return nil
		}
		if err := fn(key); err != nil {
			return err
		}
	}
}

// keyOf renders the primary key values of row so keys coming from different
// statements compare equal. Without a primary key every column takes part.
func keyOf(row types.Row, primaryKeys []string) string {
	columns := primaryKeys
	if len(columns) == 0 {
		columns = slices.Sorted(maps.Keys(row))
	}

	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		value, found := row[col]
		if !found {
			if idx := strings.LastIndex(col, "."); idx >= 0 {
				value = row[col[idx+1:]]
			}
		}
		parts = append(parts, fmt.Sprint(typeutils.ReformatValue(value)))
	}
	return strings.Join(parts, "|")
}
