package abstract

import (
	"context"

	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
)

// dump streams every row of the entity's current statement to the writer as op
func (i *Importer) dump(ctx context.Context, entity *batch.Entity, processor cursor.RowProcessor, op string, stats *types.ImportStats) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := processor.NextRow(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		if err := i.write(ctx, entity.Name, op, row, stats); err != nil {
			return err
		}
	}
}
