package abstract

import (
	"context"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/pkg/dataimport"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils"
	"github.com/datazip-inc/olake-pager/utils/logger"
)

// deltaDump writes deleted keys, then parent keys, then re-reads every
// modified row that was not deleted. The phases run even when an earlier one
// failed with a warning.
func (i *Importer) deltaDump(ctx context.Context, ectx *dataimport.EntityContext, entity *batch.Entity, processor cursor.RowProcessor, stats *types.ImportStats) error {
	primaryKeys := cursor.SplitKeys(entity.PK)
	deleted := make(map[string]struct{})

	return utils.ErrExecSequential(ctx,
		func(ctx context.Context) error {
			return drainKeys(ctx, processor.NextDeletedRowKey, func(key types.Row) error {
				stats.DeletedKeys++
				deleted[keyOf(key, primaryKeys)] = struct{}{}
				return i.write(ctx, entity.Name, constants.OpDelete, key, stats)
			})
		},
		func(ctx context.Context) error {
			return drainKeys(ctx, processor.NextModifiedParentRowKey, func(key types.Row) error {
				stats.ParentKeys++
				return i.write(ctx, entity.Name, constants.OpParent, key, stats)
			})
		},
		func(ctx context.Context) error {
			// keys are collected first, reading a row starts a new cursor session
			var modified []types.Row
			err := drainKeys(ctx, processor.NextModifiedRowKey, func(key types.Row) error {
				modified = append(modified, key)
				return nil
			})
			if err != nil {
				return err
			}
			stats.ModifiedKeys = int64(len(modified))
			logger.Infof("entity[%s] delta: %d modified, %d deleted, %d parent keys", entity.Name, stats.ModifiedKeys, stats.DeletedKeys, stats.ParentKeys)

			for _, key := range modified {
				if _, found := deleted[keyOf(key, primaryKeys)]; found {
					continue
				}
				ectx.SetDeltaValues(key)
				processor.Reset()
				if err := i.dump(ctx, entity, processor, constants.OpUpsert, stats); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
