package abstract

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/destination"
	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/pkg/dataimport"
	"github.com/datazip-inc/olake-pager/telemetry"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils"
	"github.com/datazip-inc/olake-pager/utils/logger"
)

// epoch is the last index time of an entity that was never imported
var epoch = time.Unix(0, 0).UTC().Format(constants.IndexTimeFormat)

// Importer runs the configured entities through their row processors and
// hands every produced row to the writer
type Importer struct {
	config       *batch.Config
	newProcessor ProcessorFunc
	writer       destination.Writer
	state        *types.State
	metrics      *telemetry.Metrics
	runID        string
	// commitState is false for dry runs, the state keeps its index times
	commitState bool
}

func NewImporter(config *batch.Config, newProcessor ProcessorFunc, writer destination.Writer, state *types.State, metrics *telemetry.Metrics) *Importer {
	if state == nil {
		state = types.NewState()
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Importer{
		config:       config,
		newProcessor: newProcessor,
		writer:       writer,
		state:        state,
		metrics:      metrics,
		runID:        utils.ULID(),
		commitState:  true,
	}
}

// DisableStateCommit keeps the last index time of every entity untouched
func (i *Importer) DisableStateCommit() {
	i.commitState = false
}

func (i *Importer) RunID() string {
	return i.runID
}

func (i *Importer) State() *types.State {
	return i.state
}

// Run imports every entity with at most max_threads running at a time. A
// warning fails only its own entity; a severe error cancels the run.
func (i *Importer) Run(ctx context.Context, process types.ProcessType) ([]*types.ImportStats, error) {
	startTime := time.Now()
	logger.Infof("Starting %s run[%s] for %d entities", process, i.runID, len(i.config.Entities))

	var (
		mu       sync.Mutex
		failures *multierror.Error
		stats    = make([]*types.ImportStats, len(i.config.Entities))
	)
	err := utils.Concurrent(ctx, i.config.Entities, i.config.MaxThreads, func(ctx context.Context, entity batch.Entity, executionNumber int) error {
		entityStats, err := i.importEntity(ctx, &entity, process, startTime)
		stats[executionNumber-1] = entityStats
		if err == nil {
			return nil
		}
		if utils.IsSevere(err) {
			return err
		}

		logger.Warnf("entity[%s] failed, continuing with the remaining entities: %s", entity.Name, err)
		mu.Lock()
		failures = multierror.Append(failures, err)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return stats, err
	}
	return stats, failures.ErrorOrNil()
}

func (i *Importer) importEntity(ctx context.Context, entity *batch.Entity, process types.ProcessType, startTime time.Time) (*types.ImportStats, error) {
	begin := time.Now()
	stats := &types.ImportStats{Entity: entity.Name, Process: string(process)}
	queries := &cursor.Counter{}

	ectx := dataimport.NewEntityContext(entity.Attributes(), process)
	ectx.SetRequestParams(i.config.Params)
	ectx.SetVariable(constants.LastIndexTime, i.lastIndexTime(entity.Name))
	ectx.SetVariable(constants.IndexStartTime, startTime.Format(constants.IndexTimeFormat))

	err := func() error {
		processor, err := i.newProcessor(ectx, queryCounters{queries, i.metrics.QueryCounter(entity.Name)})
		if err != nil {
			return utils.Wrap(utils.Severe, err, "failed to create processor for entity %s", entity.Name)
		}
		defer processor.Reset()

		logger.Infof("Starting %s for entity[%s]", process, entity.Name)
		if process == types.DeltaDump {
			return i.deltaDump(ctx, ectx, entity, processor, stats)
		}
		return i.dump(ctx, entity, processor, constants.OpRead, stats)
	}()

	elapsed := time.Since(begin)
	stats.Queries = queries.Count()
	stats.Duration = elapsed.String()
	i.metrics.ObserveRun(stats, elapsed, err)
	if err != nil {
		return stats, err
	}

	// rows changed while this run was reading are picked up by the next delta
	if i.commitState {
		i.state.SetLastIndexTime(entity.Name, startTime.Format(constants.IndexTimeFormat))
	}
	logger.Infof("Finished %s for entity[%s]: %d records, %d queries in %s", process, entity.Name, stats.Rows, stats.Queries, stats.Duration)
	return stats, nil
}

func (i *Importer) lastIndexTime(entity string) string {
	if last := i.state.GetLastIndexTime(entity); last != "" {
		return last
	}
	return epoch
}

// write hands one record to the destination, a failing destination stops the run
func (i *Importer) write(ctx context.Context, entity, op string, row types.Row, stats *types.ImportStats) error {
	if err := i.writer.Write(ctx, entity, op, row); err != nil {
		return utils.Wrap(utils.Severe, err, "failed to write %s record of entity %s", op, entity)
	}
	stats.Rows++
	i.metrics.AddRows(entity, op, 1)
	return nil
}
