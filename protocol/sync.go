package protocol

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/destination"
	"github.com/datazip-inc/olake-pager/drivers/abstract"
	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/telemetry"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils/logger"
)

var (
	deltaImport bool
	dryRun      bool

	syncConfig *batch.Config
	syncState  *types.State
)

// syncCmd represents the sync command which imports every configured entity
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Olake Pager sync command",
	Long:  `Sync command pages through every configured entity and writes the rows to the JSONL output`,
	Example: `
// Full dump:
olake-pager sync --config path/to/config.yaml

// Delta dump with state and metrics:
olake-pager sync --config path/to/config.yaml --delta --state path/to/state.json --metrics-file path/to/pager.prom
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		syncConfig, err = LoadConfig(configPath)
		if err != nil {
			return err
		}

		syncState, err = types.LoadState(viper.GetString(constants.StatePath))
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		source := batch.NewSource(syncConfig)
		if err := source.Setup(ctx); err != nil {
			return err
		}
		defer source.Close()

		writerType := destination.JSONL
		if dryRun {
			writerType = destination.Noop
		}
		// delta records extend the output of earlier runs, a full dump replaces it
		writer, err := destination.NewWriter(writerType, destination.Config{
			Path:   viper.GetString(constants.OutputPath),
			Append: deltaImport,
		})
		if err != nil {
			return err
		}

		process := types.FullDump
		if deltaImport {
			process = types.DeltaDump
		}

		metrics := telemetry.NewMetrics()
		importer := abstract.NewImporter(syncConfig, abstract.CursorProcessor(source.Reader()), writer, syncState, metrics)
		if dryRun {
			importer.DisableStateCommit()
		}
		stats, runErr := importer.Run(ctx, process)

		var result *multierror.Error
		if runErr != nil {
			result = multierror.Append(result, runErr)
		}
		if err := writer.Close(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close writer: %s", err))
		}

		for _, entityStats := range stats {
			if entityStats != nil {
				logger.Info(types.Message{Type: types.StatsMessage, Stats: entityStats})
			}
		}

		// failed entities keep their previous index time, saving is always safe
		if path := viper.GetString(constants.StatePath); path != "" && !dryRun {
			if err := syncState.Save(path); err != nil {
				result = multierror.Append(result, err)
			}
		}
		logger.Info(types.Message{Type: types.StateMessage, State: syncState})

		if path := viper.GetString(constants.MetricsPath); path != "" {
			if err := metrics.WriteToTextfile(path); err != nil {
				result = multierror.Append(result, err)
			}
		}

		logger.Infof("run[%s] wrote %d records", importer.RunID(), writer.Records())
		return result.ErrorOrNil()
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&deltaImport, "delta", "", false, "(Optional) Run a delta dump instead of a full dump")
	syncCmd.Flags().BoolVarP(&dryRun, "dry-run", "", false, "(Optional) Read every entity without writing output")
}
