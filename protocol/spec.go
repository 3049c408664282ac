package protocol

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/drivers/batch"
)

// specCmd prints a sample config
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	Long:  `Spec prints a sample config to edit and pass to sync with --config`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := SampleConfig()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
		return err
	},
}

// SampleConfig renders a config with one entity per supported template as YAML
func SampleConfig() ([]byte, error) {
	sample := batch.Config{
		Driver:     constants.MySQL,
		Host:       "localhost",
		Port:       3306,
		Username:   "root",
		Password:   "password",
		Database:   "shop",
		MaxThreads: constants.DefaultThreadCount,
		JDBCURLParams: map[string]string{
			"parseTime": "true",
		},
		Params: map[string]string{
			"category": "books",
		},
		Entities: []batch.Entity{
			{
				Name:           "item",
				BatchSize:      1000,
				Query:          "SELECT * FROM item",
				DeltaQuery:     "SELECT id FROM item WHERE last_modified > '${dataimporter.last_index_time}'",
				DeletedPKQuery: "SELECT id FROM item_deleted WHERE deleted_at > '${dataimporter.last_index_time}'",
				PK:             "id",
			},
			{
				Name:             "feature",
				BatchSize:        500,
				Query:            "SELECT * FROM feature WHERE category = '${dataimporter.request.category}'",
				DeltaQuery:       "SELECT item_id AS id FROM feature WHERE last_modified > '${dataimporter.last_index_time}'",
				DeltaImportQuery: "SELECT * FROM feature WHERE item_id = ${dataimporter.delta.id}",
				ParentDeltaQuery: "SELECT DISTINCT item_id AS id FROM feature WHERE last_modified > '${dataimporter.last_index_time}'",
			},
		},
	}

	data, err := yaml.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sample config: %s", err)
	}
	return data, nil
}
