/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils/logger"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	Long:  `Check validates the config and connects to the source database`,
	Run: func(cmd *cobra.Command, _ []string) {
		logger.Info(types.Message{
			Type:             types.ConnectionStatusMessage,
			ConnectionStatus: checkSource(cmd.Context(), configPath),
		})
	},
}

func checkSource(ctx context.Context, path string) *types.StatusRow {
	err := func() error {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		source := batch.NewSource(config)
		defer source.Close()
		return source.Setup(ctx)
	}()

	status := &types.StatusRow{Status: types.ConnectionSucceed}
	if err != nil {
		status.Message = err.Error()
		status.Status = types.ConnectionFailed
	}
	return status
}
