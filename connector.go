package olakepager

import (
	"context"
	"os"

	"github.com/datazip-inc/olake-pager/protocol"
	"github.com/datazip-inc/olake-pager/utils/logger"
	"github.com/datazip-inc/olake-pager/utils/safego"
)

// Execute runs the CLI and exits the process
func Execute(ctx context.Context) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.RootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
