package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	olakepager "github.com/datazip-inc/olake-pager"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	olakepager.Execute(ctx)
}
