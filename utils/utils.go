package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ULID returns a lexically sortable unique id, used to tag runs
func ULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Concurrent runs execute for every element with at most maxThreads in flight.
// The first error cancels the context handed to the remaining executions.
func Concurrent[T any](ctx context.Context, array []T, maxThreads int, execute func(ctx context.Context, one T, executionNumber int) error) error {
	executor, ctx := errgroup.WithContext(ctx)
	if maxThreads > 0 {
		executor.SetLimit(maxThreads)
	}

	for idx, one := range array {
		executor.Go(func() error {
			return execute(ctx, one, idx+1)
		})
	}

	return executor.Wait()
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() {
			return true
		}
		for _, alias := range s.Aliases {
			if sub == alias {
				return true
			}
		}
	}
	return false
}

// CheckIfFilesExists returns an error for the first path that is missing or a directory
func CheckIfFilesExists(files ...string) error {
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("%s does not exist: %s", file, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", file)
		}
	}
	return nil
}
