package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/datazip-inc/olake-pager/utils/logger"
)

// Severity tells the caller whether a failure may be skipped
type Severity string

const (
	// Warn failures abort the current entity only
	Warn Severity = "warn"
	// Severe failures abort the whole run
	Severe Severity = "severe"
)

// CustomError represents a custom error type with an additional field to indicate if execution should stop.
type CustomError struct {
	Message  string
	Severity Severity
	Err      error
}

func (e *CustomError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Err)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// ShouldStop checks if the custom error indicates that execution should be halted.
func (e *CustomError) ShouldStop() bool {
	return e.Severity == Severe
}

// Wrap tags err with a severity; an error that already carries one is returned as is
func Wrap(severity Severity, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var custom *CustomError
	if errors.As(err, &custom) {
		return err
	}
	return &CustomError{Message: fmt.Sprintf(format, args...), Severity: severity, Err: err}
}

// IsSevere reports whether err (or anything it wraps) must stop execution.
// Errors without a severity are treated as severe, accumulated errors
// are severe when any of them is.
func IsSevere(err error) bool {
	if err == nil {
		return false
	}
	var multi *multierror.Error
	if errors.As(err, &multi) {
		for _, one := range multi.Errors {
			if IsSevere(one) {
				return true
			}
		}
		return false
	}
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.ShouldStop()
	}
	return true
}

// ErrExecSequential executes a list of functions sequentially, accumulating errors if any occur.
// Execution stops at the first severe error.
func ErrExecSequential(ctx context.Context, functions ...func(ctx context.Context) error) error {
	var multErr error

	for _, one := range functions {
		if err := ctx.Err(); err != nil {
			return multierror.Append(multErr, err)
		}
		err := one(ctx)
		if err != nil {
			multErr = multierror.Append(multErr, err)

			if IsSevere(err) {
				logger.Errorf("Critical error encountered, stopping execution: %s", err)
				break
			}
		}
	}

	return multErr
}
