package cursor

import "sync/atomic"

// Counter is an in-memory QueryCounter. One instance may be shared by
// cursors running on different goroutines.
type Counter struct {
	issued atomic.Int64
}

func (c *Counter) Inc() {
	c.issued.Add(1)
}

// Count returns the number of queries issued so far
func (c *Counter) Count() int64 {
	return c.issued.Load()
}

type noopCounter struct{}

func (noopCounter) Inc() {}
