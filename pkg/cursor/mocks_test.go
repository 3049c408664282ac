package cursor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/datazip-inc/olake-pager/types"
)

// MockContext is an in-memory entity context
type MockContext struct {
	attributes map[string]string
	variables  map[string]any
	process    types.ProcessType
}

func newMockContext(process types.ProcessType, attributes map[string]string) *MockContext {
	return &MockContext{attributes: attributes, variables: map[string]any{}, process: process}
}

func (m *MockContext) Attribute(name string) (string, bool) {
	v, ok := m.attributes[name]
	return v, ok
}

func (m *MockContext) Resolve(name string) (any, bool) {
	v, ok := m.variables[name]
	return v, ok
}

func (m *MockContext) Process() types.ProcessType {
	return m.process
}

func (m *MockContext) ReplaceTokens(text string) string {
	for k, v := range m.variables {
		text = strings.ReplaceAll(text, "${"+k+"}", fmt.Sprint(v))
	}
	return text
}

// sliceRows serves a fixed page
type sliceRows struct {
	rows    []types.Row
	pos     int
	err     error // returned by Err once the rows are drained
	rowErr  error // returned by Row
	closed  bool
	current types.Row
}

func (s *sliceRows) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.current = s.rows[s.pos]
	s.pos++
	return true
}

func (s *sliceRows) Err() error {
	if s.pos >= len(s.rows) {
		return s.err
	}
	return nil
}

func (s *sliceRows) Row() (types.Row, error) {
	if s.rowErr != nil {
		return nil, s.rowErr
	}
	return s.current, nil
}

func (s *sliceRows) Close() error {
	s.closed = true
	return nil
}

var (
	watermarkArg = regexp.MustCompile(`id > (\d+)`)
	limitArg     = regexp.MustCompile(`LIMIT (\d+)$`)
)

// tableSource answers page queries from an id ordered table the way a
// database would: honouring "id > N" and "LIMIT N".
type tableSource struct {
	table      []types.Row
	statements []string
	pages      []*sliceRows
	// open holds the number of unclosed pages seen by every Execute
	open []int
}

func newTableSource(n int) *tableSource {
	src := &tableSource{}
	for i := 1; i <= n; i++ {
		src.table = append(src.table, types.Row{"id": int64(i), "name": fmt.Sprintf("item-%d", i)})
	}
	return src
}

func (t *tableSource) Execute(_ context.Context, statement string) (Rows, error) {
	t.statements = append(t.statements, statement)
	open := 0
	for _, p := range t.pages {
		if !p.closed {
			open++
		}
	}
	t.open = append(t.open, open)

	var after int64
	if m := watermarkArg.FindStringSubmatch(statement); m != nil {
		after, _ = strconv.ParseInt(m[1], 10, 64)
	}
	limit := len(t.table)
	if m := limitArg.FindStringSubmatch(statement); m != nil {
		limit, _ = strconv.Atoi(m[1])
	}

	page := &sliceRows{}
	for _, row := range t.table {
		if len(page.rows) == limit {
			break
		}
		if row["id"].(int64) > after {
			page.rows = append(page.rows, row)
		}
	}
	t.pages = append(t.pages, page)
	return page, nil
}

// scriptedSource replays prepared pages and failures in order
type scriptedSource struct {
	pages      []*sliceRows
	errs       []error
	statements []string
}

func (s *scriptedSource) Execute(_ context.Context, statement string) (Rows, error) {
	idx := len(s.statements)
	s.statements = append(s.statements, statement)
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	if idx < len(s.pages) {
		return s.pages[idx], nil
	}
	return &sliceRows{}, nil
}

func page(ids ...any) *sliceRows {
	p := &sliceRows{}
	for _, id := range ids {
		p.rows = append(p.rows, types.Row{"id": id})
	}
	return p
}
