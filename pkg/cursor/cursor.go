package cursor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils"
	"github.com/datazip-inc/olake-pager/utils/logger"
	"github.com/datazip-inc/olake-pager/utils/typeutils"
)

// PagedRowCursor streams the rows of a statement page by page. Every page is
// the base statement limited to the batch size and, once an id has been
// seen, constrained to ids above the largest one seen so far.
//
// A cursor is driven by a single caller; it holds no locks.
type PagedRowCursor struct {
	source   RowSource
	context  Context
	counter  QueryCounter
	pageSize int

	// session
	mode      types.QueryMode
	statement string
	page      Rows
	pageRows  int
	watermark int64
	exhausted bool
}

var _ RowProcessor = (*PagedRowCursor)(nil)

// New reads batchSize from the entity context and builds a cursor over source.
// A nil counter disables query counting.
func New(ctx Context, source RowSource, counter QueryCounter) (*PagedRowCursor, error) {
	raw, found := ctx.Attribute(constants.BatchSize)
	if !found {
		return nil, fmt.Errorf("attribute %s is required", constants.BatchSize)
	}
	pageSize, err := strconv.Atoi(raw)
	if err != nil || pageSize <= 0 {
		return nil, fmt.Errorf("attribute %s must be a positive integer, found '%s'", constants.BatchSize, raw)
	}

	if counter == nil {
		counter = noopCounter{}
	}

	return &PagedRowCursor{
		source:   source,
		context:  ctx,
		counter:  counter,
		pageSize: pageSize,
	}, nil
}

// PageSize is the row limit applied to every page
func (c *PagedRowCursor) PageSize() int {
	return c.pageSize
}

// Watermark is the largest id seen in the running session
func (c *PagedRowCursor) Watermark() int64 {
	return c.watermark
}

// NextRow returns the next row of the entity query. In a delta dump the
// configured deltaImportQuery is used, or one is derived from query and pk.
func (c *PagedRowCursor) NextRow(ctx context.Context) (types.Row, error) {
	return c.next(ctx, types.FullMode, func() (string, bool, error) {
		stmt, err := c.Query()
		if err != nil {
			return "", false, err
		}
		return stmt, true, nil
	})
}

// NextModifiedRowKey returns the next key produced by deltaQuery
func (c *PagedRowCursor) NextModifiedRowKey(ctx context.Context) (types.Row, error) {
	return c.next(ctx, types.DeltaMode, c.template(constants.DeltaQuery))
}

// NextDeletedRowKey returns the next key produced by deletedPkQuery
func (c *PagedRowCursor) NextDeletedRowKey(ctx context.Context) (types.Row, error) {
	return c.next(ctx, types.DeletedKeysMode, c.template(constants.DeletedPKQuery))
}

// NextModifiedParentRowKey returns the next key produced by parentDeltaQuery
func (c *PagedRowCursor) NextModifiedParentRowKey(ctx context.Context) (types.Row, error) {
	resolve := c.template(constants.ParentDeltaQuery)
	return c.next(ctx, types.ParentDeltaMode, func() (string, bool, error) {
		stmt, found, err := resolve()
		if found {
			name, _ := c.context.Attribute(constants.EntityName)
			logger.Infof("Running parentDeltaQuery for entity: %s", name)
		}
		return stmt, found, err
	})
}

// Reset drops the current session, closing any open page
func (c *PagedRowCursor) Reset() {
	c.closePage()
	c.statement = ""
	c.pageRows = 0
	c.watermark = 0
	c.exhausted = false
}

// Query resolves the statement used by NextRow for the current process
func (c *PagedRowCursor) Query() (string, error) {
	query, found := c.context.Attribute(constants.Query)
	if !found {
		return "", fmt.Errorf("attribute %s is required", constants.Query)
	}

	switch c.context.Process() {
	case types.FullDump:
		return query, nil
	case types.DeltaDump:
		if deltaImport, found := c.context.Attribute(constants.DeltaImportQuery); found {
			return deltaImport, nil
		}
	}

	pk, found := c.context.Attribute(constants.PrimaryKey)
	keys := SplitKeys(pk)
	if !found || len(keys) == 0 {
		return "", fmt.Errorf("attribute %s is required to derive a delta import query", constants.PrimaryKey)
	}
	return DeltaImportQuery(query, keys, c.context), nil
}

func (c *PagedRowCursor) template(attribute string) func() (string, bool, error) {
	return func() (string, bool, error) {
		stmt, found := c.context.Attribute(attribute)
		return stmt, found, nil
	}
}

// next serves a row for mode, opening the first page of a session when needed.
// A call for a different mode than the running session starts a new session.
func (c *PagedRowCursor) next(ctx context.Context, mode types.QueryMode, resolve func() (string, bool, error)) (types.Row, error) {
	if mode != c.mode {
		c.Reset()
		c.mode = mode
	}

	if c.exhausted {
		return nil, nil
	}

	if c.page == nil {
		stmt, found, err := resolve()
		if err != nil {
			return nil, utils.Wrap(utils.Severe, err, "failed to resolve %s statement", mode)
		}
		if !found {
			return nil, nil
		}
		if err := c.open(ctx, c.context.ReplaceTokens(stmt)); err != nil {
			return nil, err
		}
	}

	return c.advance(ctx)
}

// open issues the first page of a session
func (c *PagedRowCursor) open(ctx context.Context, stmt string) error {
	c.watermark = 0
	c.pageRows = 0

	query := PageQuery(stmt, c.watermark, c.pageSize)
	c.counter.Inc()
	logger.Debugf("Query: %s", query)

	page, err := c.source.Execute(ctx, query)
	if err != nil {
		logger.Errorf("The query failed '%s' LIMIT(%d): %s", stmt, c.pageSize, err)
		c.Reset()
		return utils.Wrap(utils.Severe, err, "failed to execute query '%s'", query)
	}

	c.statement = stmt
	c.page = page
	return nil
}

// advance moves the active session forward by one row
func (c *PagedRowCursor) advance(ctx context.Context) (types.Row, error) {
	if c.page.Next() {
		return c.consume()
	}
	if err := c.page.Err(); err != nil {
		return nil, c.fail(err, "")
	}

	// a short page is the end of the result set
	if c.pageRows >= c.pageSize {
		query := PageQuery(c.statement, c.watermark, c.pageSize)
		c.counter.Inc()
		logger.Debugf("Next page: %s", query)

		c.closePage()
		page, err := c.source.Execute(ctx, query)
		if err != nil {
			return nil, c.fail(err, query)
		}
		c.page = page
		c.pageRows = 0

		if c.page.Next() {
			return c.consume()
		}
		if err := c.page.Err(); err != nil {
			return nil, c.fail(err, query)
		}
	}

	c.finish()
	return nil, nil
}

func (c *PagedRowCursor) consume() (types.Row, error) {
	row, err := c.page.Row()
	if err != nil {
		return nil, c.fail(err, "")
	}
	c.pageRows++

	if id, ok := typeutils.ParseDigits(row[constants.WatermarkColumn]); ok && id > c.watermark {
		c.watermark = id
	}
	logger.Debugf("PKID %v", row[constants.WatermarkColumn])
	return row, nil
}

// finish ends the session; the mode stays exhausted until Reset or a mode switch
func (c *PagedRowCursor) finish() {
	c.Reset()
	c.exhausted = true
}

// fail clears the session so a retry starts from a clean cursor
func (c *PagedRowCursor) fail(err error, query string) error {
	if query == "" {
		query = c.statement
	}
	logger.Errorf("getNext() failed for query '%s' LIMIT(%d): %s", query, c.pageSize, err)
	c.Reset()
	return utils.Wrap(utils.Warn, err, "failed to read page of '%s'", query)
}

func (c *PagedRowCursor) closePage() {
	if c.page == nil {
		return
	}
	if err := c.page.Close(); err != nil {
		logger.Warnf("failed to close page: %s", err)
	}
	c.page = nil
}
