package cursor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/utils/logger"
	"github.com/datazip-inc/olake-pager/utils/typeutils"
)

// Statement inspection is a heuristic over SQL text, not a parser. Keep all
// of it behind the predicates below.
var (
	watermarkClausePattern = regexp.MustCompile(`(?i)\s+` + constants.WatermarkColumn + `\s*(=|>|<)`)
	selectWherePattern     = regexp.MustCompile(`(?i)^\s*(select\b.*?\b)(where).*`)
)

// HasWatermarkClause reports whether stmt already constrains the watermark column.
func HasWatermarkClause(stmt string) bool {
	return watermarkClausePattern.MatchString(stmt)
}

// HasWhereClause reports whether stmt contains a where token anywhere.
func HasWhereClause(stmt string) bool {
	return strings.Contains(strings.ToLower(stmt), "where")
}

// HasSelectWhere reports whether stmt is a select followed by a where token on the same line.
func HasSelectWhere(stmt string) bool {
	return selectWherePattern.MatchString(stmt)
}

// PageQuery appends the watermark constraint (when one is known and the
// statement does not filter on the watermark column itself) and the page limit.
func PageQuery(base string, watermark int64, pageSize int) string {
	var query strings.Builder
	query.WriteString(base)

	if watermark > 0 && !HasWatermarkClause(base) {
		if HasWhereClause(base) {
			fmt.Fprintf(&query, " AND %s > %d", constants.WatermarkColumn, watermark)
		} else {
			fmt.Fprintf(&query, " WHERE %s > %d", constants.WatermarkColumn, watermark)
		}
	}

	fmt.Fprintf(&query, " LIMIT %d", pageSize)
	return query.String()
}

// DeltaImportQuery narrows base to the row identified by the current delta
// variables, one equality per primary key column. Dot qualified keys fall
// back to their unqualified name both for lookup and in the predicate.
// Values are not escaped.
func DeltaImportQuery(base string, primaryKeys []string, resolver Context) string {
	var query strings.Builder
	query.WriteString(base)
	if HasSelectWhere(base) {
		query.WriteString(" and ")
	} else {
		query.WriteString(" where ")
	}

	for idx, key := range primaryKeys {
		if idx > 0 {
			query.WriteString(" and ")
		}

		column := key
		if dot := strings.LastIndex(key, "."); dot >= 0 {
			column = key[dot+1:]
		}

		val, found := resolver.Resolve(constants.DeltaNamespace + key)
		if !found && column != key {
			val, found = resolver.Resolve(constants.DeltaNamespace + column)
		}

		fmt.Fprintf(&query, "%s = ", column)
		switch {
		case !found || val == nil:
			logger.Warnf("no delta value resolved for key[%s], using null", key)
			query.WriteString("null")
		case typeutils.IsNumber(val):
			fmt.Fprintf(&query, "%v", val)
		default:
			fmt.Fprintf(&query, "'%v'", typeutils.ReformatValue(val))
		}
	}

	return query.String()
}

// SplitKeys turns the pk attribute into column names
func SplitKeys(pk string) []string {
	var keys []string
	for _, key := range strings.Split(pk, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
